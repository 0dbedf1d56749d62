package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/inventory"
	"github.com/cory-johannsen/ruleforge/internal/game/progression"
)

func newReduceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Allocate armor point damage at a location",
		Long: `Reduce spends an amount of armor points at a body location, taking
stacking natural deflection first and then equipped armor in order. An amount
outside what the location can absorb is clamped and reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			locName, _ := cmd.Flags().GetString("location")
			amount, _ := cmd.Flags().GetInt("amount")
			loc := inventory.NormalizeLocation(locName)
			if loc == character.LocOther {
				return fmt.Errorf("unknown location %q", locName)
			}
			alloc := inventory.Allocate(loc, amount, c.Deflection(loc), inv.OfType(character.TypeArmor))
			return propose(cmd, a, f, proposal{Detail: alloc, Updates: alloc.Updates()})
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("location", "", "body location taking the damage")
	cmd.Flags().Int("amount", 1, "armor points to spend")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

// maxAttunements is the attunement capacity of c at its level and soul.
func maxAttunements(c *character.Character) int {
	return progression.MaxAttunements(c.Level, c.Attributes.Soul.Value)
}

func changeProposal(ch inventory.Change) proposal {
	return proposal{Status: ch.Status, Issue: ch.Issue, Detail: ch, Updates: ch.Updates}
}

func newEquipCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equip",
		Short: "Equip an item of power, attuning it when capacity remains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			id, _ := cmd.Flags().GetString("item")
			return propose(cmd, a, f, changeProposal(inventory.Equip(inv.All(), id, maxAttunements(c))))
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("item", "", "id of the magic item")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newUnequipCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unequip",
		Short: "Unequip an item of power, ending its attunement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			_, inv, _ := f.load(a)
			id, _ := cmd.Flags().GetString("item")
			return propose(cmd, a, f, changeProposal(inventory.Unequip(inv.All(), id)))
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("item", "", "id of the magic item")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newAttuneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attune",
		Short: "Attune to an item of power, or end attunement with --off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			id, _ := cmd.Flags().GetString("item")
			off, _ := cmd.Flags().GetBool("off")
			return propose(cmd, a, f, changeProposal(inventory.ToggleAttunement(inv.All(), id, !off, maxAttunements(c))))
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("item", "", "id of the magic item")
	cmd.Flags().Bool("off", false, "end attunement instead of starting it")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}
