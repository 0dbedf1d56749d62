package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/combat"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

type rollView struct {
	dice.Result
	Text string `json:"text"`
}

func newRollCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll [dice]",
		Short: "Roll a d12 pool and count successes",
		Long: `Roll rolls the given number of d12s. Without an argument the pool is
sized from --attribute, --rank and --misc.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 {
					return fmt.Errorf("dice must be a positive integer, got %q", args[0])
				}
				n = v
			} else {
				attr, _ := cmd.Flags().GetInt("attribute")
				rankName, _ := cmd.Flags().GetString("rank")
				misc, _ := cmd.Flags().GetInt("misc")
				rank, ok := character.ParseRank(rankName)
				if !ok {
					return fmt.Errorf("unknown rank %q", rankName)
				}
				n = dice.Pool(attr, rank, misc)
			}
			res, err := dice.Resolve(cmd.Context(), a.roller(), a.bands(), n)
			if err != nil {
				return err
			}
			return a.emit(rollView{Result: res, Text: res.String()})
		},
	}
	cmd.Flags().Int("attribute", 0, "attribute value sizing the pool")
	cmd.Flags().String("rank", string(character.RankUntrained), "skill rank sizing the pool")
	cmd.Flags().Int("misc", 0, "miscellaneous pool bonus")
	return cmd
}

// targetFlags adds the optional target selection flags shared by attack and cast.
func targetFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "path to the defender's record JSON file")
	cmd.Flags().String("facing", "", "assumed facing of the target (defaults to its recorded facing)")
	cmd.Flags().Int("dt", 0, "difficulty when no target is given")
}

// selection is what the target flags chose. Notes collects the flag values
// that were replaced by a default.
type selection struct {
	target *combat.Target
	facing character.Facing
	dt     *int
	notes  []issue.Issue
}

// selectTarget reads the target flags. An unknown --facing falls back to
// front and is noted rather than failing the command.
func selectTarget(cmd *cobra.Command, a *app) (selection, error) {
	var sel selection
	if cmd.Flags().Changed("dt") {
		v, _ := cmd.Flags().GetInt("dt")
		sel.dt = &v
	}
	facingName, _ := cmd.Flags().GetString("facing")
	sel.facing = character.FacingFront
	if facingName != "" {
		f, ok := character.ParseFacing(facingName)
		if !ok {
			sel.notes = append(sel.notes, issue.Invalid("facing", "unknown facing %q; using front", facingName))
		}
		sel.facing = f
	}

	path, _ := cmd.Flags().GetString("target")
	if path == "" {
		return sel, nil
	}
	tf, err := readRecord(path)
	if err != nil {
		return selection{}, fmt.Errorf("target: %w", err)
	}
	tc, tinv, _ := tf.load(a)
	if facingName == "" {
		sel.facing = tc.Defenses.Facing
	}
	sel.target = combat.NewTarget(tc, tinv.OfType(character.TypeSkill))
	return sel, nil
}

// noted prepends the selection notes to the resolution issues.
func (s selection) noted(res combat.Resolution) combat.Resolution {
	if len(s.notes) > 0 {
		res.Issues = append(append([]issue.Issue(nil), s.notes...), res.Issues...)
	}
	return res
}

func itemOfType(inv *character.Inventory, id string, t character.ItemType) (*character.Item, error) {
	it, ok := inv.Get(id)
	if !ok || it.Type != t {
		return nil, fmt.Errorf("no %s with id %q", t, id)
	}
	return it, nil
}

// skillItem returns the owned skill named name, or nil to roll untrained.
func skillItem(inv *character.Inventory, name string) *character.Item {
	if it, ok := inv.SkillNamed(name); ok {
		return it
	}
	return nil
}

func newAttackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attack",
		Short: "Resolve a weapon attack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			weaponID, _ := cmd.Flags().GetString("weapon")
			weapon, err := itemOfType(inv, weaponID, character.TypeWeapon)
			if err != nil {
				return err
			}
			sel, err := selectTarget(cmd, a)
			if err != nil {
				return err
			}
			res, err := a.resolver().Attack(cmd.Context(), combat.AttackRequest{
				Attributes: c.Attributes,
				Weapon:     weapon,
				Skill:      skillItem(inv, weapon.Weapon.Skill),
				Target:     sel.target,
				Facing:     sel.facing,
				DT:         sel.dt,
			})
			if err != nil {
				return err
			}
			return a.emit(sel.noted(res))
		},
	}
	recordFlags(cmd, false)
	cmd.Flags().String("weapon", "", "id of the attacking weapon item")
	_ = cmd.MarkFlagRequired("weapon")
	targetFlags(cmd)
	return cmd
}

func newCastCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cast",
		Short: "Resolve a spell cast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			spellID, _ := cmd.Flags().GetString("spell")
			spell, err := itemOfType(inv, spellID, character.TypeSpell)
			if err != nil {
				return err
			}
			sel, err := selectTarget(cmd, a)
			if err != nil {
				return err
			}
			res, err := a.resolver().Cast(cmd.Context(), combat.CastRequest{
				Attributes: c.Attributes,
				Spell:      spell,
				Skill:      skillItem(inv, spell.Spell.Skill),
				Target:     sel.target,
				Facing:     sel.facing,
				DT:         sel.dt,
			})
			if err != nil {
				return err
			}
			return a.emit(sel.noted(res))
		},
	}
	recordFlags(cmd, false)
	cmd.Flags().String("spell", "", "id of the spell item")
	_ = cmd.MarkFlagRequired("spell")
	targetFlags(cmd)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve a skill or attribute check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			skillName, _ := cmd.Flags().GetString("skill")
			attribute, _ := cmd.Flags().GetString("attribute")
			misc, _ := cmd.Flags().GetInt("misc")
			if skillName == "" && attribute == "" {
				return fmt.Errorf("one of --skill or --attribute is required")
			}
			req := combat.CheckRequest{Attributes: c.Attributes, Attribute: attribute, MiscBonus: misc}
			var notes []issue.Issue
			if skillName != "" {
				if it, ok := inv.SkillNamed(skillName); ok {
					req.Skill = it
				} else {
					notes = append(notes, issue.Invalid("skill", "unknown skill %q; rolling untrained", skillName))
				}
			}
			if cmd.Flags().Changed("dt") {
				v, _ := cmd.Flags().GetInt("dt")
				req.DT = &v
			}
			res, err := a.resolver().Check(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.emit(selection{notes: notes}.noted(res))
		},
	}
	recordFlags(cmd, false)
	cmd.Flags().String("skill", "", "name of the owned skill to roll")
	cmd.Flags().String("attribute", "", "attribute to roll untrained when no skill is given or the skill is not owned")
	cmd.Flags().Int("misc", 0, "miscellaneous pool bonus")
	cmd.Flags().Int("dt", 0, "difficulty of the check")
	return cmd
}
