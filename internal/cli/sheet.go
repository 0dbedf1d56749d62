package cli

import (
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/inventory"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
	"github.com/cory-johannsen/ruleforge/internal/game/progression"
	"github.com/cory-johannsen/ruleforge/internal/game/sheet"
)

// sheetView is the printable part of a sheet.Snapshot.
type sheetView struct {
	ID               string                                   `json:"id"`
	Name             string                                   `json:"name"`
	Level            int                                      `json:"level"`
	Defenses         character.Defenses                       `json:"defenses"`
	Skills           []sheet.SkillLine                        `json:"skills"`
	Weapons          []sheet.WeaponLine                       `json:"weapons"`
	Armor            map[character.Location]inventory.APTotal `json:"armor"`
	ItemsOfPower     map[inventory.Slot]string                `json:"itemsOfPower"`
	Attunement       sheet.Attunement                         `json:"attunement"`
	Progression      progression.Progression                  `json:"progression"`
	CarryingCapacity int                                      `json:"carryingCapacity"`
	SinThreshold     int                                      `json:"sinThreshold"`
	Issues           []issue.Issue                            `json:"issues,omitempty"`
	Updates          []character.Update                       `json:"updates"`
	Committed        bool                                     `json:"committed"`
}

func newSheetView(s sheet.Snapshot) sheetView {
	v := sheetView{
		ID:               s.Character.ID,
		Name:             s.Character.Name,
		Level:            s.Character.Level,
		Defenses:         s.Defenses,
		Skills:           s.Skills,
		Weapons:          s.Weapons,
		Armor:            s.Armor.Totals,
		ItemsOfPower:     make(map[inventory.Slot]string),
		Attunement:       s.Attunement,
		Progression:      s.Progression,
		CarryingCapacity: s.CarryingCapacity,
		SinThreshold:     s.SinThreshold,
		Issues:           s.Issues,
		Updates:          s.BaseUpdates(),
	}
	for slot, it := range s.Power.Equipped {
		v.ItemsOfPower[slot] = it.ID
	}
	if v.Updates == nil {
		v.Updates = []character.Update{}
	}
	return v
}

func newDeriveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Recalculate a character's derived sheet",
		Long: `Derive normalizes a character record and recomputes defenses, pools,
armor totals, items of power, attunement and progression. The updates list
holds the defense values that differ from the record; --write commits them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			snap, _ := a.deriver().Load(f.rec)
			view := newSheetView(snap)
			if err := finish(cmd, f, view.Updates); err != nil {
				return err
			}
			write, _ := cmd.Flags().GetBool("write")
			view.Committed = write && len(view.Updates) > 0
			return a.emit(view)
		},
	}
	recordFlags(cmd, true)
	return cmd
}

func newLevelUpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level-up",
		Short: "Raise a character by one level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			skills := inv.OfType(character.TypeSkill)
			return propose(cmd, a, f, proposal{
				Detail:  progression.Gained(c, skills),
				Updates: []character.Update{progression.LevelUp(c)},
			})
		},
	}
	recordFlags(cmd, true)
	return cmd
}
