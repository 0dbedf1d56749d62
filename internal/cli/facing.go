package cli

import (
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/defense"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

func newFacingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facing",
		Short: "Turn a character to a new facing",
		Long: `Facing re-applies the facing table to the record's persisted base passives
and proposes the changed facing, passive dodge, passive parry and avoid
fields. An unknown facing is reported and nothing is proposed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, _, _ := f.load(a)
			name, _ := cmd.Flags().GetString("facing")
			facing, ok := character.ParseFacing(name)
			if !ok {
				bad := issue.Invalid("facing", "unknown facing %q", name)
				return propose(cmd, a, f, proposal{Status: bad.Kind, Issue: &bad})
			}
			next := defense.SetFacing(c.Defenses, facing)
			return propose(cmd, a, f, proposal{Detail: next, Updates: defense.FacingUpdates(c.Defenses, next)})
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("facing", "", "new facing: front, flank, backflank or back")
	_ = cmd.MarkFlagRequired("facing")
	return cmd
}
