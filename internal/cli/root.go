// Package cli implements the ruleforge command line host. Every command reads
// character records from JSON files, runs one engine operation and prints the
// result as JSON. Proposed updates are committed to the record file only when
// --write is given, or to the host store through the store commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/config"
	"github.com/cory-johannsen/ruleforge/internal/game/combat"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
	"github.com/cory-johannsen/ruleforge/internal/game/ruleset"
	"github.com/cory-johannsen/ruleforge/internal/game/sheet"
	"github.com/cory-johannsen/ruleforge/internal/observability"
	"github.com/cory-johannsen/ruleforge/internal/scripting"
)

// app is the state shared by every command of one invocation.
type app struct {
	out io.Writer

	configPath string
	seed       uint64
	faces      []int

	cfg    config.Config
	logger *zap.Logger
}

// NewRootCommand builds the ruleforge command tree writing results to out.
//
// Postcondition: Returns a root command ready for Execute.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "ruleforge",
		Short: "Tabletop rules engine host",
		Long: `ruleforge derives character sheets, resolves attacks, casts and checks,
allocates armor damage and manages items of power over JSON character records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	pf.String("log-level", "", "log level override: debug, info, warn or error")
	pf.String("content", "", "content directory holding species/, paths/ and items/")
	pf.String("scripts", "", "directory of .lua macros")
	pf.Uint64Var(&a.seed, "seed", 0, "seed for reproducible rolls (0 uses a cryptographic source)")
	pf.IntSliceVar(&a.faces, "faces", nil, "replay these die faces instead of rolling")

	root.AddCommand(
		newDeriveCmd(a),
		newLevelUpCmd(a),
		newRollCmd(a),
		newAttackCmd(a),
		newCastCmd(a),
		newCheckCmd(a),
		newReduceCmd(a),
		newFacingCmd(a),
		newEquipCmd(a),
		newUnequipCmd(a),
		newAttuneCmd(a),
		newApplySpeciesCmd(a),
		newApplyPathCmd(a),
		newAddItemCmd(a),
		newCatalogCmd(a),
		newMacroCmd(a),
		newStoreCmd(a),
	)
	return root
}

// Execute runs the command tree against os.Args and exits non-zero on failure.
// SIGINT or SIGTERM cancels the command context, so a resolution interrupted
// before its roll aborts without proposing anything.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	root := NewRootCommand(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	v := config.NewViper()
	if a.configPath != "" {
		v.SetConfigFile(a.configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"logging.level":       "log-level",
		"content.dir":         "content",
		"content.scripts_dir": "scripts",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// roller returns the dice source for this invocation: replayed faces, a seeded
// generator, or the cryptographic source.
func (a *app) roller() dice.Roller {
	switch {
	case len(a.faces) > 0:
		return dice.NewFixedRoller(a.faces...)
	case a.seed != 0:
		return dice.NewPoolRoller(dice.NewSeededSource(a.seed), a.logger)
	default:
		return dice.NewPoolRoller(dice.NewCryptoSource(), a.logger)
	}
}

func (a *app) bands() dice.Bands {
	return dice.Bands{Single: a.cfg.Rules.SuccessSingle, Double: a.cfg.Rules.SuccessDouble}
}

func (a *app) deriver() *sheet.Deriver {
	return sheet.NewDeriver(sheet.Rules{
		CarryBase:        a.cfg.Rules.CarryBase,
		CarryPerPhysique: a.cfg.Rules.CarryPerPhysique,
		SinBase:          a.cfg.Rules.SinBase,
		DefaultCritical:  a.cfg.Rules.CriticalThreshold,
	}, a.logger)
}

func (a *app) resolver() *combat.Resolver {
	return combat.NewResolver(a.roller(), combat.Options{
		Bands:           a.bands(),
		DefaultCritical: a.cfg.Rules.CriticalThreshold,
	}, a.logger)
}

// registry loads the configured content directory.
func (a *app) registry() (*ruleset.Registry, error) {
	if a.cfg.Content.Dir == "" {
		return nil, fmt.Errorf("no content directory: set --content or content.dir")
	}
	return ruleset.LoadRegistry(a.cfg.Content.Dir)
}

// macros creates a scripting manager with the configured scripts preloaded.
func (a *app) macros() (*scripting.Manager, error) {
	m := scripting.NewManager(a.roller(), a.bands(), a.cfg.Rules.LuaInstructionLimit, a.logger)
	if dir := a.cfg.Content.ScriptsDir; dir != "" {
		if err := m.LoadDir(dir); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// emit writes v to the command output as indented JSON.
func (a *app) emit(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
