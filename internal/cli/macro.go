package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// macroArg converts a command-line argument into a macro argument: integers,
// numbers and booleans keep their type, anything else is a string.
func macroArg(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func newMacroCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "macro [name] [args...]",
		Short: "Run a Lua macro in the sandbox",
		Long: `Macro calls a named Lua function loaded from the scripts directory or
from --file, or evaluates --eval as an anonymous chunk. Macros see the engine
table: engine.pool, engine.rank_bonus, engine.roll, engine.successes,
engine.mishap and engine.log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.macros()
			if err != nil {
				return err
			}
			defer m.Close()

			if path, _ := cmd.Flags().GetString("file"); path != "" {
				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading macro file: %w", err)
				}
				name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				if err := m.LoadString(name, string(src)); err != nil {
					return err
				}
			}

			if src, _ := cmd.Flags().GetString("eval"); src != "" {
				res, err := m.Eval(cmd.Context(), src)
				if err != nil {
					return err
				}
				return a.emit(res)
			}
			if len(args) == 0 {
				return fmt.Errorf("a macro name or --eval is required")
			}
			margs := make([]any, 0, len(args)-1)
			for _, s := range args[1:] {
				margs = append(margs, macroArg(s))
			}
			res, err := m.Run(cmd.Context(), args[0], margs...)
			if err != nil {
				return err
			}
			return a.emit(res)
		},
	}
	cmd.Flags().String("file", "", "a .lua file to load before running")
	cmd.Flags().String("eval", "", "Lua source to evaluate instead of a named macro")
	return cmd
}
