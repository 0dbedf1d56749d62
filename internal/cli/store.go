package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/storage/postgres"
	"github.com/cory-johannsen/ruleforge/migrations"
)

// withRepository connects to the configured database and runs fn.
func (a *app) withRepository(cmd *cobra.Command, fn func(*postgres.CharacterRepository) error) error {
	pool, err := postgres.NewPool(cmd.Context(), a.cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(postgres.NewCharacterRepository(pool.DB(), a.logger))
}

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage character records in the PostgreSQL host store",
	}
	cmd.AddCommand(
		newStoreMigrateCmd(a),
		newStoreSaveCmd(a),
		newStoreLoadCmd(a),
		newStoreCommitCmd(a),
		newStoreHistoryCmd(a),
		newStoreDeleteCmd(a),
	)
	return cmd
}

func newStoreMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := migrations.Up(a.cfg.Database.DSN()); err != nil {
				return err
			}
			a.logger.Info("schema up to date", zap.String("database", a.cfg.Database.Name))
			return nil
		},
	}
}

func newStoreSaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store a record file, replacing any stored document with its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			return a.withRepository(cmd, func(repo *postgres.CharacterRepository) error {
				rev, err := repo.Save(cmd.Context(), f.rec)
				if err != nil {
					return err
				}
				return a.emit(map[string]any{"id": f.rec["_id"], "revision": rev})
			})
		},
	}
	recordFlags(cmd, false)
	return cmd
}

func idFlag(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "character id")
	_ = cmd.MarkFlagRequired("id")
}

func newStoreLoadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print a stored character document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			return a.withRepository(cmd, func(repo *postgres.CharacterRepository) error {
				stored, err := repo.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.emit(stored.Record)
			})
		},
	}
	idFlag(cmd)
	return cmd
}

func newStoreCommitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit a JSON list of updates to a stored character",
		Long: `Commit reads the updates printed by another command (a bare list, or an
object with an "updates" field) and applies them atomically. A stale update
rejects the whole batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			path, _ := cmd.Flags().GetString("updates")
			updates, err := readUpdates(path)
			if err != nil {
				return err
			}
			return a.withRepository(cmd, func(repo *postgres.CharacterRepository) error {
				stored, err := repo.Commit(cmd.Context(), id, updates)
				if err != nil {
					return err
				}
				return a.emit(map[string]any{"id": id, "revision": stored.Revision, "updates": len(updates)})
			})
		},
	}
	idFlag(cmd)
	cmd.Flags().String("updates", "", "path to the JSON updates")
	_ = cmd.MarkFlagRequired("updates")
	return cmd
}

// readUpdates accepts either a JSON array of updates or any command output
// carrying an "updates" array.
func readUpdates(path string) ([]character.Update, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading updates: %w", err)
	}
	var updates []character.Update
	if err := json.Unmarshal(data, &updates); err == nil {
		return updates, nil
	}
	var wrapped struct {
		Updates []character.Update `json:"updates"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing updates %s: %w", path, err)
	}
	return wrapped.Updates, nil
}

func newStoreHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the committed update batches of a character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			return a.withRepository(cmd, func(repo *postgres.CharacterRepository) error {
				entries, err := repo.History(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.emit(entries)
			})
		},
	}
	idFlag(cmd)
	return cmd
}

func newStoreDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored character and its history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			return a.withRepository(cmd, func(repo *postgres.CharacterRepository) error {
				return repo.Delete(cmd.Context(), id)
			})
		},
	}
	idFlag(cmd)
	return cmd
}
