package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// recordFile is a character document read from disk.
type recordFile struct {
	path string
	rec  character.Record
}

func readRecord(path string) (*recordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	rec, err := character.ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return &recordFile{path: path, rec: rec}, nil
}

// load normalizes the record into its typed view.
func (f *recordFile) load(a *app) (*character.Character, *character.Inventory, []issue.Issue) {
	return character.NewNormalizer(a.logger).Load(f.rec)
}

// commit rewrites the file as the normalized document with updates applied.
// Nothing is written when any update conflicts.
func (f *recordFile) commit(updates []character.Update) error {
	norm, _ := character.Normalize(f.rec)
	doc, err := json.Marshal(norm)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	next, err := character.ApplyJSON(doc, updates)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, pretty.Pretty(next), 0o644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	f.rec, err = character.ParseRecord(next)
	return err
}

// recordFlags adds the --record and, when writable, --write flags to cmd.
func recordFlags(cmd *cobra.Command, writable bool) {
	cmd.Flags().String("record", "", "path to a character record JSON file")
	_ = cmd.MarkFlagRequired("record")
	if writable {
		cmd.Flags().Bool("write", false, "commit the proposed updates to the record file")
	}
}

func recordFrom(cmd *cobra.Command) (*recordFile, error) {
	path, _ := cmd.Flags().GetString("record")
	return readRecord(path)
}

// finish commits updates when --write is set.
func finish(cmd *cobra.Command, f *recordFile, updates []character.Update) error {
	write, _ := cmd.Flags().GetBool("write")
	if !write || len(updates) == 0 {
		return nil
	}
	return f.commit(updates)
}

// proposal is the common output of commands that propose updates.
type proposal struct {
	Status    issue.Kind         `json:"status"`
	Issue     *issue.Issue       `json:"issue,omitempty"`
	Detail    any                `json:"detail,omitempty"`
	Updates   []character.Update `json:"updates"`
	Committed bool               `json:"committed"`
}

func propose(cmd *cobra.Command, a *app, f *recordFile, p proposal) error {
	if p.Updates == nil {
		p.Updates = []character.Update{}
	}
	if p.Status == issue.None {
		if err := finish(cmd, f, p.Updates); err != nil {
			return err
		}
		write, _ := cmd.Flags().GetBool("write")
		p.Committed = write && len(p.Updates) > 0
	}
	return a.emit(p)
}
