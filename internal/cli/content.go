package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/ruleset"
)

func applicationProposal(res ruleset.Application) proposal {
	return proposal{Status: res.Status, Issue: res.Issue, Updates: res.Updates}
}

func newApplySpeciesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply-species",
		Short: "Make a content species the character's species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("species")
			sp, ok := reg.Species(id)
			if !ok {
				return fmt.Errorf("unknown species %q", id)
			}
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			return propose(cmd, a, f, applicationProposal(ruleset.ApplySpecies(c, inv, sp)))
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("species", "", "species id from the content directory")
	_ = cmd.MarkFlagRequired("species")
	return cmd
}

func newApplyPathCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply-path",
		Short: "Add a content path and its skill grants to the character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("path")
			p, ok := reg.Path(id)
			if !ok {
				return fmt.Errorf("unknown path %q", id)
			}
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			c, inv, _ := f.load(a)
			return propose(cmd, a, f, applicationProposal(ruleset.ApplyPath(c, inv, p)))
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("path", "", "path id from the content directory")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newAddItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Give the character a new item from the content catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("template")
			rec, ok := reg.Catalog().Instantiate(id)
			if !ok {
				return fmt.Errorf("unknown item template %q", id)
			}
			f, err := recordFrom(cmd)
			if err != nil {
				return err
			}
			return propose(cmd, a, f, proposal{
				Detail:  rec,
				Updates: []character.Update{character.AppendItem(rec)},
			})
		},
	}
	recordFlags(cmd, true)
	cmd.Flags().String("template", "", "item template id from the content catalog")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

type catalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the item templates of the content directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			cat := reg.Catalog()
			entries := make([]catalogEntry, 0, cat.Len())
			for _, id := range cat.IDs() {
				t, _ := cat.Template(id)
				entries = append(entries, catalogEntry{ID: t.ID, Name: t.Name, Type: t.Type})
			}
			return a.emit(entries)
		},
	}
}
