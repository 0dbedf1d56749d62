package ruleset

import (
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
	"github.com/cory-johannsen/ruleforge/internal/game/progression"
)

// Application is the outcome of applying a template. When Status is not
// issue.None nothing may be committed and Updates is empty.
type Application struct {
	Status  issue.Kind
	Issue   *issue.Issue
	Updates []character.Update
}

// Applied reports whether the template was accepted.
func (a Application) Applied() bool { return a.Status == issue.None }

func refuse(i issue.Issue) Application {
	return Application{Status: i.Kind, Issue: &i}
}

// ApplySpecies proposes making sp the species of c. Each attribute's value
// drops the bonus recorded from the previous species and gains the new one,
// never below 0. Granted skills are upgraded or added as with ApplyPath.
func ApplySpecies(c *character.Character, inv *character.Inventory, sp *Species) Application {
	var app Application
	for _, name := range character.AttributeNames {
		attr, _ := c.Attributes.Get(name)
		bonus := sp.Attributes[name]
		if bonus == attr.SpeciesBonus {
			continue
		}
		value := max(0, attr.Value-attr.SpeciesBonus+bonus)
		base := "system.attributes." + name
		app.Updates = append(app.Updates,
			character.ActorUpdate(base+".speciesBonus", attr.SpeciesBonus, bonus),
			character.ActorUpdate(base+".value", attr.Value, value),
		)
	}
	if c.Species != sp.Name {
		app.Updates = append(app.Updates, character.ActorUpdate("system.species", c.Species, sp.Name))
	}
	app.Updates = append(app.Updates, grantUpdates(inv, sp.Skills)...)
	return app
}

// ApplyPath proposes adding path p to c. A skill the character already owns is
// upgraded only when the path grants a higher rank; a missing skill is added.
//
// Postcondition: a tier above the character's maximum tier is refused with
// issue.InvalidSelection; a new path beyond the paths allowed is refused with
// issue.CapacityExceeded. Re-applying an owned path only re-grants its skills.
func ApplyPath(c *character.Character, inv *character.Inventory, p *Path) Application {
	if maxTier := progression.MaxTier(c.Level); p.Tier > maxTier {
		return refuse(issue.Invalid("path.tier", "tier %d above maximum %d at level %d", p.Tier, maxTier, c.Level))
	}
	owned := inv.OfType(character.TypePath)
	var app Application
	if !ownsNamed(owned, p.Name) {
		if allowed := progression.PathsAllowed(c.Level, c.Flags.IsMonster); len(owned) >= allowed {
			return refuse(issue.Capacity("items", "already on %d of %d allowed paths", len(owned), allowed))
		}
		app.Updates = append(app.Updates, character.AppendItem(pathRecord(p)))
	}
	app.Updates = append(app.Updates, grantUpdates(inv, p.Skills)...)
	return app
}

// SpeciesFromItem converts an owned species item into a template.
func SpeciesFromItem(it *character.Item) *Species {
	sp := &Species{ID: it.ID, Name: it.Name, Attributes: map[string]int{}}
	if it.Species == nil {
		return sp
	}
	for k, v := range it.Species.Attributes {
		sp.Attributes[k] = v
	}
	sp.Skills = fromSkillGrants(it.Species.Skills)
	return sp
}

// PathFromItem converts an owned path item into a template.
func PathFromItem(it *character.Item) *Path {
	p := &Path{ID: it.ID, Name: it.Name, Tier: 1}
	if it.Path != nil {
		p.Tier = it.Path.Tier
		p.Skills = fromSkillGrants(it.Path.Skills)
	}
	return p
}

func fromSkillGrants(in []character.SkillGrant) []Grant {
	out := make([]Grant, 0, len(in))
	for _, g := range in {
		out = append(out, Grant{Name: g.Name, Rank: string(g.Rank), Attribute: g.Attribute, Category: g.Category})
	}
	return out
}

func grantUpdates(inv *character.Inventory, grants []Grant) []character.Update {
	var out []character.Update
	added := map[string]bool{}
	for _, g := range grants {
		rank, _ := character.ParseRank(g.Rank)
		if it, ok := inv.SkillNamed(g.Name); ok {
			if rank.Ordinal() > it.Skill.Rank.Ordinal() {
				out = append(out, character.ItemUpdate(it.ID, "system.rank", string(it.Skill.Rank), string(rank)))
			}
			continue
		}
		key := strings.ToLower(g.Name)
		if added[key] {
			continue
		}
		added[key] = true
		out = append(out, character.AppendItem(skillRecord(g, rank)))
	}
	return out
}

func ownsNamed(items []*character.Item, name string) bool {
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return true
		}
	}
	return false
}

func skillRecord(g Grant, rank character.Rank) character.Record {
	return character.Record{
		"_id":  uuid.NewString(),
		"name": g.Name,
		"type": string(character.TypeSkill),
		"system": map[string]any{
			"rank":      string(rank),
			"category":  g.Category,
			"attribute": strings.ToLower(g.Attribute),
			"miscBonus": 0,
			"isCore":    false,
		},
	}
}

func pathRecord(p *Path) character.Record {
	skills := make([]any, 0, len(p.Skills))
	for _, g := range p.Skills {
		skills = append(skills, map[string]any{"name": g.Name, "rank": strings.ToLower(g.Rank), "attribute": strings.ToLower(g.Attribute), "category": g.Category})
	}
	return character.Record{
		"_id":    uuid.NewString(),
		"name":   p.Name,
		"type":   string(character.TypePath),
		"system": map[string]any{"tier": p.Tier, "skills": skills},
	}
}
