package character

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// defenseFields are the integer fields of a defenses subtree, all defaulting to 0.
var defenseFields = []string{
	"resilience", "avoid", "grit",
	"resilienceBonus", "avoidBonus", "gritBonus",
	"totalResilience", "totalAvoid", "totalGrit",
	"passiveDodge", "passiveParry",
	"basePassiveDodge", "basePassiveParry",
	"avoidPenalty",
}

// Normalizer fills missing or malformed fields of character and item records
// with documented defaults. It must run before any other component reads a record.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer returns a Normalizer that logs every substitution at debug level.
// A nil logger disables logging.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize returns a repaired deep copy of rec together with one issue per substitution.
//
// Precondition: none; rec may be nil or arbitrarily shaped.
// Postcondition: the input is not modified; Normalize(Normalize(rec)) equals
// Normalize(rec) and the second pass reports no issues.
func (n *Normalizer) Normalize(rec Record) (Record, []issue.Issue) {
	f := &fixer{}
	out := normalizeCharacter(f, rec)
	n.report("character", f.issues)
	return out, f.issues
}

// NormalizeItem repairs a single item record.
//
// Postcondition: same purity and idempotence guarantees as Normalize.
func (n *Normalizer) NormalizeItem(rec Record) (Record, []issue.Issue) {
	f := &fixer{}
	out := Record(normalizeItem(f, cloneRecord(rec), ""))
	n.report("item", f.issues)
	return out, f.issues
}

func (n *Normalizer) report(kind string, issues []issue.Issue) {
	for _, i := range issues {
		n.logger.Debug("normalized record field",
			zap.String("record", kind),
			zap.String("path", i.Path),
			zap.String("detail", i.Detail),
		)
	}
}

// Normalize is Normalizer.Normalize without logging.
func Normalize(rec Record) (Record, []issue.Issue) {
	return NewNormalizer(nil).Normalize(rec)
}

func cloneRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func normalizeCharacter(f *fixer, rec Record) Record {
	out := cloneRecord(rec)

	f.str(out, "_id", "", "")
	f.str(out, "name", "", "")

	sys := f.object(out, "system", "")

	attrs := f.object(sys, "attributes", "system")
	for _, name := range AttributeNames {
		prefix := "system.attributes." + name
		a := f.object(attrs, name, "system.attributes")
		f.atLeast(a, "value", prefix, 1, 0)
		f.integer(a, "speciesBonus", prefix, 0)
		f.integer(a, "flexibleBonus", prefix, 0)
	}

	def := f.object(sys, "defenses", "system")
	for _, key := range defenseFields {
		f.integer(def, key, "system.defenses", 0)
	}
	f.facing(def, "facing", "system.defenses")

	hp := f.object(sys, "hp", "system")
	f.integer(hp, "value", "system.hp", 1)
	f.atLeast(hp, "max", "system.hp", 1, 0)

	sanity := f.object(sys, "sanity", "system")
	f.integer(sanity, "value", "system.sanity", 10)
	f.atLeast(sanity, "max", "system.sanity", 10, 0)

	nd := f.object(sys, "naturalDeflection", "system")
	for _, part := range BodyParts {
		prefix := "system.naturalDeflection." + string(part)
		p := f.object(nd, string(part), "system.naturalDeflection")
		f.atLeast(p, "current", prefix, 0, 0)
		f.atLeast(p, "max", prefix, 0, 0)
		f.boolean(p, "stacks", prefix, false)
	}

	f.str(sys, "species", "system", "")
	f.atLeast(sys, "level", "system", 1, 0)
	f.atLeast(sys, "experience", "system", 0, 0)

	flags := f.object(out, "flags", "")
	f.boolean(flags, "isMonster", "flags", false)

	items := f.objects(out, "items", "")
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		prefix := fmt.Sprintf("items.%d", i)
		normalizeItem(f, it, prefix)
		id, _ := it["_id"].(string)
		if id == "" || seen[id] {
			fresh := fmt.Sprintf("item-%d", i)
			for seen[fresh] {
				fresh += "x"
			}
			f.note(join(prefix, "_id"), "missing or duplicate id %q; assigned %q", id, fresh)
			it["_id"] = fresh
			id = fresh
		}
		seen[id] = true
	}

	return out
}
