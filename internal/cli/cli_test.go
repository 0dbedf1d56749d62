package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/ruleforge/internal/cli"
	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

func fighter() character.Record {
	return character.Record{
		"_id":  "c1",
		"name": "Brannoc",
		"system": map[string]any{
			"level": 4,
			"attributes": map[string]any{
				"physique": map[string]any{"value": 6},
				"finesse":  map[string]any{"value": 8},
				"mind":     map[string]any{"value": 2},
				"presence": map[string]any{"value": 3},
				"soul":     map[string]any{"value": 2},
			},
			"defenses": map[string]any{"facing": "backflank", "avoidBonus": 1},
			"naturalDeflection": map[string]any{
				"head": map[string]any{"current": 2, "max": 2, "stacks": true},
			},
		},
		"items": []any{
			map[string]any{"_id": "sk-sword", "name": "Sword", "type": "skill", "system": map[string]any{"rank": "adept", "attribute": "physique"}},
			map[string]any{"_id": "w-sword", "name": "Longsword", "type": "weapon", "system": map[string]any{"skill": "Sword", "damage": 5, "qualities": []any{"Brutish"}}},
			map[string]any{"_id": "a-helm", "name": "Helm", "type": "armor", "system": map[string]any{"ap": 5, "currentAP": 3, "location": "Head", "equipped": true}},
			map[string]any{"_id": "m-ring", "name": "Ring", "type": "magicItem", "system": map[string]any{"slot": "ring", "equipped": true, "attunement": true}},
		},
	}
}

func writeRecord(t *testing.T, rec character.Record) string {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "character.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readBack(t *testing.T, path string) (*character.Character, *character.Inventory) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rec, err := character.ParseRecord(data)
	require.NoError(t, err)
	c, inv, _ := character.NewNormalizer(nil).Load(rec)
	return c, inv
}

// run executes the CLI and decodes its JSON output.
func run(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var buf bytes.Buffer
	root := cli.NewRootCommand(&buf)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		return nil, err
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	return out, nil
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	return out
}

func TestDerive_PrintsSheetAndCommitsDefenses(t *testing.T) {
	path := writeRecord(t, fighter())

	out := mustRun(t, "derive", "--record", path)
	weapons := out["weapons"].([]any)
	require.Len(t, weapons, 1)
	w := weapons[0].(map[string]any)
	assert.Equal(t, float64(8), w["Pool"])
	assert.Equal(t, float64(8), w["TotalDamage"])
	assert.Equal(t, "m-ring", out["itemsOfPower"].(map[string]any)["ring1"])
	assert.NotEmpty(t, out["updates"])
	assert.Equal(t, false, out["committed"])

	out = mustRun(t, "derive", "--record", path, "--write")
	assert.Equal(t, true, out["committed"])

	c, _ := readBack(t, path)
	assert.Equal(t, 2, c.Defenses.BasePassiveDodge)

	out = mustRun(t, "derive", "--record", path)
	assert.Empty(t, out["updates"], "a committed pass proposes nothing new")
}

func TestAttack_ReplayedFaces(t *testing.T) {
	path := writeRecord(t, fighter())
	out := mustRun(t, "attack", "--record", path, "--weapon", "w-sword", "--dt", "3",
		"--faces", "12,12,12,12,8,1,1,1")
	assert.Equal(t, "none", out["Status"])
	assert.Equal(t, float64(8), out["Pool"])
	assert.Equal(t, true, out["Succeeded"])
	assert.Equal(t, float64(6), out["Excess"])
	assert.Equal(t, float64(8), out["TotalDamage"])
}

func TestAttack_WithoutTargetOrDTAborts(t *testing.T) {
	path := writeRecord(t, fighter())
	out := mustRun(t, "attack", "--record", path, "--weapon", "w-sword", "--faces", "12")
	assert.Equal(t, "aborted", out["Status"])
}

func TestAttack_AgainstTargetFile(t *testing.T) {
	path := writeRecord(t, fighter())
	target := writeRecord(t, fighter())
	out := mustRun(t, "attack", "--record", path, "--weapon", "w-sword", "--target", target,
		"--facing", "back", "--faces", "12,12,12,12,12,12,12,12")
	require.NotNil(t, out["Target"])
	assert.Equal(t, "back", out["Target"].(map[string]any)["Facing"])
}

func TestAttack_UnknownWeapon(t *testing.T) {
	path := writeRecord(t, fighter())
	_, err := run(t, "attack", "--record", path, "--weapon", "a-helm", "--dt", "1")
	assert.ErrorContains(t, err, `no weapon with id "a-helm"`)
}

func TestReduce_WritesAllocation(t *testing.T) {
	path := writeRecord(t, fighter())
	out := mustRun(t, "reduce", "--record", path, "--location", "head", "--amount", "3", "--write")
	assert.Equal(t, true, out["committed"])
	assert.Len(t, out["updates"], 2)

	c, inv := readBack(t, path)
	assert.Equal(t, 0, c.Deflection(character.LocHead).Current)
	helm, ok := inv.Get("a-helm")
	require.True(t, ok)
	assert.Equal(t, 2, helm.Armor.CurrentAP)
}

func TestReduce_UnknownLocation(t *testing.T) {
	path := writeRecord(t, fighter())
	_, err := run(t, "reduce", "--record", path, "--location", "tail")
	assert.Error(t, err)
}

func TestAttune_OffAndUnknownItem(t *testing.T) {
	path := writeRecord(t, fighter())
	out := mustRun(t, "attune", "--record", path, "--item", "m-ring", "--off", "--write")
	assert.Equal(t, "none", out["status"])
	_, inv := readBack(t, path)
	ring, _ := inv.Get("m-ring")
	assert.False(t, ring.MagicItem.Attunement)

	out = mustRun(t, "equip", "--record", path, "--item", "nothing")
	assert.Equal(t, "invalid_selection", out["status"])
	assert.Equal(t, false, out["committed"])
}

func TestLevelUp(t *testing.T) {
	path := writeRecord(t, fighter())
	out := mustRun(t, "level-up", "--record", path, "--write")
	assert.Equal(t, float64(1), out["detail"].(map[string]any)["Talents"])
	c, _ := readBack(t, path)
	assert.Equal(t, 5, c.Level)

	mustRun(t, "level-up", "--record", path, "--write")
	c, _ = readBack(t, path)
	assert.Equal(t, 6, c.Level)
}

func TestRoll(t *testing.T) {
	out := mustRun(t, "roll", "3", "--faces", "8,12,1")
	assert.Equal(t, float64(3), out["Successes"])
	assert.Equal(t, float64(3), out["Pool"])

	_, err := run(t, "roll", "zero")
	assert.Error(t, err)
	_, err = run(t, "roll", "--rank", "legendary")
	assert.Error(t, err)
}

func TestRoll_SeedIsReproducible(t *testing.T) {
	a := mustRun(t, "roll", "10", "--seed", "42")
	b := mustRun(t, "roll", "10", "--seed", "42")
	assert.Equal(t, a["Dice"], b["Dice"])
}

func TestMacro_EvalRollsThroughEngine(t *testing.T) {
	out := mustRun(t, "macro", "--faces", "8,12,1", "--eval", "local faces, s = engine.roll(3) return s")
	assert.Equal(t, float64(3), out["Value"])
	assert.Len(t, out["Rolls"], 1)
}

func TestMacro_NamedFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "double.lua")
	require.NoError(t, os.WriteFile(file, []byte("function double(n) return n * 2 end"), 0o644))
	out := mustRun(t, "macro", "--file", file, "double", "21")
	assert.Equal(t, float64(42), out["Value"])

	_, err := run(t, "macro", "--file", file, "missing")
	assert.Error(t, err)
}

func writeContent(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"species/human.yaml": "id: human\nname: Human\nattributes:\n  presence: 1\n",
		"paths/knight.yaml":  "id: knight\nname: Knight\ntier: 1\nskills:\n  - name: Sword\n    rank: expert\n    attribute: physique\n",
		"items/arms.yaml":    "items:\n  - id: helm\n    name: Iron Helm\n    type: armor\n    system:\n      ap: 3\n      location: head\n  - id: blade\n    name: Longsword\n    type: weapon\n    system:\n      damage: 4\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestContentCommands(t *testing.T) {
	content := writeContent(t)
	path := writeRecord(t, fighter())

	out := mustRun(t, "apply-path", "--content", content, "--record", path, "--path", "knight", "--write")
	assert.Equal(t, "none", out["status"])
	assert.Equal(t, true, out["committed"])
	_, inv := readBack(t, path)
	sword, ok := inv.SkillNamed("sword")
	require.True(t, ok)
	assert.Equal(t, character.RankExpert, sword.Skill.Rank)
	assert.Len(t, inv.OfType(character.TypePath), 1)

	out = mustRun(t, "apply-species", "--content", content, "--record", path, "--species", "human", "--write")
	assert.Equal(t, "none", out["status"])
	c, _ := readBack(t, path)
	assert.Equal(t, 4, c.Attributes.Presence.Value)

	mustRun(t, "add-item", "--content", content, "--record", path, "--template", "helm", "--write")
	_, inv = readBack(t, path)
	assert.Len(t, inv.OfType(character.TypeArmor), 2)

	_, err := run(t, "apply-species", "--content", content, "--record", path, "--species", "elf")
	assert.ErrorContains(t, err, `unknown species "elf"`)
	_, err = run(t, "apply-path", "--record", path, "--path", "knight")
	assert.ErrorContains(t, err, "no content directory")
}

func TestCatalog(t *testing.T) {
	var buf bytes.Buffer
	root := cli.NewRootCommand(&buf)
	root.SetArgs([]string{"--log-level", "error", "catalog", "--content", writeContent(t)})
	require.NoError(t, root.Execute())
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "blade", entries[0]["id"])
	assert.Equal(t, "helm", entries[1]["id"])
}

func issueAt(t *testing.T, out map[string]any, path string) map[string]any {
	t.Helper()
	list, _ := out["Issues"].([]any)
	for _, raw := range list {
		if i := raw.(map[string]any); i["Path"] == path {
			return i
		}
	}
	t.Fatalf("no issue at %q in %v", path, out["Issues"])
	return nil
}

func TestCheck_UnknownSkillRollsUntrained(t *testing.T) {
	path := writeRecord(t, fighter())
	out := mustRun(t, "check", "--record", path, "--skill", "Lute", "--attribute", "finesse", "--dt", "0",
		"--faces", "12,12,12,12")
	assert.Equal(t, "none", out["Status"])
	assert.Equal(t, float64(4), out["Pool"], "finesse 8 untrained halves to 4")
	assert.Equal(t, "invalid_selection", issueAt(t, out, "skill")["Kind"])

	out = mustRun(t, "check", "--record", path, "--skill", "sword", "--dt", "0", "--faces", "12,12,12,12,12,12,12,12")
	assert.Empty(t, out["Issues"])

	_, err := run(t, "check", "--record", path, "--dt", "0")
	assert.Error(t, err)
}

func TestAttack_UnknownFacingUsesFront(t *testing.T) {
	path := writeRecord(t, fighter())
	target := writeRecord(t, fighter())
	out := mustRun(t, "attack", "--record", path, "--weapon", "w-sword", "--target", target,
		"--facing", "sideways", "--faces", "12,12,12,12,12,12,12,12")
	require.NotNil(t, out["Target"])
	assert.Equal(t, "front", out["Target"].(map[string]any)["Facing"])
	assert.Equal(t, "invalid_selection", issueAt(t, out, "facing")["Kind"])
}

func TestFacing_ProposesPassiveChanges(t *testing.T) {
	path := writeRecord(t, fighter())
	mustRun(t, "derive", "--record", path, "--write")
	c, _ := readBack(t, path)
	require.Equal(t, character.FacingBackFlank, c.Defenses.Facing)
	require.Equal(t, 1, c.Defenses.PassiveDodge)

	out := mustRun(t, "facing", "--record", path, "--facing", "Front", "--write")
	assert.Equal(t, "none", out["status"])
	assert.Equal(t, true, out["committed"])
	assert.NotEmpty(t, out["updates"])

	c, _ = readBack(t, path)
	assert.Equal(t, character.FacingFront, c.Defenses.Facing)
	assert.Equal(t, c.Defenses.BasePassiveDodge, c.Defenses.PassiveDodge)
	assert.Equal(t, 0, c.Defenses.AvoidPenalty)

	out = mustRun(t, "facing", "--record", path, "--facing", "front")
	assert.Empty(t, out["updates"], "facing the same way proposes nothing")

	out = mustRun(t, "facing", "--record", path, "--facing", "sideways", "--write")
	assert.Equal(t, "invalid_selection", out["status"])
	assert.Equal(t, false, out["committed"])
}
