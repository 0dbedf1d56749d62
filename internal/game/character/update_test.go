package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

const sampleDoc = `{
  "_id": "c1",
  "system": {"defenses": {"facing": "front"}, "naturalDeflection": {"leftarm": {"current": 1, "max": 1, "stacks": true}}},
  "items": [
    {"_id": "sk", "type": "skill", "system": {"rank": "adept"}},
    {"_id": "arms", "type": "armor", "system": {"ap": 4, "currentAP": 4, "location": "Arms"}}
  ]
}`

func TestApplyJSON_ActorAndItemUpdates(t *testing.T) {
	out, err := character.ApplyJSON([]byte(sampleDoc), []character.Update{
		character.ActorUpdate("system.naturalDeflection.leftarm.current", 1, 0),
		character.ItemUpdate("arms", "system.derivedLeftAP", nil, 2),
		character.ActorUpdate("system.defenses.facing", character.FacingFront, string(character.FacingBack)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), gjson.GetBytes(out, "system.naturalDeflection.leftarm.current").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(out, "items.1.system.derivedLeftAP").Int())
	assert.Equal(t, "back", gjson.GetBytes(out, "system.defenses.facing").String())
	assert.Equal(t, int64(4), gjson.GetBytes(out, "items.1.system.currentAP").Int())
}

func TestApplyJSON_ConflictLeavesInputUntouched(t *testing.T) {
	doc := []byte(sampleDoc)
	out, err := character.ApplyJSON(doc, []character.Update{
		character.ItemUpdate("arms", "system.currentAP", 3, 1),
	})
	require.ErrorIs(t, err, character.ErrConflict)
	assert.Nil(t, out)
	assert.JSONEq(t, sampleDoc, string(doc))
}

func TestApplyJSON_UnknownItem(t *testing.T) {
	_, err := character.ApplyJSON([]byte(sampleDoc), []character.Update{
		character.ItemUpdate("missing", "system.equipped", nil, true),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, character.ErrConflict)
}

func TestUpdate_String(t *testing.T) {
	u := character.ItemUpdate("arms", "system.currentAP", 4, 2)
	assert.Equal(t, "item arms system.currentAP: 4 -> 2", u.String())
	assert.Equal(t, "character system.level: 3 -> 4", character.ActorUpdate("system.level", 3, 4).String())
}
