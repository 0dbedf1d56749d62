package character

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrConflict is returned when an update's expected prior value no longer matches the document.
var ErrConflict = errors.New("update conflict")

// Update is a proposed state change the host persistence layer commits.
// The engine never applies updates itself.
type Update struct {
	// Target is "" for the character record itself, otherwise an item id.
	Target string `json:"target,omitempty"`
	// Path is a dotted path relative to the target, e.g. "system.currentAP".
	Path string `json:"path"`
	// From is the value the engine read; nil skips the prior-value check.
	From any `json:"from,omitempty"`
	// Value is the new value.
	Value any `json:"value"`
}

// String renders the update for logs and CLI output.
func (u Update) String() string {
	target := "character"
	if u.Target != "" {
		target = "item " + u.Target
	}
	return fmt.Sprintf("%s %s: %v -> %v", target, u.Path, u.From, u.Value)
}

// ActorUpdate builds an update of the character record.
func ActorUpdate(path string, from, value any) Update {
	return Update{Path: path, From: from, Value: value}
}

// ItemUpdate builds an update of one owned item.
func ItemUpdate(id, path string, from, value any) Update {
	return Update{Target: id, Path: path, From: from, Value: value}
}

// ApplyJSON applies updates to a JSON character document whose owned items are
// embedded under "items". Item targets are located by "_id".
//
// Precondition: doc must be a JSON object.
// Postcondition: on success every update is applied in order; on error the
// returned document is nil and the input is untouched. A From mismatch wraps ErrConflict.
func ApplyJSON(doc []byte, updates []Update) ([]byte, error) {
	out := append([]byte(nil), doc...)
	for _, u := range updates {
		path, err := resolvePath(out, u)
		if err != nil {
			return nil, err
		}
		if u.From != nil {
			current := gjson.GetBytes(out, path)
			if !sameValue(current.Value(), u.From) {
				return nil, fmt.Errorf("%w: %s expected %v, found %v", ErrConflict, path, u.From, current.Value())
			}
		}
		out, err = sjson.SetBytes(out, path, u.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", path, err)
		}
	}
	return out, nil
}

func resolvePath(doc []byte, u Update) (string, error) {
	if u.Target == "" {
		return u.Path, nil
	}
	ids := gjson.GetBytes(doc, "items.#._id").Array()
	for i, id := range ids {
		if id.String() == u.Target {
			return fmt.Sprintf("items.%d.%s", i, u.Path), nil
		}
	}
	return "", fmt.Errorf("item %q not found in document", u.Target)
}

// sameValue compares a gjson-decoded value with an engine-side value. JSON
// numbers decode as float64, so numeric kinds compare by value.
func sameValue(have, want any) bool {
	hf, hNum := toFloat(have)
	wf, wNum := toFloat(want)
	if hNum && wNum {
		return hf == wf
	}
	hv, wv := reflect.ValueOf(have), reflect.ValueOf(want)
	if hv.Kind() == reflect.String && wv.Kind() == reflect.String {
		return hv.String() == wv.String()
	}
	return reflect.DeepEqual(have, want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// AppendItem builds an update that adds a new owned item record.
func AppendItem(rec Record) Update {
	return Update{Path: "items.-1", Value: map[string]any(rec)}
}
