// Package valueobject holds small value types persisted as database columns.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrScanLabels indicates the database value cannot be read as a JSON object.
var ErrScanLabels = errors.New("valueobject: labels scan value is not a JSON object")

// Labels are free-form string tags attached to a timeline mark, stored as a
// jsonb object.
type Labels map[string]string

// Value implements driver.Valuer. A nil map is stored as {}.
func (l Labels) Value() (driver.Value, error) {
	if l == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(l))
}

// Scan implements sql.Scanner.
func (l *Labels) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*l = Labels{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		out := make(Labels, len(v))
		for k, x := range v {
			s, ok := x.(string)
			if !ok {
				return fmt.Errorf("%w: key %q holds %T", ErrScanLabels, k, x)
			}
			out[k] = s
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrScanLabels, value)
	}

	out := Labels{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("%w: %w", ErrScanLabels, err)
	}
	*l = out
	return nil
}

// Get returns the label value or "".
func (l Labels) Get(key string) string {
	return l[key]
}

// Keys returns the label keys in sorted order.
func (l Labels) Keys() []string {
	return slices.Sorted(maps.Keys(l))
}
