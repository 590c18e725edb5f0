package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LocalizedText mirrors the JSON structure stored in localized jsonb columns
// (authors.name, works.title, ...): an object keyed by language code.
type LocalizedText map[string]string

// Scan implements sql.Scanner
func (t *LocalizedText) Scan(src any) error {
	if src == nil {
		*t = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			*t = nil
			return nil
		}
		return json.Unmarshal(data, t)
	case string:
		if data == "" {
			*t = nil
			return nil
		}
		return json.Unmarshal([]byte(data), t)
	default:
		return fmt.Errorf("LocalizedText: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer
func (t LocalizedText) Value() (driver.Value, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return b, nil
}
