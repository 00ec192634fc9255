package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SyncSnapshot holds the last-known platform entity counts for a store.
type SyncSnapshot struct {
	Products  int `json:"products"`
	Orders    int `json:"orders"`
	Customers int `json:"customers"`
}

// Value marshals the snapshot into JSON for Postgres.
func (s SyncSnapshot) Value() (driver.Value, error) {
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the snapshot.
func (s *SyncSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = SyncSnapshot{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("sync snapshot: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, s)
}
