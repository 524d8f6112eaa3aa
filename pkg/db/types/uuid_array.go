package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray persists a slice of UUIDs as a Postgres uuid[] column.
type UUIDArray []uuid.UUID

// Value implements driver.Valuer.
func (a UUIDArray) Value() (driver.Value, error) {
	raw := make(pq.StringArray, 0, len(a))
	for _, id := range a {
		raw = append(raw, id.String())
	}
	return raw.Value()
}

// Scan implements sql.Scanner.
func (a *UUIDArray) Scan(src any) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan uuid array: %w", err)
	}
	out := make(UUIDArray, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("parse uuid %q: %w", value, err)
		}
		out = append(out, id)
	}
	*a = out
	return nil
}

// Contains reports whether the array holds the provided id.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}

// GormDataType tells GORM which column type to use.
func (UUIDArray) GormDataType() string {
	return "uuid[]"
}
