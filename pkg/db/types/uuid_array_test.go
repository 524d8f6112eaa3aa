package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New()}

	value, err := ids.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned UUIDArray
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scanned) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(scanned))
	}
	if !scanned.Contains(ids[0]) || !scanned.Contains(ids[1]) {
		t.Fatal("scanned array missing original ids")
	}
}

func TestUUIDArrayScanRejectsGarbage(t *testing.T) {
	var scanned UUIDArray
	if err := scanned.Scan("{not-a-uuid}"); err == nil {
		t.Fatal("expected parse error")
	}
}
