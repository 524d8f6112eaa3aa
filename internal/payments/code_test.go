package payments

import (
	"testing"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
)

func TestNextUniqueCodeFirstPayment(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	code := NextUniqueCode(nil, now)
	if code != "EVOLVE202403001" {
		t.Fatalf("expected EVOLVE202403001, got %q", code)
	}
}

func TestNextUniqueCodeContinuesSequence(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	last := &models.Payment{UniqueCode: "EVOLVE202403041"}
	code := NextUniqueCode(last, now)
	if code != "EVOLVE202403042" {
		t.Fatalf("expected EVOLVE202403042, got %q", code)
	}
}

func TestNextUniqueCodeSequenceIsGlobalNotMonthly(t *testing.T) {
	// The sequence carries across month boundaries; only year/month in the
	// prefix change.
	now := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	last := &models.Payment{UniqueCode: "EVOLVE202403099"}
	code := NextUniqueCode(last, now)
	if code != "EVOLVE202404100" {
		t.Fatalf("expected EVOLVE202404100, got %q", code)
	}
}

func TestNextUniqueCodeMalformedLastCode(t *testing.T) {
	now := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	last := &models.Payment{UniqueCode: "xx"}
	code := NextUniqueCode(last, now)
	if code != "EVOLVE202401001" {
		t.Fatalf("expected sequence restart on malformed code, got %q", code)
	}
}

func TestNextUniqueCodesDistinctInSuccession(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	first := NextUniqueCode(nil, now)
	second := NextUniqueCode(&models.Payment{UniqueCode: first}, now)
	if first == second {
		t.Fatalf("successive codes must differ, both %q", first)
	}
}
