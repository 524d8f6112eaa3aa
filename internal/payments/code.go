package payments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
)

const codePrefix = "EVOLVE"

// NextUniqueCode builds the receipt code for the next payment:
// EVOLVE<year><MM><NNN>. The 3-digit sequence continues from the most
// recently created payment regardless of which month that payment belongs
// to; only the embedded year/month reflect "now". Existing receipt codes
// already follow this numbering, so the sequence must not reset per month.
func NextUniqueCode(last *models.Payment, now time.Time) string {
	sequence := 1
	if last != nil {
		if parsed, ok := trailingSequence(last.UniqueCode); ok {
			sequence = parsed + 1
		}
	}
	return fmt.Sprintf("%s%d%02d%03d", codePrefix, now.Year(), int(now.Month()), sequence)
}

func trailingSequence(code string) (int, bool) {
	if len(code) < 3 {
		return 0, false
	}
	parsed, err := strconv.Atoi(code[len(code)-3:])
	if err != nil {
		return 0, false
	}
	return parsed, true
}
