package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit int
	Skip  int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeSkip clamps negative offsets to zero.
func NormalizeSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// Normalize returns params with both fields clamped.
func Normalize(params Params) Params {
	return Params{
		Limit: NormalizeLimit(params.Limit),
		Skip:  NormalizeSkip(params.Skip),
	}
}
