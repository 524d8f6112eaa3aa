package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Params{Limit: -1, Skip: -5})
	if got.Limit != DefaultLimit || got.Skip != 0 {
		t.Fatalf("unexpected normalized params %+v", got)
	}
}
