package pgx

import "testing"

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		name      string
		skip      int
		limit     int
		wantSkip  int
		wantLimit int
	}{
		{name: "defaults", skip: 0, limit: 0, wantSkip: 0, wantLimit: defaultLimit},
		{name: "negative skip", skip: -10, limit: 20, wantSkip: 0, wantLimit: 20},
		{name: "limit capped", skip: 5, limit: 100000, wantSkip: 5, wantLimit: maxLimit},
		{name: "in range", skip: 10, limit: 50, wantSkip: 10, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, limit := normalizeRange(tt.skip, tt.limit)
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Fatalf("normalizeRange(%d, %d) = (%d, %d), want (%d, %d)",
					tt.skip, tt.limit, skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
