package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"zero limit and negative offset clamp up", 0, -5, 1, 0},
		{"oversized limit capped at 100", 500, 10, 100, 10},
		{"values in range pass through", 25, 40, 25, 40},
		{"negative limit clamps to 1", -3, 0, 1, 0},
		{"default limit is untouched", DefaultPageLimit, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := NormalizePagination(tt.limit, tt.offset)
			require.Equal(t, tt.wantLimit, limit)
			require.Equal(t, tt.wantOffset, offset)
		})
	}
}
