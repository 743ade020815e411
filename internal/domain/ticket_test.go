package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTicketStatus(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want TicketStatus
		ok   bool
	}{
		{"open", "open", TicketStatusOpen, true},
		{"underscored", "in_progress", TicketStatusInProgress, true},
		{"hyphenated", "in-progress", TicketStatusInProgress, true},
		{"trimmed", " resolved ", TicketStatusResolved, true},
		{"closed", "closed", TicketStatusClosed, true},
		{"empty", "", "", false},
		{"unknown", "reopened", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTicketStatus(tc.raw)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseTicketPriorityDefaultsToMedium(t *testing.T) {
	got, ok := ParseTicketPriority("")
	require.True(t, ok)
	require.Equal(t, TicketPriorityMedium, got)

	_, ok = ParseTicketPriority("urgent")
	require.False(t, ok)
}

func TestParseTicketCategoryDefaultsToGeneral(t *testing.T) {
	got, ok := ParseTicketCategory("")
	require.True(t, ok)
	require.Equal(t, TicketCategoryGeneral, got)

	_, ok = ParseTicketCategory("hardware")
	require.False(t, ok)
}

func TestTicketStatusTerminal(t *testing.T) {
	require.False(t, TicketStatusOpen.Terminal())
	require.False(t, TicketStatusInProgress.Terminal())
	require.True(t, TicketStatusResolved.Terminal())
	require.True(t, TicketStatusClosed.Terminal())
}
