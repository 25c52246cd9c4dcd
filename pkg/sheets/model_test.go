package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteTab(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"CheckpointStatus", "CheckpointStatus"},
		{"Sheet_1", "Sheet_1"},
		{"Member List", "'Member List'"},
		{"Bob's Books", "'Bob''s Books'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuoteTab(tt.in))
	}
}

func TestRangeAddress(t *testing.T) {
	tests := []struct {
		tab           string
		row, from, to int
		want          string
	}{
		{"CheckpointStatus", 2, 2, 3, "CheckpointStatus!C2:D2"},
		{"CheckpointStatus", 7, 3, 2, "CheckpointStatus!C7:D7"},
		{"CheckpointStatus", 3, 0, 0, "CheckpointStatus!A3:A3"},
		{"CheckpointStatus", 4, 25, 26, "CheckpointStatus!Z4:AA4"},
		{"CheckpointStatus", 5, 27, 52, "CheckpointStatus!AB5:BA5"},
		{"Status Sheet", 2, 0, 1, "'Status Sheet'!A2:B2"},
		{"CheckpointStatus", 1048577, 2, 3, "CheckpointStatus!C1048577:D1048577"},
	}
	for _, tt := range tests {
		got, err := RangeAddress(tt.tab, tt.row, tt.from, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRangeAddressInvalid(t *testing.T) {
	_, err := RangeAddress("Tab", 0, 0, 1)
	assert.Error(t, err)
	_, err = RangeAddress("Tab", 2, -1, 1)
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want CellRange
	}{
		{"CheckpointStatus!C2:D2", CellRange{Tab: "CheckpointStatus", Row: 2, FromCol: 2, ToCol: 3}},
		{"CheckpointStatus!AA10", CellRange{Tab: "CheckpointStatus", Row: 10, FromCol: 26, ToCol: 26}},
		{"'Bob''s Books'!B3:A3", CellRange{Tab: "Bob's Books", Row: 3, FromCol: 0, ToCol: 1}},
		{"CheckpointStatus!c2:d2", CellRange{Tab: "CheckpointStatus", Row: 2, FromCol: 2, ToCol: 3}},
		{"CheckpointStatus!C2000000:D2000000", CellRange{Tab: "CheckpointStatus", Row: 2000000, FromCol: 2, ToCol: 3}},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseRangeErrors(t *testing.T) {
	for _, in := range []string{"C2:D2", "!C2", "Tab!C2:D3", "Tab!2C", "Tab!"} {
		_, err := ParseRange(in)
		assert.Error(t, err, in)
	}
}

func TestRangeAddressRoundTrip(t *testing.T) {
	addr, err := RangeAddress("My Tab", 12, 30, 31)
	require.NoError(t, err)
	got, err := ParseRange(addr)
	require.NoError(t, err)
	assert.Equal(t, CellRange{Tab: "My Tab", Row: 12, FromCol: 30, ToCol: 31}, got)
}
