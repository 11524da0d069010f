package usno

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// buildRow lays out cells the way the yearly tables do.
func buildRow(day int, cells [12]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d  ", day)
	for i, c := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-9s", c)
	}
	return strings.TrimRight(b.String(), " ")
}

func fullYear(cell string) [12]string {
	var cells [12]string
	for i := range cells {
		cells[i] = cell
	}
	return cells
}

func TestParseRow(t *testing.T) {
	cells := fullYear("0720 1639")
	cells[5] = "**** ****"
	cells[11] = "---- ----"
	line := buildRow(1, cells)

	row, err := ParseRow(line)
	require.NoError(t, err)
	require.Equal(t, 1, row.Day)

	require.Equal(t, Cell{Hour: 7, Minute: 20, Valid: true}, row.Rise[0])
	require.Equal(t, Cell{Hour: 16, Minute: 39, Valid: true}, row.Set[0])
	require.Equal(t, Cell{Marker: MarkerAbove}, row.Rise[5])
	require.Equal(t, Cell{Marker: MarkerBelow}, row.Set[11])
}

func TestParseRow_ShortMonths(t *testing.T) {
	cells := fullYear("0600 1800")
	cells[1] = ""
	row, err := ParseRow(buildRow(30, cells))
	require.NoError(t, err)
	require.False(t, row.Rise[1].Valid)
	require.True(t, row.Rise[2].Valid)

	// Trailing months missing entirely.
	row, err = ParseRow("31  0719 1649")
	require.NoError(t, err)
	require.True(t, row.Rise[0].Valid)
	require.False(t, row.Set[11].Valid)
}

func TestParseRow_Invalid(t *testing.T) {
	tests := []string{
		"",
		"Day Rise  Set",
		"     h m  h m",
		"00  0720 1639",
		"32  0720 1639",
		"01  2570 1639",
		"01  07x0 1639",
		"2024  0720 1639",
		"20240720 1639",
	}
	for _, line := range tests {
		_, err := ParseRow(line)
		require.Error(t, err, "line %q", line)
	}
}

func TestLoadTable(t *testing.T) {
	zone := time.FixedZone("EST", -5*3600)

	lines := []string{
		"             o  ,    o  ,                            NEW YORK, NY",
		"Location: W074 00, N40 43                          Rise and Set for the Sun for 2024",
		"2024       0720 1639",
		"",
		"       Jan.       Feb.       Mar.",
		"Day Rise  Set  Rise  Set  Rise  Set",
		"     h m  h m   h m  h m   h m  h m",
		buildRow(1, fullYear("0720 1639")),
		buildRow(29, fullYear("0700 1700")),
		buildRow(30, fullYear("0650 1710")),
		buildRow(31, fullYear("0640 1720")),
	}

	records, err := LoadTable(strings.NewReader(strings.Join(lines, "\n")), 2024, zone)
	require.NoError(t, err)
	require.Len(t, records, 12+12+11+7)

	for i := 1; i < len(records); i++ {
		require.True(t, records[i].Date.After(records[i-1].Date))
	}

	feb29 := records[5]
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, zone), feb29.Date)

	rise, ok := records[0].RiseTime()
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 1, 1, 12, 20, 0, 0, time.UTC), rise.UTC())
}

func TestLoadTable_Empty(t *testing.T) {
	_, err := LoadTable(strings.NewReader("no table here\n"), 2024, time.UTC)
	require.Error(t, err)
}

func TestDailyRecord_Markers(t *testing.T) {
	rec := DailyRecord{
		Date: time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		Rise: Cell{Marker: MarkerAbove},
	}
	_, ok := rec.RiseTime()
	require.False(t, ok)
}
