package holidays_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
	"github.com/meenmo/moschedule/holidays"
)

const krxFile = `
name: krx
weekend: [sat, sun]
holidays:
  - "2024-01-01"
  - "2024-02-09"
  - "2024-02-12"
  - "2025-01-01"
`

func TestParseFile(t *testing.T) {
	t.Parallel()

	src, err := holidays.ParseFile(strings.NewReader(krxFile))
	require.NoError(t, err)
	assert.Equal(t, "KRX", src.Name())
	assert.Equal(t, calendar.WeekendSaturdaySunday, src.Weekend())

	hs, err := src.Holidays(2024, 2024)
	require.NoError(t, err)
	assert.Equal(t, []dates.Date{
		dates.MustFromYMD(2024, 1, 1),
		dates.MustFromYMD(2024, 2, 9),
		dates.MustFromYMD(2024, 2, 12),
	}, hs)
}

func TestParseFile_Weekend(t *testing.T) {
	t.Parallel()

	src, err := holidays.ParseFile(strings.NewReader("name: a\nholidays: []\n"))
	require.NoError(t, err)
	assert.Equal(t, calendar.WeekendSaturdaySunday, src.Weekend())

	src, err = holidays.ParseFile(strings.NewReader("name: b\nweekend: []\n"))
	require.NoError(t, err)
	assert.Equal(t, calendar.WeekendNone, src.Weekend())

	src, err = holidays.ParseFile(strings.NewReader("name: c\nweekend: [fri, sat]\n"))
	require.NoError(t, err)
	assert.Equal(t, calendar.WeekendFridaySaturday, src.Weekend())
}

func TestParseFile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no name", "holidays: [\"2024-01-01\"]\n", "no name"},
		{"bad weekend", "name: x\nweekend: [someday]\n", "weekend"},
		{"bad date", "name: x\nholidays:\n  - \"2024-01-01\"\n  - \"2024-02-30\"\n", "holidays[1]"},
		{"not yaml", "name: [\n", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := holidays.ParseFile(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "krx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(krxFile), 0o600))

	src, err := holidays.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "KRX", src.Name())

	_, err = holidays.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
