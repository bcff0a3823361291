package outwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummaries() []schema.UserSummary {
	return []schema.UserSummary{
		{
			ID:   "Thomas",
			Name: "Thomas",
			Preferences: []schema.ScoredPreference{
				{ID: 1, Name: "c1", Score: 10, Stance: schema.ProStance},
				{ID: 2, Name: "c2", Score: 3, Stance: schema.AgainstStance},
				{ID: 3, Name: "c3", Score: 7, Stance: schema.ProStance},
			},
			TotalAbsoluteOffset: 9,
			HistorySize:         1,
		},
		{
			ID:                  "neutral",
			Preferences:         []schema.ScoredPreference{{ID: 1, Name: "c1", Score: 5, Stance: schema.NeutralStance}},
			TotalAbsoluteOffset: 0,
		},
	}
}

func TestWriteUsersTable(t *testing.T) {
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeUsersTable(&buf, sampleSummaries(), cfg, fmtFloat, intFmt))
	out := buf.String()

	assert.Contains(t, out, "Thomas")
	assert.Contains(t, out, "9.00")
	assert.Contains(t, out, "Showing 2 users")
}

func TestWriteUsersCSV(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, WriteUsers(sampleSummaries(), testConfig(schema.CSVOut, outputPath)))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 5) // header + one row per scored preference
	assert.Equal(t, "user,name,preference_id,preference,score,stance", lines[0])
	assert.Equal(t, "Thomas,Thomas,2,c2,3.00,against", lines[2])
	assert.Equal(t, "neutral,,1,c1,5.00,neutral", lines[4])
}

func TestWriteUsersJSON(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, WriteUsers(sampleSummaries(), testConfig(schema.JSONOut, outputPath)))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"stance": "against"`)
	assert.Contains(t, string(content), `"total_absolute_offset": 9`)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		fixedWidth int
		expected   int
	}{
		{"narrow terminal clamps to minimum", 40, 45, minNameWidth},
		{"wide terminal clamps to maximum", 300, 45, maxNameWidth},
		{"in between", 120, 45, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(schema.TextOut, "")
			cfg.Width = tt.width
			assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg, tt.fixedWidth))
		})
	}
}
