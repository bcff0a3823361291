package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExplanation() schema.Explanation {
	return schema.Explanation{
		UserID:      "Thomas",
		ProductID:   2,
		ProductName: "Most Preferred Product",
		Algorithm:   "hypnorm",
		Label:       schema.NeutralLabel,
		Rating:      floatPtr(5.949074),
		RawRating:   floatPtr(0.189815),
		Preferences: []schema.ExplainedContribution{
			{ID: 1, Name: "c1", Value: floatPtr(0.6), Share: floatPtr(0.75)},
			{ID: 2, Name: "c2", Value: floatPtr(-0.2), Share: floatPtr(-0.25)},
		},
		ProductTags: []schema.ExplainedContribution{
			{ID: 5, Name: "z5", Value: floatPtr(0.6), Share: floatPtr(0.75)},
			{ID: 6, Name: "z6", Value: floatPtr(-0.2), Share: floatPtr(-0.25)},
		},
		ByPreference: []schema.PreferenceBreakdown{
			{PreferenceID: 1, Name: "c1", ProductTags: []schema.ExplainedContribution{
				{ID: 5, Name: "z5", Value: floatPtr(0.6), Share: floatPtr(1)},
			}},
		},
	}
}

func TestWriteExplanationText(t *testing.T) {
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeExplanationText(&buf, sampleExplanation(), cfg, fmtFloat))
	out := buf.String()

	assert.Contains(t, out, "Product: Most Preferred Product (#2)")
	assert.Contains(t, out, "Rating: 5.95 [Neutral]")
	assert.Contains(t, out, "+0.60")
	assert.Contains(t, out, "-25.0%")
	assert.Contains(t, out, "Through c1:")
}

func TestWriteExplanationTextEdgeCases(t *testing.T) {
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, _ := createFormatters(cfg.Precision)

	t.Run("no information", func(t *testing.T) {
		ex := schema.Explanation{UserID: "Thomas", ProductID: 5, Label: schema.UnknownLabel, NoInformation: true}
		var buf bytes.Buffer
		require.NoError(t, writeExplanationText(&buf, ex, cfg, fmtFloat))
		assert.Contains(t, buf.String(), "Rating: - [Unknown]")
		assert.Contains(t, buf.String(), "No product tag carries information")
	})

	t.Run("contradiction", func(t *testing.T) {
		ex := schema.Explanation{
			UserID:        "Thomas",
			ProductID:     3,
			Label:         schema.VetoedLabel,
			Rating:        floatPtr(0),
			Contradiction: true,
			Contradictions: []schema.Contradiction{
				{PreferenceID: 1, PreferenceTagID: 1, ProductTagID: 7, Value: -1},
			},
			ProductTags: []schema.ExplainedContribution{{ID: 7, Name: "z7", Vetoed: true}},
		}
		var buf bytes.Buffer
		require.NoError(t, writeExplanationText(&buf, ex, cfg, fmtFloat))
		out := buf.String()
		assert.Contains(t, out, "Vetoed by:")
		assert.Contains(t, out, "preference tag #1 vs product tag #7 (-1.00)")
		assert.Contains(t, out, "vetoed")
	})
}

func TestWriteExplanationJSON(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "explain.json")
	require.NoError(t, WriteExplanation(sampleExplanation(), testConfig(schema.JSONOut, outputPath)))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var decoded schema.Explanation
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, int64(2), decoded.ProductID)
	require.Len(t, decoded.Preferences, 2)
	assert.Equal(t, "c1", decoded.Preferences[0].Name)
	require.Len(t, decoded.ByPreference, 1)
}

func TestWriteExplanationCSV(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "explain.csv")
	require.NoError(t, WriteExplanation(sampleExplanation(), testConfig(schema.CSVOut, outputPath)))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 6) // header + 2 preferences + 2 product tags + 1 breakdown
	assert.Equal(t, "section,preference_id,preference,product_tag_id,product_tag,value,share,vetoed", lines[0])
	assert.Equal(t, "preference,1,c1,,,0.60,0.75,false", lines[1])
	assert.Equal(t, "product_tag,,,6,z6,-0.20,-0.25,false", lines[4])
	assert.Equal(t, "breakdown,1,c1,5,z5,0.60,1.00,false", lines[5])
}

func TestWriteExplanationParquetUnsupported(t *testing.T) {
	err := WriteExplanation(sampleExplanation(), testConfig(schema.ParquetOut, filepath.Join(t.TempDir(), "x.parquet")))
	require.Error(t, err)
}
