package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     *float64
		expected  string
	}{
		{"precision 2", 2, floatPtr(3.14159), "3.14"},
		{"precision 0", 0, floatPtr(3.14159), "3"},
		{"precision 4", 4, floatPtr(3.14159), "3.1416"},
		{"negative value", 2, floatPtr(-42.567), "-42.57"},
		{"undefined value", 2, nil, notAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestFormatSignedAndShare(t *testing.T) {
	assert.Equal(t, "+0.42", formatSigned(floatPtr(0.4213), 2))
	assert.Equal(t, "-1.000", formatSigned(floatPtr(-1), 3))
	assert.Equal(t, notAvailable, formatSigned(nil, 2))

	assert.Equal(t, "+25.0%", formatShare(floatPtr(0.25)))
	assert.Equal(t, "-12.5%", formatShare(floatPtr(-0.125)))
	assert.Equal(t, notAvailable, formatShare(nil))
}

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "None", joinOrNone(nil, ", "))
	assert.Equal(t, "a > b", joinOrNone([]string{"a", "b"}, " > "))
}

func TestColorize(t *testing.T) {
	assert.Equal(t, schema.GoodLabel, colorize(schema.GoodLabel, &contract.Config{UseColors: false}))
	assert.Contains(t, colorize(schema.GoodLabel, &contract.Config{UseColors: true}), schema.GoodLabel)
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		expected string
	}{
		{
			name: "undefined rating is null",
			data: schema.EnrichedRating{Rank: 1, Label: schema.UnknownLabel, UserID: "Thomas", ProductID: 5},
			expected: `{
  "rank": 1,
  "label": "Unknown",
  "user_id": "Thomas",
  "product_id": 5,
  "product_name": "",
  "score": null,
  "raw_score": null,
  "contradiction": false
}
`,
		},
		{
			name: "contribution list",
			data: []schema.ExplainedContribution{{ID: 7, Name: "palm oil", Value: floatPtr(-0.5), Share: floatPtr(-1), Vetoed: true}},
			expected: `[
  {
    "id": 7,
    "name": "palm oil",
    "value": -0.5,
    "share": -1,
    "vetoed": true
  }
]
`,
		},
		{
			name:     "empty ranking",
			data:     []schema.EnrichedRating{},
			expected: "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeJSON(&buf, tt.data))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	header := []string{"rank", "product", "score", "label"}
	tests := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{
			name:     "ranked products",
			rows:     [][]string{{"1", "Oat milk", "5.95", "Good"}, {"2", "#5", notAvailable, "Unknown"}},
			expected: "rank,product,score,label\n1,Oat milk,5.95,Good\n2,#5,-,Unknown\n",
		},
		{
			name:     "no ratings",
			expected: "rank,product,score,label\n",
		},
		{
			name:     "product name with comma",
			rows:     [][]string{{"1", "Bread, whole grain", "5.14", "Neutral"}},
			expected: "rank,product,score,label\n1,\"Bread, whole grain\",5.14,Neutral\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCSVWithHeaderError(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"rank"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	dir := t.TempDir()
	writeRating := func(w io.Writer) error {
		return writeJSON(w, schema.EnrichedRating{Rank: 1, ProductID: 2, Score: floatPtr(5.949074)})
	}

	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(w io.Writer) error {
			called = true
			return nil
		}, "Wrote JSON")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "ranking.json")
		require.NoError(t, writeWithFile(path, writeRating, "Wrote JSON"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var got schema.EnrichedRating
		require.NoError(t, json.Unmarshal(content, &got))
		assert.Equal(t, int64(2), got.ProductID)
		require.NotNil(t, got.Score)
		assert.InDelta(t, 5.949074, *got.Score, 1e-9)
	})

	t.Run("writer error", func(t *testing.T) {
		err := writeWithFile(filepath.Join(dir, "broken.json"), func(io.Writer) error {
			return assert.AnError
		}, "Wrote JSON")
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("invalid path", func(t *testing.T) {
		err := writeWithFile("/nonexistent/path/ranking.json", writeRating, "Wrote JSON")
		assert.Error(t, err)
	})
}
