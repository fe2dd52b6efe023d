package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightquery/internal/insights"
)

func TestLoader_LoadFromFolder(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.json"), []byte(fixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	count, files, err := NewLoader(db).LoadFromFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, files)

	stats, err := db.ListMetricsWithStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(1291536000), stats[0].MinEndTime)
}

func TestLoader_NormalizesEndTime(t *testing.T) {
	db := newTestDB(t)
	doc := `{"object_id":"1","period":"week","result":{"page_views":[{"end_time":"2010-12-05T20:00:00Z","value":5}]}}`

	_, err := NewLoader(db).LoadFromReader(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	values, err := db.QueryValues(context.Background(), "1", nil, insights.Week.Seconds(), 1291536000)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "5", string(values[0].Value))
}

func TestLoader_Rejects(t *testing.T) {
	db := newTestDB(t)
	for name, doc := range map[string]string{
		"not json":     `nope`,
		"no object":    `{"result":{}}`,
		"bad period":   `{"object_id":"1","period":"hourly","result":{}}`,
		"bad end_time": `{"object_id":"1","result":{"m":[{"end_time":"yesterday","value":1}]}}`,
		"no value":     `{"object_id":"1","result":{"m":[{"end_time":"2010-12-05"}]}}`,
	} {
		_, err := NewLoader(db).LoadFromReader(context.Background(), strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Time
	}{
		{"2010-12-05", pacificDay(2010, time.December, 5)},
		{"2010-12-05T08:00:00Z", time.Date(2010, time.December, 5, 8, 0, 0, 0, time.UTC)},
		{"2010-12-05T00:00:00-08:00", pacificDay(2010, time.December, 5)},
		{"2010-12-05 08:00:00", time.Date(2010, time.December, 5, 16, 0, 0, 0, time.UTC)},
		{"2010-12-05T02:00:00", time.Date(2010, time.December, 5, 10, 0, 0, 0, time.UTC)},
		{"1291536000", time.Unix(1291536000, 0)},
	}
	for _, tt := range tests {
		got, err := ParseInstant(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.expected.Equal(got), "%s: expected %v, got %v", tt.in, tt.expected, got)
	}

	// Wall clock timestamps land on the same day as the bare date.
	for _, in := range []string{"2010-12-05T02:00:00", "2010-12-05 23:59:59"} {
		got, err := ParseInstant(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2010-12-05", FormatDay(insights.NormalizeToDayStart(got)), in)
	}

	_, err := ParseInstant("next tuesday")
	assert.Error(t, err)

	got, err := ParseInstants([]string{"2010-12-05", " ", "2010-12-06"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.Equal(t, "2010-12-05", FormatDay(pacificDay(2010, time.December, 5)))
}
