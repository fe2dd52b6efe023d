package insights

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBatch_SingleDay(t *testing.T) {
	day := pacificMidnight(2010, time.December, 5)
	base := "SELECT metric, value FROM insights WHERE object_id='31698190356' AND metric IN ('page_active_users') AND period=604800 AND end_time="

	batch := BuildBatch(base, []time.Time{day})
	require.Len(t, batch, 1)
	assert.Equal(t, "0", batch[0].Key)
	assert.Equal(t, base+"1291536000", batch[0].Query)
	assert.True(t, day.Equal(batch[0].Day))
}

func TestBuildBatch_IndexCorrespondence(t *testing.T) {
	base := BuildBaseQuery(Day, testPageObject, []string{"page_active_users", "page_audio_plays"})
	days := []time.Time{
		pacificMidnight(2010, time.November, 1),
		pacificMidnight(2010, time.November, 2),
		pacificMidnight(2010, time.November, 3),
	}

	batch := BuildBatch(base, days)
	require.Len(t, batch, 3)
	for i, q := range batch {
		assert.Equal(t, strconv.Itoa(i), q.Key)
		assert.Equal(t, base+strconv.FormatInt(days[i].Unix(), 10), q.Query)
	}

	queries := batch.Queries()
	assert.Len(t, queries, 3)
	assert.Equal(t, base+"1288594800", queries["0"])
}

func TestBuildBatch_ThirtyDays(t *testing.T) {
	var in []time.Time
	c := utc(2010, time.November, 1, 9, 0)
	for i := 0; i < 30; i++ {
		in = append(in, c)
		c = c.AddDate(0, 0, 1)
	}
	base := BuildBaseQuery(Day, testPageObject, []string{"page_active_users", "page_audio_plays"})

	queries := BuildBatch(base, NormalizeAll(in)).Queries()
	require.Len(t, queries, 30)
	assert.Equal(t, base+"1288594800", queries["0"])
	assert.Equal(t, base+"1289113200", queries["6"])
	assert.Equal(t, base+"1291104000", queries["29"])
}

func TestBuildBatch_Empty(t *testing.T) {
	batch := BuildBatch("anything", nil)
	assert.Empty(t, batch)
	assert.Empty(t, batch.Queries())
}
