package insights

import (
	"strconv"
	"time"
)

// BatchQuery is one keyed query of a batch.
type BatchQuery struct {
	Key   string
	Query string
	Day   time.Time
}

// Batch is an ordered list of queries. The remote API answers a batch with an
// array in submission order, so position, not key, ties a result to its query.
type Batch []BatchQuery

// BuildBatch appends each day's epoch seconds to baseQuery. Entry i is keyed
// "i".
func BuildBatch(baseQuery string, days []time.Time) Batch {
	batch := make(Batch, 0, len(days))
	for i, day := range days {
		batch = append(batch, BatchQuery{
			Key:   strconv.Itoa(i),
			Query: baseQuery + strconv.FormatInt(EpochSeconds(day), 10),
			Day:   day,
		})
	}
	return batch
}

// Queries returns the batch as an index key to query mapping. The mapping
// loses submission order; executors should iterate the Batch itself.
func (b Batch) Queries() map[string]string {
	out := make(map[string]string, len(b))
	for _, q := range b {
		out[q.Key] = q.Query
	}
	return out
}
