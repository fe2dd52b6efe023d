package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	response []byte
	err      error

	calls       int
	batch       Batch
	accessToken string
}

func (f *fakeExecutor) ExecuteBatch(_ context.Context, batch Batch, accessToken string) ([]byte, error) {
	f.calls++
	f.batch = batch
	f.accessToken = accessToken
	return f.response, f.err
}

// echoExecutor answers each query with a payload naming its key.
type echoExecutor struct{}

func (echoExecutor) ExecuteBatch(_ context.Context, batch Batch, _ string) ([]byte, error) {
	parts := make([]string, len(batch))
	for i, q := range batch {
		parts[i] = fmt.Sprintf(`[{"metric":"key","value":%q}]`, q.Key)
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

func TestExecuteByInstant_FixedResponse(t *testing.T) {
	day := pacificMidnight(2010, time.December, 5)
	exec := &fakeExecutor{
		response: []byte(`[[{"metric":"page_fans","value":3777},{"metric":"page_fans_gender","value":{"U":58,"F":1656,"M":2014}}]]`),
	}

	results, err := ExecuteByInstant(context.Background(), exec, testPageObject, "", Day, nil, []time.Time{day})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, exec.calls)

	payload, ok := results.Lookup(day)
	require.True(t, ok)
	assert.JSONEq(t,
		`[{"metric":"page_fans","value":3777},{"metric":"page_fans_gender","value":{"U":58,"F":1656,"M":2014}}]`,
		string(payload))

	values, err := DecodeMetrics(payload)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "page_fans", values[0].Metric)
	assert.Equal(t, "3777", string(values[0].Value))
}

func TestExecuteByInstant_RoundTrip(t *testing.T) {
	in := []time.Time{
		utc(2010, time.November, 9, 20, 0),
		utc(2010, time.November, 3, 20, 0),
		utc(2010, time.November, 7, 9, 0),
		utc(2010, time.November, 3, 23, 0),
		utc(2010, time.November, 5, 12, 0),
	}

	results, err := ExecuteByInstant(context.Background(), echoExecutor{}, testPageObject, "token", Week, []string{"page_fans"}, in)
	require.NoError(t, err)

	days := NormalizeAll(in)
	require.Len(t, results, len(days))
	assert.Equal(t, days, results.Days())
	for i, r := range results {
		assert.JSONEq(t, fmt.Sprintf(`[{"metric":"key","value":"%d"}]`, i), string(r.Payload))
	}

	// every original instant finds the payload of its day
	for _, instant := range in {
		payload, ok := results.Lookup(instant)
		require.True(t, ok)
		idx := 0
		for i, d := range days {
			if d.Equal(NormalizeToDayStart(instant)) {
				idx = i
			}
		}
		assert.JSONEq(t, fmt.Sprintf(`[{"metric":"key","value":"%d"}]`, idx), string(payload))
	}

	_, ok := results.Lookup(utc(2011, time.January, 1, 12, 0))
	assert.False(t, ok)
}

func TestExecuteByInstant_SubmitsBatch(t *testing.T) {
	exec := &fakeExecutor{response: []byte(`[[],[]]`)}
	in := []time.Time{utc(2003, time.June, 30, 15, 3), utc(2003, time.June, 30, 2, 21)}

	_, err := ExecuteByInstant(context.Background(), exec, testPageObject, "secret", Day, []string{"page_fans", ""}, in)
	require.NoError(t, err)

	require.Len(t, exec.batch, 2)
	assert.Equal(t, "secret", exec.accessToken)
	base := BuildBaseQuery(Day, testPageObject, []string{"page_fans"})
	assert.Equal(t, base+"1056870000", exec.batch[0].Query)
	assert.Equal(t, base+"1056956400", exec.batch[1].Query)
}

func TestExecuteByInstant_BadArgs(t *testing.T) {
	valid := []time.Time{pacificMidnight(2010, time.December, 5)}

	tests := []struct {
		name     string
		exec     BatchExecutor
		objectID string
		period   Period
		instants []time.Time
		arg      string
	}{
		{"nil executor", nil, testPageObject, Day, valid, "executor"},
		{"blank object", &fakeExecutor{}, "", Day, valid, "objectID"},
		{"whitespace object", &fakeExecutor{}, "  ", Day, valid, "objectID"},
		{"zero period", &fakeExecutor{}, testPageObject, 0, valid, "period"},
		{"no instants", &fakeExecutor{}, testPageObject, Day, []time.Time{}, "instants"},
		{"nil instants", &fakeExecutor{}, testPageObject, Day, nil, "instants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteByInstant(context.Background(), tt.exec, tt.objectID, "", tt.period, nil, tt.instants)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.arg, argErr.Arg)

			if f, ok := tt.exec.(*fakeExecutor); ok {
				assert.Zero(t, f.calls)
			}
		})
	}
}

func TestExecuteByInstant_ReportsEveryBadArg(t *testing.T) {
	_, err := ExecuteByInstant(context.Background(), nil, "", "", 0, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	for _, arg := range []string{"executor", "objectID", "period", "instants"} {
		assert.Contains(t, err.Error(), arg)
	}
}

func TestExecuteByInstant_ExecutorErrorPassesThrough(t *testing.T) {
	remote := errors.New("connection refused")
	exec := &fakeExecutor{err: remote}

	_, err := ExecuteByInstant(context.Background(), exec, testPageObject, "", Day, nil, []time.Time{utc(2010, time.May, 1, 12, 0)})
	assert.Same(t, remote, err)
}

func TestExecuteByInstant_ResponseMismatch(t *testing.T) {
	in := []time.Time{
		pacificMidnight(2010, time.December, 5),
		pacificMidnight(2010, time.December, 6),
	}

	tests := []struct {
		name     string
		response string
		received int
	}{
		{"undersized", `[[{"metric":"page_fans","value":1}]]`, 1},
		{"oversized", `[[],[],[]]`, 3},
		{"empty array", `[]`, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteByInstant(context.Background(), &fakeExecutor{response: []byte(tt.response)}, testPageObject, "", Day, nil, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrResponseMismatch)

			var mm *MismatchError
			require.ErrorAs(t, err, &mm)
			assert.Equal(t, 2, mm.Requested)
			assert.Equal(t, tt.received, mm.Received)
		})
	}
}

func TestExecuteByInstant_NotAnArray(t *testing.T) {
	for _, response := range []string{`{"error_code":1}`, `not json`, ``} {
		_, err := ExecuteByInstant(context.Background(), &fakeExecutor{response: []byte(response)}, testPageObject, "", Day, nil,
			[]time.Time{pacificMidnight(2010, time.December, 5)})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrResponseMismatch, "response %q", response)
	}
}
