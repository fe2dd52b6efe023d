package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightquery/internal/insights"
)

func testBatch(n int) insights.Batch {
	var days []time.Time
	start := time.Date(2010, time.November, 1, 0, 0, 0, 0, insights.TargetLocation())
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return insights.BuildBatch(insights.BuildBaseQuery(insights.Day, "31698190356", []string{"page_fans"}), days)
}

func TestEncodeQueries_KeepsBatchOrder(t *testing.T) {
	batch := testBatch(12)
	raw, err := encodeQueries(batch)
	require.NoError(t, err)

	// keys must appear 0..11, not lexically
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)
	for i := 0; dec.More(); i++ {
		key, err := dec.Token()
		require.NoError(t, err)
		assert.Equal(t, batch[i].Key, key)
		val, err := dec.Token()
		require.NoError(t, err)
		assert.Equal(t, batch[i].Query, val)
	}
}

func TestExecuteBatch(t *testing.T) {
	batch := testBatch(2)
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, multiqueryEndpoint, r.URL.Path)
		assert.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"queries":      r.PostForm.Get("queries"),
			"format":       r.PostForm.Get("format"),
			"access_token": r.PostForm.Get("access_token"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"metric":"page_fans","value":1}],[{"metric":"page_fans","value":2}]]`))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL+"/", time.Second).ExecuteBatch(context.Background(), batch, "token123")
	require.NoError(t, err)
	assert.JSONEq(t, `[[{"metric":"page_fans","value":1}],[{"metric":"page_fans","value":2}]]`, string(body))

	assert.Equal(t, "json", gotForm["format"])
	assert.Equal(t, "token123", gotForm["access_token"])
	var queries map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotForm["queries"]), &queries))
	assert.Equal(t, batch.Queries(), queries)
}

func TestExecuteBatch_NoAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		_, present := r.PostForm["access_token"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`[[]]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).ExecuteBatch(context.Background(), testBatch(1), "")
	require.NoError(t, err)
}

func TestExecuteBatch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    int
		isAuth  bool
		message string
	}{
		{"oauth error object", http.StatusBadRequest, `{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`, 190, true, "Error validating access token"},
		{"legacy error with 200", http.StatusOK, `{"error_code":102,"error_msg":"Session key invalid"}`, 102, true, "Session key invalid"},
		{"unauthorized plain", http.StatusUnauthorized, `nope`, 0, true, "nope"},
		{"server error", http.StatusInternalServerError, `boom`, 0, false, "boom"},
		{"bad query", http.StatusOK, `{"error_code":601,"error_msg":"Parser error"}`, 601, false, "Parser error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).ExecuteBatch(context.Background(), testBatch(1), "t")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.isAuth, errors.Is(err, ErrAuth))
		})
	}
}

func TestExecuteBatch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).ExecuteBatch(context.Background(), testBatch(1), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteBatch_ThroughInsights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"metric":"page_fans","value":3777}]]`))
	}))
	defer srv.Close()

	day := time.Date(2010, time.December, 5, 0, 0, 0, 0, insights.TargetLocation())
	results, err := insights.ExecuteByInstant(context.Background(), NewClient(srv.URL, time.Second),
		"31698190356", "", insights.Day, nil, []time.Time{day})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.JSONEq(t, `[{"metric":"page_fans","value":3777}]`, string(results[0].Payload))
}
