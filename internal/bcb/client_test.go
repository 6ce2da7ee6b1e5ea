package bcb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSeries(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"data":"01/01/2026","valor":"0.42"},{"data":"01/02/2026","valor":"0.38"}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithInterval(time.Millisecond))
	from := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	s, err := c.FetchSeries(context.Background(), SeriesIPCA, from, to)
	require.NoError(t, err)

	assert.Equal(t, "/bcdata.sgs.433/dados", gotPath)
	assert.Contains(t, gotQuery, "formato=json")
	assert.Contains(t, gotQuery, "dataInicial=01%2F12%2F2025")
	assert.Contains(t, gotQuery, "dataFinal=28%2F02%2F2026")

	require.Len(t, s.Points, 2)
	assert.Equal(t, SeriesIPCA, s.Code)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), s.Points[1].Date)
	assert.InDelta(t, 0.38, s.Points[1].Value, 1e-9)
	assert.False(t, s.FetchedAt.IsZero())
}

func TestFetchSeries_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Value(s) not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.FetchSeries(context.Background(), 999, time.Time{}, time.Time{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/bcdata.sgs.999/dados", apiErr.Endpoint)
	assert.Contains(t, apiErr.Message, "not found")
}

func TestFetchSeries_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad date", body: `[{"data":"2026-01-01","valor":"0.42"}]`},
		{name: "bad value", body: `[{"data":"01/01/2026","valor":"n/a"}]`},
		{name: "not json", body: `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).FetchSeries(context.Background(), SeriesSELIC, time.Time{}, time.Time{})
			assert.Error(t, err)
		})
	}
}

func TestFetchSeries_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(WithBaseURL("http://127.0.0.1:1")).FetchSeries(ctx, SeriesIPCA, time.Time{}, time.Time{})
	assert.Error(t, err)
}
