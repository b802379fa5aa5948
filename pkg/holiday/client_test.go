package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIsHoliday(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v3/PublicHolidays/2025/PE", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2025-01-01", "localName": "Año Nuevo", "name": "New Year's Day"},
			{"date": "2025-07-28", "localName": "Día de la Independencia", "name": "Independence Day"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "PE", 2*time.Second)

	holiday, err := client.IsHoliday(context.Background(), time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, holiday)

	holiday, err = client.IsHoliday(context.Background(), time.Date(2025, 7, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, holiday)

	// Both lookups hit the same year, so the calendar is fetched once.
	assert.Equal(t, 1, calls)
}

func TestClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "PE", 2*time.Second)

	_, err := client.IsHoliday(context.Background(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}
