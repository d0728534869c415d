package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/model"
)

func httpQuery() Query {
	return Query{
		From:      model.POI{ID: "a", Lat: 48.8606, Lng: 2.3376},
		To:        model.POI{ID: "b", Lat: 48.8600, Lng: 2.3266},
		Mode:      model.TransportWalk,
		Departure: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
	}
}

func TestHTTPRouteTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "48.860600", r.URL.Query().Get("from_lat"))
		assert.Equal(t, "walk", r.URL.Query().Get("mode"))
		assert.NotEmpty(t, r.URL.Query().Get("departure"))
		w.Write([]byte(`{"minutes": 14}`))
	}))
	defer srv.Close()

	tool := NewHTTPRouteTool(srv.URL, WithAPIKey("secret"))
	minutes, err := tool.Route(httpQuery())
	require.NoError(t, err)
	assert.Equal(t, 14, minutes)
}

func TestHTTPRouteToolErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream down", http.StatusBadGateway)
			},
			want: "returned 502",
		},
		{
			name: "bad payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			want: "decode response",
		},
		{
			name: "non-positive minutes",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"minutes": 0}`))
			},
			want: "non-positive minutes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewHTTPRouteTool(srv.URL).Route(httpQuery())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHTTPRouteToolUnreachable(t *testing.T) {
	tool := NewHTTPRouteTool("http://127.0.0.1:0", WithTimeout(200*time.Millisecond))
	_, err := tool.Route(httpQuery())
	require.Error(t, err)
}
