package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:   srv.URL + "/api/",
		Token:     "secret",
		Timeout:   2 * time.Second,
		UserAgent: "fleetcheck-test",
	}, zerolog.Nop())
}

func TestClient_FetchItems(t *testing.T) {
	var gotReq *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 17, "status": "pending", "description": "Oil change"},
			{"id": "b-2", "status": "done", "isSelected": true, "kind": "booking"}
		]`))
	})

	items, err := c.FetchItems(context.Background(), checkin.KindAppointment, "drv-42")
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/api/drivers/drv-42/appointments", gotReq.URL.Path)
	assert.Equal(t, "Bearer secret", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "fleetcheck-test", gotReq.Header.Get("User-Agent"))

	require.Len(t, items, 2)
	assert.Equal(t, checkin.ID("17"), items[0].ID)
	assert.Equal(t, checkin.KindAppointment, items[0].Kind, "kind filled from request")
	assert.Equal(t, "Oil change", items[0].Description)
	assert.Equal(t, checkin.KindBooking, items[1].Kind)
	assert.True(t, items[1].Selected)
}

func TestClient_FetchItems_Paths(t *testing.T) {
	tests := []struct {
		kind checkin.Kind
		want string
	}{
		{checkin.KindAppointment, "/api/drivers/d1/appointments"},
		{checkin.KindBooking, "/api/drivers/d1/bookings"},
		{checkin.KindLogbook, "/api/drivers/d1/logbook"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var path string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				_, _ = w.Write([]byte(`[]`))
			})

			items, err := c.Source(tt.kind).Fetch(context.Background(), "d1")
			require.NoError(t, err)
			assert.Empty(t, items)
			assert.Equal(t, tt.want, path)
		})
	}
}

func TestClient_CheckIn(t *testing.T) {
	t.Run("success with empty body", func(t *testing.T) {
		var (
			mu      sync.Mutex
			method  string
			path    string
			batchID string
		)
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			method, path, batchID = r.Method, r.URL.Path, r.Header.Get("X-Batch-ID")
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		})

		ctx := logging.WithBatchID(context.Background(), "batch-9")
		err := c.Sink(checkin.KindBooking).CheckIn(ctx, "b-7")
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPost, method)
		assert.Equal(t, "/api/bookings/b-7/check-in", path)
		assert.Equal(t, "batch-9", batchID)
	})

	t.Run("success true", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": true}`))
		})
		assert.NoError(t, c.CheckIn(context.Background(), checkin.KindLogbook, "9"))
	})

	t.Run("success false is a rejection", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "message": "vehicle not at depot"}`))
		})

		err := c.CheckIn(context.Background(), checkin.KindAppointment, "1")

		var rejected *checkin.RemoteRejectedError
		require.True(t, errors.As(err, &rejected))
		assert.Equal(t, "vehicle not at depot", rejected.Message)
	})
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantMsg  string
	}{
		{name: "message field", status: 409, body: `{"message": "already checked in"}`, wantCode: 409, wantMsg: "already checked in"},
		{name: "error field", status: 422, body: `{"error": "invalid state"}`, wantCode: 422, wantMsg: "invalid state"},
		{name: "plain text", status: 503, body: `maintenance`, wantCode: 503, wantMsg: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.CheckIn(context.Background(), checkin.KindAppointment, "1")

			var rejected *checkin.RemoteRejectedError
			require.True(t, errors.As(err, &rejected), "got %v", err)
			assert.Equal(t, tt.wantCode, rejected.Code)
			assert.Equal(t, tt.wantMsg, rejected.Message)
		})
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	})

	_, err := c.FetchItems(context.Background(), checkin.KindAppointment, "d1")

	var unexpected *checkin.UnexpectedError
	require.True(t, errors.As(err, &unexpected), "got %v", err)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second}, zerolog.Nop())

	_, err := c.FetchItems(context.Background(), checkin.KindAppointment, "d1")
	require.ErrorIs(t, err, checkin.ErrNoConnectivity)
}

func TestClient_NoBaseURL(t *testing.T) {
	c := New(Options{}, zerolog.Nop())

	err := c.CheckIn(context.Background(), checkin.KindAppointment, "1")
	require.ErrorIs(t, err, checkin.ErrNoConnectivity)
}

func TestClient_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.CheckIn(ctx, checkin.KindAppointment, "1")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, checkin.ErrNoConnectivity)
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})
	require.NoError(t, c.Ping(context.Background()), "any HTTP answer counts as reachable")

	offline := New(Options{}, zerolog.Nop())
	assert.False(t, offline.Configured())
	assert.ErrorIs(t, offline.Ping(context.Background()), checkin.ErrNoConnectivity)
}
