package pihole

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pihole-button/internal/domain"
	"pihole-button/internal/infra/config"
)

func newTestHTTPOracle(t *testing.T, handler http.HandlerFunc) (*HTTPOracle, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o := NewHTTPOracle(config.APIConfig{
		URL:   srv.URL + "/admin/api.php",
		Token: "secret",
	}, slog.Default())
	return o, srv
}

func TestHTTPStatusEnabled(t *testing.T) {
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, r.URL.Query().Has("status"))
		w.Write([]byte(`{"status":"enabled"}`))
	})

	state, err := o.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnabled, state)
}

func TestHTTPStatusDisabled(t *testing.T) {
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"disabled"}`))
	})

	state, err := o.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateDisabled, state)
}

func TestHTTPStatusBadJSON(t *testing.T) {
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := o.Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestHTTPStatusServerError(t *testing.T) {
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := o.Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestHTTPEnableSendsAuth(t *testing.T) {
	var gotQuery map[string][]string
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"enabled"}`))
	})

	require.NoError(t, o.Enable(context.Background()))
	assert.Contains(t, gotQuery, "enable")
	assert.Equal(t, []string{"secret"}, gotQuery["auth"])
}

func TestHTTPDisableTimed(t *testing.T) {
	var gotQuery map[string][]string
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"disabled"}`))
	})

	require.NoError(t, o.Disable(context.Background(), 30*time.Second))
	assert.Equal(t, []string{"30"}, gotQuery["disable"])
	assert.Equal(t, []string{"secret"}, gotQuery["auth"])
}

func TestHTTPDisableIndefinite(t *testing.T) {
	var gotQuery map[string][]string
	o, _ := newTestHTTPOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"disabled"}`))
	})

	require.NoError(t, o.Disable(context.Background(), 0))
	assert.Contains(t, gotQuery, "disable")
	assert.Equal(t, []string{""}, gotQuery["disable"])
}
