package shelly

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

const statusBody = `{
	"relays": [{"ison": true, "has_timer": false, "source": "http"}],
	"uptime": 54321,
	"mac": "AABBCCDDEEFF",
	"temperature": 31.5
}`

// plugAddr strips the scheme so the test server can stand in for a device IP.
func plugAddr(t *testing.T, server *httptest.Server) string {
	t.Helper()

	return strings.TrimPrefix(server.URL, "http://")
}

func TestStatusSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(statusBody))
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewTestLogger())

	status, err := client.Status(context.Background(), plugAddr(t, server))
	require.NoError(t, err)
	require.Len(t, status.Relays, 1)
	assert.True(t, status.Relays[0].IsOn)
	assert.Equal(t, int64(54321), status.Uptime)
}

func TestStatusHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewTestLogger())

	_, err := client.Status(context.Background(), plugAddr(t, server))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpectedStatus)
}

func TestStatusMissingRelays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uptime": 10}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewTestLogger())

	_, err := client.Status(context.Background(), plugAddr(t, server))
	assert.ErrorIs(t, err, errMissingRelays)
}

func TestStatusMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"relays": [`))
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewTestLogger())

	_, err := client.Status(context.Background(), plugAddr(t, server))
	assert.Error(t, err)
}

func TestStatusUnreachableHost(t *testing.T) {
	client := NewClient(500*time.Millisecond, logger.NewTestLogger())

	// Reserved TEST-NET address; nothing listens there.
	_, err := client.Status(context.Background(), "192.0.2.1")
	assert.Error(t, err)
}

type fakeStatusClient struct {
	status *Status
	err    error
	calls  int
}

func (f *fakeStatusClient) Status(context.Context, string) (*Status, error) {
	f.calls++
	return f.status, f.err
}

func TestProberMapsSuccess(t *testing.T) {
	fake := &fakeStatusClient{status: &Status{Relays: []Relay{{IsOn: true}}}}
	prober := NewProber(fake, logger.NewTestLogger())

	assert.True(t, prober.Probe(context.Background(), "192.168.1.40"))
	assert.Equal(t, 1, fake.calls)
}

func TestProberMapsFailure(t *testing.T) {
	fake := &fakeStatusClient{err: errors.New("connection refused")}
	prober := NewProber(fake, logger.NewTestLogger())

	assert.False(t, prober.Probe(context.Background(), "192.168.1.40"))
}
