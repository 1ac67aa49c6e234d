package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trapwatch/trapwatch/pkg/logger"
	"github.com/trapwatch/trapwatch/pkg/models"
)

func TestTCPProbeOpenPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			conn.Close()
		}
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	prober := NewTCPProber(port, time.Second, logger.NewTestLogger())

	assert.True(t, prober.Probe(context.Background(), "127.0.0.1"))
}

func TestTCPProbeClosedPort(t *testing.T) {
	// Grab a free port, then close it so nothing is listening.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	prober := NewTCPProber(port, 500*time.Millisecond, logger.NewTestLogger())

	assert.False(t, prober.Probe(context.Background(), "127.0.0.1"))
}

func TestTCPProbeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := NewTCPProber(80, time.Second, logger.NewTestLogger())

	assert.False(t, prober.Probe(ctx, "127.0.0.1"))
}

func TestTCPProbeGarbageAddress(t *testing.T) {
	prober := NewTCPProber(80, 500*time.Millisecond, logger.NewTestLogger())

	assert.False(t, prober.Probe(context.Background(), "not an address"))
}

func TestParseCheckMethod(t *testing.T) {
	tests := []struct {
		name     string
		input    models.CheckMethod
		expected models.CheckMethod
	}{
		{"icmp", models.CheckMethodICMP, models.CheckMethodICMP},
		{"tcp", models.CheckMethodTCP, models.CheckMethodTCP},
		{"both", models.CheckMethodBoth, models.CheckMethodBoth},
		{"empty defaults to tcp", "", models.CheckMethodTCP},
		{"unknown falls back to tcp", "carrier-pigeon", models.CheckMethodTCP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCheckMethod(tt.input, logger.NewTestLogger()))
		})
	}
}

type stubProber struct {
	result bool
	calls  int
}

func (s *stubProber) Probe(context.Context, string) bool {
	s.calls++
	return s.result
}

func TestFallbackProberPrimaryWins(t *testing.T) {
	primary := &stubProber{result: true}
	secondary := &stubProber{result: true}
	p := &fallbackProber{primary: primary, secondary: secondary}

	assert.True(t, p.Probe(context.Background(), "192.168.1.10"))
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestFallbackProberUsesSecondary(t *testing.T) {
	primary := &stubProber{result: false}
	secondary := &stubProber{result: true}
	p := &fallbackProber{primary: primary, secondary: secondary}

	assert.True(t, p.Probe(context.Background(), "192.168.1.10"))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackProberBothFail(t *testing.T) {
	p := &fallbackProber{
		primary:   &stubProber{result: false},
		secondary: &stubProber{result: false},
	}

	assert.False(t, p.Probe(context.Background(), "192.168.1.10"))
}

func TestNewCameraProberSelection(t *testing.T) {
	log := logger.NewTestLogger()

	tcpOnly := NewCameraProber(models.CameraCheckConfig{
		CheckMethod: models.CheckMethodTCP,
		TCPPort:     80,
		TCPTimeout:  models.Duration(time.Second),
	}, log)
	_, ok := tcpOnly.(*TCPProber)
	assert.True(t, ok)

	invalid := NewCameraProber(models.CameraCheckConfig{
		CheckMethod: "carrier-pigeon",
		TCPPort:     80,
		TCPTimeout:  models.Duration(time.Second),
	}, log)
	_, ok = invalid.(*TCPProber)
	assert.True(t, ok)

	both := NewCameraProber(models.CameraCheckConfig{
		CheckMethod: models.CheckMethodBoth,
		TCPPort:     80,
		TCPTimeout:  models.Duration(time.Second),
		ICMPTimeout: models.Duration(time.Second),
	}, log)
	_, ok = both.(*fallbackProber)
	assert.True(t, ok)

	echo := NewCameraProber(models.CameraCheckConfig{
		CheckMethod: models.CheckMethodICMP,
		ICMPTimeout: models.Duration(time.Second),
	}, log)
	_, ok = echo.(*ICMPProber)
	assert.True(t, ok)
}

func TestICMPProberSequenceWraps(t *testing.T) {
	p := &ICMPProber{seq: 0xfffe}

	assert.Equal(t, 0xffff, p.nextSeq())
	assert.Equal(t, 0, p.nextSeq())
	assert.Equal(t, 1, p.nextSeq())
}
