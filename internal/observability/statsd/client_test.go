package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) net.PacketConn {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })
	return pc
}

func readLine(t *testing.T, pc net.PacketConn) string {
	t.Helper()
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1024)
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestClientWritesDogStatsDLines(t *testing.T) {
	pc := listenUDP(t)
	c, err := NewClient(Config{
		Enabled:    true,
		Address:    pc.LocalAddr().String(),
		Prefix:     ".marketplace.",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.True(t, c.Enabled())

	c.Count("auth.validation", 1, map[string]string{"result": "error", "reason": "bad_token"})
	assert.Equal(t, "marketplace.auth.validation:1|c|#env:test,reason:bad_token,result:error", readLine(t, pc))

	c.Gauge("auth.session_cache.size", 42, nil)
	assert.Equal(t, "marketplace.auth.session_cache.size:42|g|#env:test", readLine(t, pc))

	c.Timing("auth.validation.duration", 1500*time.Microsecond, map[string]string{"env": "override"})
	assert.Equal(t, "marketplace.auth.validation.duration:1.5|ms|#env:override", readLine(t, pc))
}

func TestFormat(t *testing.T) {
	c := &Client{}
	tests := []struct {
		name   string
		metric string
		tags   map[string]string
		want   string
		ok     bool
	}{
		{name: "plain", metric: "auth.session_touch", want: "auth.session_touch:1|c", ok: true},
		{name: "unsafe characters", metric: " auth/session touch ", want: "auth_session_touch:1|c", ok: true},
		{name: "empty segments", metric: "..auth..swept.", want: "auth.swept:1|c", ok: true},
		{
			name:   "tag separators stripped",
			metric: "auth.validation",
			tags:   map[string]string{"error_class": "a|b,c", " ": "dropped"},
			want:   "auth.validation:1|c|#error_class:a_b_c",
			ok:     true,
		},
		{name: "empty name", metric: "  ", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.format(tt.metric, "1", "c", tt.tags)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisabledAndNilClientsDropMetrics(t *testing.T) {
	c, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	c.Count("x", 1, nil)
	require.NoError(t, c.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	nilClient.Count("x", 1, nil)
	nilClient.Gauge("x", 1, nil)
	nilClient.Timing("x", time.Second, nil)
	require.NoError(t, nilClient.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	pc := listenUDP(t)
	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String()})
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.False(t, c.Enabled())
	c.Count("after.close", 1, nil)
}

func TestNewClientDialError(t *testing.T) {
	_, err := NewClient(Config{Enabled: true, Address: "not-a-host-port"})
	require.Error(t, err)
}
