package mcstatus

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/mcportal/internal/mcstatus/mcstatustest"
)

func statusJSON(t *testing.T, description any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"version":     map[string]any{"name": "Paper 1.20.4", "protocol": 765},
		"players":     map[string]any{"max": 50, "online": 7},
		"description": description,
	})
	require.NoError(t, err)
	return string(b)
}

func TestPinger_Ping(t *testing.T) {
	addr, hsCh := mcstatustest.Serve(t, statusJSON(t, "Welcome to the server"), mcstatustest.Options{AnswerPing: true})

	resp, err := NewPinger(2*time.Second).Ping(context.Background(), addr)
	require.NoError(t, err)

	assert.Equal(t, "Paper 1.20.4", resp.Version)
	assert.Equal(t, 765, resp.Protocol)
	assert.Equal(t, 7, resp.PlayersOnline)
	assert.Equal(t, 50, resp.MaxPlayers)
	assert.Equal(t, "Welcome to the server", resp.MOTD)
	assert.GreaterOrEqual(t, resp.Latency, time.Duration(0))

	hs := <-hsCh
	_, port, _ := net.SplitHostPort(addr)
	assert.Equal(t, int32(protocolUnknown), hs.Protocol)
	assert.Equal(t, "127.0.0.1", hs.Host)
	assert.Equal(t, port, strconv.Itoa(int(hs.Port)))
	assert.Equal(t, int32(1), hs.NextState)
}

func TestPinger_ChatComponentMOTD(t *testing.T) {
	desc := map[string]any{
		"text":  "Hello ",
		"extra": []any{map[string]any{"text": "world"}, "!"},
	}
	addr, _ := mcstatustest.Serve(t, statusJSON(t, desc), mcstatustest.Options{})

	resp, err := NewPinger(2*time.Second).Ping(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", resp.MOTD)
}

func TestPinger_InvalidJSON(t *testing.T) {
	addr, _ := mcstatustest.Serve(t, "{not json", mcstatustest.Options{})

	_, err := NewPinger(2*time.Second).Ping(context.Background(), addr)
	assert.Error(t, err)
}

func TestPinger_ClosedAfterStatus(t *testing.T) {
	// Server answers the status request and hangs up without a pong.
	addr, _ := mcstatustest.Serve(t, statusJSON(t, "motd"), mcstatustest.Options{})

	resp, err := NewPinger(2*time.Second).Ping(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.PlayersOnline)
	assert.Equal(t, 50, resp.MaxPlayers)
	assert.Equal(t, "Paper 1.20.4", resp.Version)
	assert.Equal(t, "motd", resp.MOTD)
	assert.Greater(t, resp.Latency, time.Duration(0))
}

func TestPinger_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewPinger(time.Second).Ping(context.Background(), addr)
	assert.Error(t, err)
}

func TestPinger_Timeout(t *testing.T) {
	// Accepts but never answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(2 * time.Second)
		}
	}()

	start := time.Now()
	_, err = NewPinger(200*time.Millisecond).Ping(context.Background(), ln.Addr().String())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSplitAddr(t *testing.T) {
	host, port, err := splitAddr("mc.example.com")
	require.NoError(t, err)
	assert.Equal(t, "mc.example.com", host)
	assert.Equal(t, uint16(25565), port)

	host, port, err = splitAddr("91.197.6.209:25598")
	require.NoError(t, err)
	assert.Equal(t, "91.197.6.209", host)
	assert.Equal(t, uint16(25598), port)

	_, _, err = splitAddr("host:notaport")
	assert.Error(t, err)

	_, _, err = splitAddr("host:70000")
	assert.Error(t, err)

	_, _, err = splitAddr("  ")
	assert.Error(t, err)
}
