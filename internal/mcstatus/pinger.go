// Package mcstatus queries a Minecraft Java server with the Server List Ping
// protocol.
package mcstatus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mcstatus-io/mcutil/v4/options"
	"github.com/mcstatus-io/mcutil/v4/response"
	"github.com/mcstatus-io/mcutil/v4/status"
)

const (
	defaultPort    = 25565
	defaultTimeout = 5 * time.Second

	// Servers answer a status request with their own version when the client
	// announces -1.
	protocolUnknown = -1
)

// Response is the decoded status of a server.
type Response struct {
	Version       string
	Protocol      int
	PlayersOnline int
	MaxPlayers    int
	MOTD          string
	Latency       time.Duration
}

// Pinger runs status queries. The zero value uses a 5 second timeout.
type Pinger struct {
	Timeout time.Duration
}

// NewPinger returns a Pinger with the given per-query timeout.
func NewPinger(timeout time.Duration) *Pinger {
	return &Pinger{Timeout: timeout}
}

// Ping connects to addr (host or host:port) and requests the server status.
// Latency is the status request round trip; no ping packet is sent, so a
// server that closes after answering still counts as live.
func (p *Pinger) Ping(ctx context.Context, addr string) (*Response, error) {
	host, port, err := splitAddr(addr)
	if err != nil {
		return nil, err
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, err := status.Modern(ctx, host, port, options.StatusModern{
		EnableSRV:       false,
		Timeout:         timeout,
		ProtocolVersion: protocolUnknown,
		Ping:            false,
	})
	if err != nil {
		return nil, fmt.Errorf("mcstatus: query %s: %w", addr, err)
	}

	resp := fromJavaStatus(raw)
	if resp.Latency <= 0 {
		resp.Latency = time.Since(start)
	}
	return resp, nil
}

func fromJavaStatus(raw *response.StatusModern) *Response {
	return &Response{
		Version:       raw.Version.Name.Clean,
		Protocol:      int(raw.Version.Protocol),
		PlayersOnline: deref(raw.Players.Online),
		MaxPlayers:    deref(raw.Players.Max),
		MOTD:          strings.TrimSpace(raw.MOTD.Clean),
		Latency:       raw.Latency,
	}
}

func deref(v *int64) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

func splitAddr(addr string) (string, uint16, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", 0, errors.New("mcstatus: empty server address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// No port given.
		return addr, defaultPort, nil
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("mcstatus: invalid port %q", port)
	}
	return host, uint16(n), nil
}
