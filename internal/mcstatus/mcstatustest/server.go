// Package mcstatustest runs a local server that answers status queries, for
// tests of code built on package mcstatus.
package mcstatustest

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	packetHandshake = 0x00
	packetStatus    = 0x00
	packetPing      = 0x01
)

// Handshake is the first packet a client sent.
type Handshake struct {
	Protocol  int32
	Host      string
	Port      uint16
	NextState int32
}

// Options control how the server behaves after the status response.
type Options struct {
	// AnswerPing echoes a ping packet after the status response; otherwise
	// the connection is closed right after the status response.
	AnswerPing bool
}

// Serve accepts one connection and answers a status query with the given
// JSON. The decoded handshake is sent on the returned channel. The listener is
// closed when the test ends.
func Serve(t testing.TB, status string, opts Options) (string, <-chan Handshake) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan Handshake, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)

		id, body, err := readPacket(r)
		if err != nil || id != packetHandshake {
			return
		}
		var hs Handshake
		hs.Protocol, _ = readVarInt(body)
		hs.Host, _ = readString(body)
		_ = binary.Read(body, binary.BigEndian, &hs.Port)
		hs.NextState, _ = readVarInt(body)
		got <- hs

		if id, _, err := readPacket(r); err != nil || id != packetStatus {
			return
		}
		if err := writePacket(conn, packetStatus, appendString(nil, status)); err != nil {
			return
		}
		if !opts.AnswerPing {
			return
		}

		id, body, err = readPacket(r)
		if err != nil || id != packetPing {
			return
		}
		payload, _ := io.ReadAll(body)
		_ = writePacket(conn, packetPing, payload)
	}()

	return ln.Addr().String(), got
}

func appendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

func readVarInt(r io.ByteReader) (int32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, errors.New("varint too long")
}

func appendString(b []byte, s string) []byte {
	b = appendVarInt(b, int32(len(s)))
	return append(b, s...)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	_, err = io.ReadFull(r, buf)
	return string(buf), err
}

func writePacket(w io.Writer, id int32, payload []byte) error {
	body := appendVarInt(nil, id)
	body = append(body, payload...)
	_, err := w.Write(append(appendVarInt(nil, int32(len(body))), body...))
	return err
}

func readPacket(r *bufio.Reader) (int32, *bytes.Reader, error) {
	n, err := readVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if n <= 0 || n > 1<<21 {
		return 0, nil, errors.New("bad packet length")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}
	body := bytes.NewReader(buf)
	id, err := readVarInt(body)
	return id, body, err
}
