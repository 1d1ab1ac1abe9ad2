package transport

import (
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestConfig creates a Config with short timeouts suitable for tests.
func newTestConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()

	defaults := []Option{
		WithConnectTimeout(time.Second),
		WithSendTimeout(time.Second),
		WithReplyTimeout(200 * time.Millisecond),
	}

	cfg, err := NewConfig(append(defaults, opts...)...)
	require.NoError(t, err)

	return cfg
}

// received is what a test peer read from one connection.
type received struct {
	data []byte
	err  error
}

// startPeer listens on a random local port. For every accepted connection it reads
// exactly expect bytes, optionally writes reply, and reports what it read.
func startPeer(t *testing.T, expect int, reply []byte) (host string, port int, got <-chan received) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	ch := make(chan received, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			go func(conn net.Conn) {
				defer conn.Close()

				buf := make([]byte, expect)
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, err := io.ReadFull(conn, buf)
				if err == nil && reply != nil {
					_, err = conn.Write(reply)
				}
				ch <- received{data: buf, err: err}

				// Keep the connection open until the client closes it.
				_, _ = io.Copy(io.Discard, conn)
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)

	return addr.IP.String(), addr.Port, ch
}

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}

func portString(port int) string {
	return strconv.Itoa(port)
}
