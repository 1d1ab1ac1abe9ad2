package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-astm/logger"
)

// TCPDevice sends transmissions over a raw TCP connection (active mode only).
type TCPDevice struct {
	host   string
	port   int
	cfg    *Config
	logger logger.Logger

	mu   sync.Mutex
	conn net.Conn

	metrics Metrics
}

var _ Device = (*TCPDevice)(nil)

// NewTCPDevice creates a device that connects to host:port.
// The connection is not established until Open is called.
func NewTCPDevice(host string, port int, cfg *Config) (*TCPDevice, error) {
	if cfg == nil {
		return nil, errors.New("transport: config is nil")
	}
	if err := validateHost(host); err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("transport: port %d out of range [1, 65535]", port)
	}

	d := &TCPDevice{
		host: host,
		port: port,
		cfg:  cfg,
	}
	d.logger = cfg.logger.With("device", d.String())

	return d, nil
}

func validateHost(host string) error {
	if net.ParseIP(host) != nil {
		return nil
	}

	name := strings.TrimSuffix(host, ".")
	if name == "" || len(name) > 253 {
		return fmt.Errorf("transport: invalid host %q", host)
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("transport: invalid host %q", host)
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				return fmt.Errorf("transport: invalid host %q", host)
			}
		}
	}

	return nil
}

// Addr returns "host:port".
func (d *TCPDevice) Addr() string {
	return net.JoinHostPort(d.host, strconv.Itoa(d.port))
}

// String returns the endpoint as a tcp:// URL.
func (d *TCPDevice) String() string {
	return "tcp://" + d.Addr()
}

// Metrics returns the device counters.
func (d *TCPDevice) Metrics() *Metrics {
	return &d.metrics
}

// IsOpen reports whether the device holds a connection.
func (d *TCPDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.conn != nil
}

// Open dials the remote end, giving up after the connect timeout.
func (d *TCPDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return ErrAlreadyOpen
	}

	dialer := net.Dialer{Timeout: d.cfg.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Addr())
	if err != nil {
		d.metrics.incErrCount()
		d.logger.Error("transport: connect failed", "error", err)

		return fmt.Errorf("%w: dial %s: %w", ErrTransport, d.Addr(), err)
	}

	d.conn = conn
	d.metrics.incOpenCount()
	d.logger.Info("transport: connected", "local", conn.LocalAddr().String())

	return nil
}

// Send writes data and waits for a reply. A reply timeout or the peer closing the
// connection without answering is not an error: Send returns a nil reply.
//
// Cancelling ctx interrupts a pending write or read.
func (d *TCPDevice) Send(ctx context.Context, data []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Expire all deadlines as soon as ctx is done, waking up a blocked Write/Read.
	conn := d.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := d.write(data); err != nil {
		return nil, d.fail(ctx, "write", err)
	}
	d.metrics.incMsgSendCount()
	d.logger.Debug("transport: sent", "bytes", len(data))

	if d.cfg.replyTimeout == 0 {
		return nil, nil
	}

	reply, err := d.readReply()
	if err != nil {
		return nil, d.fail(ctx, "read", err)
	}
	if ctx.Err() != nil && reply == nil {
		return nil, ctx.Err()
	}
	if reply != nil {
		d.metrics.addReply(len(reply))
		d.logger.Debug("transport: reply received", "bytes", len(reply))
	}

	return reply, nil
}

// write writes all bytes in data to the connection within the send timeout.
func (d *TCPDevice) write(data []byte) error {
	if err := d.conn.SetWriteDeadline(time.Now().Add(d.cfg.sendTimeout)); err != nil {
		return err
	}

	for written := 0; written < len(data); {
		n, err := d.conn.Write(data[written:])
		written += n
		d.metrics.addSent(n)

		if err != nil {
			return err
		}
	}

	return nil
}

// readReply performs a single read of at most ReplyBufferSize bytes.
func (d *TCPDevice) readReply() ([]byte, error) {
	if err := d.conn.SetReadDeadline(time.Now().Add(d.cfg.replyTimeout)); err != nil {
		return nil, err
	}

	buf := make([]byte, d.cfg.replyBufferSize)
	n, err := d.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}

	switch {
	case err == nil:
		return nil, nil
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, io.EOF):
		return nil, nil
	default:
		return nil, err
	}
}

// fail converts an I/O error into the error returned by Send.
func (d *TCPDevice) fail(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	d.metrics.incErrCount()
	d.logger.Error("transport: "+op+" failed", "error", err)

	return fmt.Errorf("%w: %s %s: %w", ErrTransport, op, d.Addr(), err)
}

// Close closes the connection.
func (d *TCPDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}

	err := d.conn.Close()
	d.conn = nil
	d.logger.Info("transport: disconnected")

	if err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrTransport, d.Addr(), err)
	}

	return nil
}
