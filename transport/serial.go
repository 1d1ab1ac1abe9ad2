package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/arloliu/go-astm/logger"
)

// serialPort is the part of serial.Port the device uses.
type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type portOpener func(name string, mode *serial.Mode) (serialPort, error)

func openSerialPort(name string, mode *serial.Mode) (serialPort, error) {
	return serial.Open(name, mode)
}

// SerialDevice sends transmissions over an RS-232 line, 8 data bits, no parity,
// one stop bit, at the configured baud rate.
//
// Serial writes cannot be interrupted; ctx is only checked before a transmission
// starts.
type SerialDevice struct {
	portName string
	cfg      *Config
	logger   logger.Logger
	open     portOpener

	mu   sync.Mutex
	port serialPort

	metrics Metrics
}

var _ Device = (*SerialDevice)(nil)

// NewSerialDevice creates a device for the named port, e.g. "/dev/ttyUSB0" or "COM3".
// The port is not opened until Open is called.
func NewSerialDevice(portName string, cfg *Config) (*SerialDevice, error) {
	if cfg == nil {
		return nil, errors.New("transport: config is nil")
	}
	if strings.TrimSpace(portName) == "" {
		return nil, errors.New("transport: serial port name is empty")
	}

	d := &SerialDevice{
		portName: portName,
		cfg:      cfg,
		open:     openSerialPort,
	}
	d.logger = cfg.logger.With("device", d.String())

	return d, nil
}

// String returns the endpoint as a serial:// URL including the baud rate.
func (d *SerialDevice) String() string {
	return fmt.Sprintf("serial://%s?baud=%d", d.portName, d.cfg.baudRate)
}

// Metrics returns the device counters.
func (d *SerialDevice) Metrics() *Metrics {
	return &d.metrics
}

// Open opens the serial port.
func (d *SerialDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port != nil {
		return ErrAlreadyOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := &serial.Mode{
		BaudRate: d.cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := d.open(d.portName, mode)
	if err != nil {
		d.metrics.incErrCount()
		d.logger.Error("transport: open serial port failed", "error", err)

		return fmt.Errorf("%w: open %s: %w", ErrTransport, d.portName, err)
	}

	d.port = port
	d.metrics.incOpenCount()
	d.logger.Info("transport: serial port opened")

	return nil
}

// Send writes data and waits up to the reply timeout for a reply.
func (d *SerialDevice) Send(ctx context.Context, data []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port == nil {
		return nil, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for written := 0; written < len(data); {
		n, err := d.port.Write(data[written:])
		written += n
		d.metrics.addSent(n)

		if err != nil {
			return nil, d.fail("write", err)
		}
		if n == 0 {
			return nil, d.fail("write", io.ErrShortWrite)
		}
	}
	d.metrics.incMsgSendCount()
	d.logger.Debug("transport: sent", "bytes", len(data))

	if d.cfg.replyTimeout == 0 {
		return nil, nil
	}

	if err := d.port.SetReadTimeout(d.cfg.replyTimeout); err != nil {
		return nil, d.fail("set read timeout", err)
	}

	buf := make([]byte, d.cfg.replyBufferSize)
	n, err := d.port.Read(buf)
	if n > 0 {
		d.metrics.addReply(n)
		d.logger.Debug("transport: reply received", "bytes", n)

		return buf[:n], nil
	}
	// go.bug.st/serial reports a read timeout as (0, nil).
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, d.fail("read", err)
	}

	return nil, nil
}

func (d *SerialDevice) fail(op string, err error) error {
	d.metrics.incErrCount()
	d.logger.Error("transport: "+op+" failed", "error", err)

	return fmt.Errorf("%w: %s %s: %w", ErrTransport, op, d.portName, err)
}

// Close closes the serial port.
func (d *SerialDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port == nil {
		return nil
	}

	err := d.port.Close()
	d.port = nil
	d.logger.Info("transport: serial port closed")

	if err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrTransport, d.portName, err)
	}

	return nil
}
