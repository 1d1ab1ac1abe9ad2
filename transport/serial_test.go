package transport

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort is an in-memory serial line.
type fakePort struct {
	written     bytes.Buffer
	reply       []byte
	readErr     error
	writeErr    error
	readTimeout time.Duration
	closed      bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	n := copy(b, p.reply)
	p.reply = p.reply[n:]

	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}

	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

func newFakeSerialDevice(t *testing.T, port *fakePort, opts ...Option) (*SerialDevice, *serial.Mode) {
	t.Helper()

	d, err := NewSerialDevice("/dev/ttyUSB0", newTestConfig(t, opts...))
	require.NoError(t, err)

	var mode serial.Mode
	d.open = func(name string, m *serial.Mode) (serialPort, error) {
		assert.Equal(t, "/dev/ttyUSB0", name)
		mode = *m

		return port, nil
	}

	return d, &mode
}

func TestNewSerialDevice_Validation(t *testing.T) {
	_, err := NewSerialDevice("", newTestConfig(t))
	require.Error(t, err)

	_, err = NewSerialDevice("COM3", nil)
	require.Error(t, err)

	d, err := NewSerialDevice("COM3", newTestConfig(t, WithBaudRate(19200)))
	require.NoError(t, err)
	assert.Equal(t, "serial://COM3?baud=19200", d.String())
}

func TestSerialDevice_Send(t *testing.T) {
	port := &fakePort{reply: []byte{0x06}}
	d, mode := newFakeSerialDevice(t, port, WithBaudRate(4800))

	require.NoError(t, d.Open(context.Background()))
	assert.Equal(t, 4800, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)

	reply, err := d.Send(context.Background(), []byte("\x04\x05\x04"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x06}, reply)
	assert.Equal(t, []byte("\x04\x05\x04"), port.written.Bytes())
	assert.Equal(t, 200*time.Millisecond, port.readTimeout)

	// Timeout: the serial library returns (0, nil).
	reply, err = d.Send(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, reply)

	assert.Equal(t, uint64(2), d.Metrics().MsgSendCount.Load())
	assert.Equal(t, uint64(1), d.Metrics().ReplyCount.Load())

	require.NoError(t, d.Close())
	assert.True(t, port.closed)
}

func TestSerialDevice_Failures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		d, err := NewSerialDevice("/dev/ttyS9", newTestConfig(t))
		require.NoError(t, err)
		d.open = func(string, *serial.Mode) (serialPort, error) {
			return nil, errors.New("no such device")
		}

		err = d.Open(context.Background())
		require.ErrorIs(t, err, ErrTransport)
		assert.Contains(t, err.Error(), "no such device")
	})

	t.Run("write", func(t *testing.T) {
		d, _ := newFakeSerialDevice(t, &fakePort{writeErr: errors.New("line down")})
		require.NoError(t, d.Open(context.Background()))

		_, err := d.Send(context.Background(), []byte("x"))
		require.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, uint64(1), d.Metrics().ErrCount.Load())
	})

	t.Run("read", func(t *testing.T) {
		d, _ := newFakeSerialDevice(t, &fakePort{readErr: errors.New("framing error")})
		require.NoError(t, d.Open(context.Background()))

		_, err := d.Send(context.Background(), []byte("x"))
		require.ErrorIs(t, err, ErrTransport)
	})

	t.Run("not open", func(t *testing.T) {
		d, _ := newFakeSerialDevice(t, &fakePort{})

		_, err := d.Send(context.Background(), []byte("x"))
		require.ErrorIs(t, err, ErrNotOpen)
	})

	t.Run("already open", func(t *testing.T) {
		d, _ := newFakeSerialDevice(t, &fakePort{})
		require.NoError(t, d.Open(context.Background()))
		require.ErrorIs(t, d.Open(context.Background()), ErrAlreadyOpen)
	})
}
