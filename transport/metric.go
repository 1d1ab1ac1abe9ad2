package transport

import (
	"sync/atomic"
)

// Metrics contains atomic counters for a device.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// MsgSendCount indicates the number of transmissions written completely.
	MsgSendCount atomic.Uint64
	// ByteSendCount indicates the number of bytes written.
	ByteSendCount atomic.Uint64
	// ReplyCount indicates the number of sends that received a reply.
	ReplyCount atomic.Uint64
	// ByteRecvCount indicates the number of reply bytes received.
	ByteRecvCount atomic.Uint64
	// ErrCount indicates the number of transport failures.
	ErrCount atomic.Uint64
	// OpenCount indicates the number of successful Open calls.
	OpenCount atomic.Uint32
}

// MetricsReporter is implemented by devices that keep Metrics.
type MetricsReporter interface {
	Metrics() *Metrics
}

var (
	_ MetricsReporter = (*TCPDevice)(nil)
	_ MetricsReporter = (*SerialDevice)(nil)
)

func (m *Metrics) addSent(n int) {
	m.ByteSendCount.Add(uint64(n)) //nolint:gosec // n is a write count, never negative
}

func (m *Metrics) incMsgSendCount() {
	m.MsgSendCount.Add(1)
}

func (m *Metrics) addReply(n int) {
	m.ReplyCount.Add(1)
	m.ByteRecvCount.Add(uint64(n)) //nolint:gosec // n is a read count, never negative
}

func (m *Metrics) incErrCount() {
	m.ErrCount.Add(1)
}

func (m *Metrics) incOpenCount() {
	m.OpenCount.Add(1)
}
