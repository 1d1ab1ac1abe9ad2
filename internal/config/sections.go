package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-astm/generator"
	"github.com/arloliu/go-astm/logger"
	"github.com/arloliu/go-astm/transport"
)

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level" toml:"level"`
}

func (l *Log) setDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (l *Log) validate() []error {
	if _, err := logger.ParseLevel(l.Level); err != nil {
		return []error{fmt.Errorf("log.level %q is invalid", l.Level)}
	}

	return nil
}

// Encoding configures ASTM framing. Unset booleans default to true. A MaxFrameSize of
// zero or below disables splitting.
type Encoding struct {
	IncludeLeadInChecksum  *bool `yaml:"include_lead_in_checksum" toml:"include_lead_in_checksum"`
	IncludeSequenceNumbers *bool `yaml:"include_sequence_numbers" toml:"include_sequence_numbers"`
	MaxFrameSize           int   `yaml:"max_frame_size" toml:"max_frame_size"`
}

func (e *Encoding) setDefaults() {
	if e.IncludeLeadInChecksum == nil {
		e.IncludeLeadInChecksum = boolPtr(true)
	}
	if e.IncludeSequenceNumbers == nil {
		e.IncludeSequenceNumbers = boolPtr(true)
	}
}

// Transport configures device timeouts. Durations use time.ParseDuration syntax.
type Transport struct {
	ConnectTimeout  string `yaml:"connect_timeout" toml:"connect_timeout"`
	SendTimeout     string `yaml:"send_timeout" toml:"send_timeout"`
	ReplyTimeout    string `yaml:"reply_timeout" toml:"reply_timeout"`
	ReplyBufferSize int    `yaml:"reply_buffer_size" toml:"reply_buffer_size"`
}

func (t *Transport) setDefaults() {
	if t.ConnectTimeout == "" {
		t.ConnectTimeout = transport.DefaultConnectTimeout.String()
	}
	if t.SendTimeout == "" {
		t.SendTimeout = transport.DefaultSendTimeout.String()
	}
	if t.ReplyTimeout == "" {
		t.ReplyTimeout = transport.DefaultReplyTimeout.String()
	}
	if t.ReplyBufferSize == 0 {
		t.ReplyBufferSize = transport.DefaultReplyBufferSize
	}
}

func (t *Transport) validate() []error {
	var errs []error

	for _, d := range []struct{ name, value string }{
		{"transport.connect_timeout", t.ConnectTimeout},
		{"transport.send_timeout", t.SendTimeout},
		{"transport.reply_timeout", t.ReplyTimeout},
	} {
		if _, err := parseDuration(d.value); err != nil {
			errs = append(errs, fmt.Errorf("%s %q is invalid: %v", d.name, d.value, err))
		}
	}
	if t.ReplyBufferSize < 1 || t.ReplyBufferSize > transport.MaxReplyBufferSize {
		errs = append(errs, fmt.Errorf("transport.reply_buffer_size must be between 1 and %d", transport.MaxReplyBufferSize))
	}
	if len(errs) > 0 {
		return errs
	}

	// range checks live with the transport options
	if _, err := transport.NewConfig(t.options()...); err != nil {
		errs = append(errs, fmt.Errorf("transport %v", err))
	}

	return errs
}

func (t *Transport) options() []transport.Option {
	return []transport.Option{
		transport.WithConnectTimeout(mustDuration(t.ConnectTimeout)),
		transport.WithSendTimeout(mustDuration(t.SendTimeout)),
		transport.WithReplyTimeout(mustDuration(t.ReplyTimeout)),
		transport.WithReplyBufferSize(t.ReplyBufferSize),
	}
}

// Send configures what is sent and how often.
type Send struct {
	Profile      string  `yaml:"profile" toml:"profile"`
	Count        int     `yaml:"count" toml:"count"`
	Interval     string  `yaml:"interval" toml:"interval"`
	Reconnect    bool    `yaml:"reconnect" toml:"reconnect"`
	Patients     int     `yaml:"patients" toml:"patients"`
	Facility     string  `yaml:"facility" toml:"facility"`
	Location     string  `yaml:"location" toml:"location"`
	PatientClass string  `yaml:"patient_class" toml:"patient_class"`
	Primary      Patient `yaml:"primary" toml:"primary"`
	Secondary    Patient `yaml:"secondary" toml:"secondary"`
}

// Patient identifies a patient of the ADT profiles.
type Patient struct {
	ID    string `yaml:"id" toml:"id"`
	Visit string `yaml:"visit" toml:"visit"`
}

func (s *Send) setDefaults() {
	if s.Profile == "" {
		s.Profile = string(generator.ProfileASTMResults)
	}
	if s.Count == 0 {
		s.Count = 1
	}
	if s.Interval == "" {
		s.Interval = "0s"
	}
	if s.Patients == 0 {
		s.Patients = 1
	}
}

func (s *Send) validate() []error {
	var errs []error

	if _, err := generator.ParseProfile(s.Profile); err != nil {
		errs = append(errs, fmt.Errorf("send.profile %q is invalid, must be one of %v", s.Profile, generator.Profiles()))
	}
	if s.Count < 1 {
		errs = append(errs, fmt.Errorf("send.count must be >= 1"))
	}
	if d, err := parseDuration(s.Interval); err != nil {
		errs = append(errs, fmt.Errorf("send.interval %q is invalid: %v", s.Interval, err))
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("send.interval must not be negative"))
	}
	if s.Patients < 1 {
		errs = append(errs, fmt.Errorf("send.patients must be >= 1"))
	}
	if s.Primary.ID == "" && s.Primary.Visit != "" {
		errs = append(errs, fmt.Errorf("send.primary.visit requires send.primary.id"))
	}
	if s.Secondary.ID == "" && s.Secondary.Visit != "" {
		errs = append(errs, fmt.Errorf("send.secondary.visit requires send.secondary.id"))
	}

	return errs
}

// Target kinds.
const (
	KindTCP    = "tcp"
	KindSerial = "serial"
)

// Target is one receiving system.
type Target struct {
	Name   string `yaml:"name" toml:"name"`
	Kind   string `yaml:"kind" toml:"kind"`
	Host   string `yaml:"host" toml:"host"`
	Port   int    `yaml:"port" toml:"port"`
	Device string `yaml:"device" toml:"device"`
	Baud   int    `yaml:"baud" toml:"baud"`
}

func (t *Target) setDefaults(index int) {
	t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
	if t.Kind == "" {
		if t.Device != "" {
			t.Kind = KindSerial
		} else {
			t.Kind = KindTCP
		}
	}
	if t.Name == "" {
		t.Name = fmt.Sprintf("target-%d", index+1)
	}
	if t.Kind == KindSerial && t.Baud == 0 {
		t.Baud = transport.DefaultBaudRate
	}
}

func (t *Target) validate() []error {
	var errs []error

	switch t.Kind {
	case KindTCP:
		if strings.TrimSpace(t.Host) == "" {
			errs = append(errs, fmt.Errorf("host is required for tcp targets"))
		}
		if t.Port < 1 || t.Port > 65535 {
			errs = append(errs, fmt.Errorf("port %d is out of range 1-65535", t.Port))
		}
	case KindSerial:
		if strings.TrimSpace(t.Device) == "" {
			errs = append(errs, fmt.Errorf("device is required for serial targets"))
		}
		if t.Baud < 1 {
			errs = append(errs, fmt.Errorf("baud must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("kind %q is invalid, must be %q or %q", t.Kind, KindTCP, KindSerial))
	}

	return errs
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(s))
}

func boolPtr(b bool) *bool { return &b }
