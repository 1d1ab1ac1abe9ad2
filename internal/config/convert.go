package config

import (
	"fmt"
	"time"

	"github.com/arloliu/go-astm/astm"
	"github.com/arloliu/go-astm/generator"
	"github.com/arloliu/go-astm/logger"
	"github.com/arloliu/go-astm/sim"
	"github.com/arloliu/go-astm/transport"
)

// The conversions below assume a File that went through Load, Parse or Default.

// LogLevel returns the configured log level.
func (f *File) LogLevel() logger.Level {
	level, _ := logger.ParseLevel(f.Log.Level)
	return level
}

// EncodeConfig returns the ASTM encode configuration.
func (f *File) EncodeConfig() astm.EncodeConfig {
	return astm.NewEncodeConfig(
		astm.WithLeadInChecksum(*f.Encoding.IncludeLeadInChecksum),
		astm.WithSequenceNumbers(*f.Encoding.IncludeSequenceNumbers),
		astm.WithMaxFrameSize(f.Encoding.MaxFrameSize),
	)
}

// TransportOptions returns the device options shared by all targets.
func (f *File) TransportOptions() []transport.Option {
	return f.Transport.options()
}

// Profile returns the configured message profile.
func (f *File) Profile() generator.Profile {
	p, _ := generator.ParseProfile(f.Send.Profile)
	return p
}

// Params returns the generator inputs.
func (f *File) Params() generator.Params {
	return generator.Params{
		Patients:     f.Send.Patients,
		Primary:      generator.Patient{PrimaryID: f.Send.Primary.ID, VisitID: f.Send.Primary.Visit},
		Secondary:    generator.Patient{PrimaryID: f.Send.Secondary.ID, VisitID: f.Send.Secondary.Visit},
		Facility:     f.Send.Facility,
		Location:     f.Send.Location,
		PatientClass: f.Send.PatientClass,
	}
}

// RunnerOptions returns the count, interval and reconnect settings.
func (f *File) RunnerOptions() []sim.RunnerOption {
	return []sim.RunnerOption{
		sim.WithCount(f.Send.Count),
		sim.WithInterval(mustDuration(f.Send.Interval)),
		sim.WithReconnect(f.Send.Reconnect),
	}
}

// BuildTargets creates one device per configured target. extra options are applied
// after the file's transport options.
func (f *File) BuildTargets(extra ...transport.Option) ([]sim.Target, error) {
	targets := make([]sim.Target, 0, len(f.Targets))
	for i, t := range f.Targets {
		dev, err := t.Build(append(f.TransportOptions(), extra...)...)
		if err != nil {
			return nil, fmt.Errorf("targets[%d] %s: %w", i, t.Name, err)
		}
		targets = append(targets, sim.Target{Name: t.Name, Device: dev})
	}

	return targets, nil
}

// Build creates the device of the target.
func (t Target) Build(opts ...transport.Option) (transport.Device, error) {
	if t.Kind == KindSerial {
		opts = append(opts, transport.WithBaudRate(t.Baud))
	}

	cfg, err := transport.NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindTCP:
		dev, err := transport.NewTCPDevice(t.Host, t.Port, cfg)
		if err != nil {
			return nil, err
		}

		return dev, nil
	case KindSerial:
		dev, err := transport.NewSerialDevice(t.Device, cfg)
		if err != nil {
			return nil, err
		}

		return dev, nil
	}

	return nil, fmt.Errorf("config: unknown target kind %q", t.Kind)
}

func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}
