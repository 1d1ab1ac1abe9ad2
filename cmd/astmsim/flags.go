package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arloliu/go-astm/internal/config"
	"github.com/arloliu/go-astm/logger"
)

// messageFlags are shared by send and render. Flags given on the command line
// override the config file.
type messageFlags struct {
	configPath   string
	logLevel     string
	profile      string
	patients     int
	frameSize    int
	noSeq        bool
	excludeSTX   bool
	facility     string
	location     string
	patientClass string
	primaryID    string
	secondaryID  string
}

func (f *messageFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.profile, "profile", "astm-results", "Message profile (see 'astmsim profiles')")
	fs.IntVar(&f.patients, "patients", 1, "Patients per ASTM results upload")
	fs.IntVar(&f.frameSize, "frame-size", 0, "Split ASTM messages into frames of at most N bytes (0 disables, 240 is standard)")
	fs.BoolVar(&f.noSeq, "no-seq", false, "Omit ASTM frame numbers")
	fs.BoolVar(&f.excludeSTX, "exclude-stx-checksum", false, "Leave STX out of the ASTM checksum")
	fs.StringVar(&f.facility, "facility", "", "HL7 visit facility")
	fs.StringVar(&f.location, "location", "", "HL7 visit location")
	fs.StringVar(&f.patientClass, "patient-class", "", "HL7 patient class")
	fs.StringVar(&f.primaryID, "patient", "", "Primary HL7 patient ID")
	fs.StringVar(&f.secondaryID, "other-patient", "", "Secondary HL7 patient ID (merge source, bed swap partner)")
}

// load reads the config file, if any, and applies the command line overrides.
func (f *messageFlags) load(cmd *cobra.Command) (*config.File, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	fs := cmd.Flags()
	overrideString(fs, "log-level", &cfg.Log.Level, f.logLevel)
	overrideString(fs, "profile", &cfg.Send.Profile, f.profile)
	overrideInt(fs, "patients", &cfg.Send.Patients, f.patients)
	overrideInt(fs, "frame-size", &cfg.Encoding.MaxFrameSize, f.frameSize)
	if fs.Changed("no-seq") {
		v := !f.noSeq
		cfg.Encoding.IncludeSequenceNumbers = &v
	}
	if fs.Changed("exclude-stx-checksum") {
		v := !f.excludeSTX
		cfg.Encoding.IncludeLeadInChecksum = &v
	}
	overrideString(fs, "facility", &cfg.Send.Facility, f.facility)
	overrideString(fs, "location", &cfg.Send.Location, f.location)
	overrideString(fs, "patient-class", &cfg.Send.PatientClass, f.patientClass)
	overrideString(fs, "patient", &cfg.Send.Primary.ID, f.primaryID)
	overrideString(fs, "other-patient", &cfg.Send.Secondary.ID, f.secondaryID)

	// overrides go through the same checks as the file
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// stdout carries rendered messages and run summaries
	logger.SetLogger(logger.NewSlogWithWriter(cmd.ErrOrStderr(), cfg.LogLevel(), false))

	if !cfg.Profile().IsASTM() {
		for _, name := range []string{"frame-size", "no-seq", "exclude-stx-checksum"} {
			if fs.Changed(name) {
				logger.Warn("flag has no effect on HL7 profiles", "flag", name, "profile", cfg.Send.Profile)
			}
		}
	}

	return cfg, nil
}

func overrideString(fs *pflag.FlagSet, name string, dst *string, v string) {
	if fs.Changed(name) {
		*dst = v
	}
}

func overrideInt(fs *pflag.FlagSet, name string, dst *int, v int) {
	if fs.Changed(name) {
		*dst = v
	}
}

func overrideDuration(fs *pflag.FlagSet, name string, dst *string, v time.Duration) {
	if fs.Changed(name) {
		*dst = v.String()
	}
}
