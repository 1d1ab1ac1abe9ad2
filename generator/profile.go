package generator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/go-astm/astm"
	"github.com/arloliu/go-astm/hl7"
)

// Profile names a canned message.
type Profile string

const (
	ProfileASTMResults Profile = "astm-results"
	ProfileHL7Admit    Profile = "hl7-admit"
	ProfileHL7Merge    Profile = "hl7-merge"
	ProfileHL7BedSwap  Profile = "hl7-bedswap"
)

// ErrUnknownProfile is returned for profile names that are not defined.
var ErrUnknownProfile = errors.New("generator: unknown profile")

// Profiles returns all known profiles.
func Profiles() []Profile {
	return []Profile{ProfileASTMResults, ProfileHL7Admit, ProfileHL7Merge, ProfileHL7BedSwap}
}

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Profiles(), p) {
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, s)
	}

	return p, nil
}

// IsASTM reports whether the profile produces ASTM framed output.
func (p Profile) IsASTM() bool {
	return p == ProfileASTMResults
}

// Params carries the inputs of a profile. Zero fields, including the IDs of a
// patient, take defaults.
type Params struct {
	// Patients is the number of patients in a results upload. Default 1.
	Patients int
	// Primary is the admitted patient, the merge destination, or the first bed swap patient.
	Primary Patient
	// Secondary is the merge source or the second bed swap patient.
	Secondary Patient
	// Facility, Location and PatientClass describe the visit of ADT messages.
	Facility     string
	Location     string
	PatientClass string
}

// Default patients used when Params leaves them empty.
var (
	DefaultPrimaryPatient   = Patient{PrimaryID: "11223344", VisitID: "0000001"}
	DefaultSecondaryPatient = Patient{PrimaryID: "55667788", VisitID: "0000002"}
)

func (p Params) withDefaults() Params {
	if p.Patients == 0 {
		p.Patients = 1
	}
	p.Primary = p.Primary.orDefault(DefaultPrimaryPatient)
	p.Secondary = p.Secondary.orDefault(DefaultSecondaryPatient)

	return p
}

func (p Patient) orDefault(def Patient) Patient {
	if p.PrimaryID == "" {
		p.PrimaryID = def.PrimaryID
	}
	if p.VisitID == "" {
		p.VisitID = def.VisitID
	}

	return p
}

func (p Params) adtOptions() []ADTOption {
	var opts []ADTOption
	if p.Facility != "" {
		opts = append(opts, WithFacility(p.Facility))
	}
	if p.Location != "" {
		opts = append(opts, WithLocation(p.Location))
	}
	if p.PatientClass != "" {
		opts = append(opts, WithPatientClass(p.PatientClass))
	}

	return opts
}

// Renderable is a message ready to go on the wire.
type Renderable interface {
	// Render returns the exact bytes to transmit.
	Render() []byte
	// Log returns Render with control characters shown as hex markers.
	Log() string
}

// astmRenderable binds an ASTM message to the encode configuration it is sent with.
type astmRenderable struct {
	msg *astm.Message
	cfg astm.EncodeConfig
}

// BindASTM returns msg as a Renderable encoded with cfg.
func BindASTM(msg *astm.Message, cfg astm.EncodeConfig) Renderable {
	return astmRenderable{msg: msg, cfg: cfg}
}

func (r astmRenderable) Render() []byte { return r.msg.Output(r.cfg) }

func (r astmRenderable) Log() string { return r.msg.Log(r.cfg) }

// Build generates a fresh message for profile. cfg applies to ASTM profiles only.
func (g *Generator) Build(profile Profile, params Params, cfg astm.EncodeConfig) (Renderable, error) {
	params = params.withDefaults()

	switch profile {
	case ProfileASTMResults:
		return BindASTM(g.ResultsMessage(params.Patients), cfg), nil
	case ProfileHL7Admit:
		return hl7Renderable(g.AdmitMessage(params.Primary, params.adtOptions()...))
	case ProfileHL7Merge:
		return hl7Renderable(g.MergeMessage(params.Secondary, params.Primary, params.adtOptions()...))
	case ProfileHL7BedSwap:
		return hl7Renderable(g.BedSwapMessage(params.Primary, params.Secondary))
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
}

// hl7Renderable keeps a nil *hl7.Message from turning into a non-nil Renderable.
func hl7Renderable(msg *hl7.Message, err error) (Renderable, error) {
	if err != nil {
		return nil, err
	}

	return msg, nil
}
