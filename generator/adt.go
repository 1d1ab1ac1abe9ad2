package generator

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-astm/hl7"
)

// Patient identifies a patient and the current visit.
type Patient struct {
	// PrimaryID stays with the patient forever.
	PrimaryID string
	// VisitID is specific to one admission.
	VisitID string
}

// Patient classes (HL7 table 0004).
const (
	PatientClassInpatient  = "I"
	PatientClassOutpatient = "O"
)

// ADT defaults.
const (
	DefaultFacility     = "Main"
	DefaultLocation     = "Admin"
	DefaultPatientClass = PatientClassInpatient

	// controlID is used as both message control ID and sequence number.
	controlID = "35745881"
)

// ErrEmptyPatientID is returned when a patient lacks a primary or visit ID.
var ErrEmptyPatientID = errors.New("generator: patient primary and visit IDs are required")

type adtOptions struct {
	facility     string
	location     string
	patientClass string
}

// ADTOption customises where a patient is admitted.
type ADTOption func(*adtOptions)

// WithFacility sets the facility of the visit.
func WithFacility(facility string) ADTOption {
	return func(o *adtOptions) { o.facility = facility }
}

// WithLocation sets the workstation/location of the visit.
func WithLocation(location string) ADTOption {
	return func(o *adtOptions) { o.location = location }
}

// WithPatientClass sets the patient class, e.g. PatientClassOutpatient.
func WithPatientClass(class string) ADTOption {
	return func(o *adtOptions) { o.patientClass = class }
}

func newADTOptions(opts []ADTOption) adtOptions {
	o := adtOptions{
		facility:     DefaultFacility,
		location:     DefaultLocation,
		patientClass: DefaultPatientClass,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// AdmitMessage builds an A01 (admit) message for p.
func (g *Generator) AdmitMessage(p Patient, opts ...ADTOption) (*hl7.Message, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	o := newADTOptions(opts)

	msg := hl7.NewMessage()
	msg.AddLine(g.msh("A01"))
	msg.AddLine(pid(p))
	msg.AddLine(pv1(p, o))

	return msg, nil
}

// MergeMessage builds an A18 (merge patient information) message folding src into dst.
func (g *Generator) MergeMessage(src, dst Patient, opts ...ADTOption) (*hl7.Message, error) {
	if err := src.validate(); err != nil {
		return nil, fmt.Errorf("merge source: %w", err)
	}
	if err := dst.validate(); err != nil {
		return nil, fmt.Errorf("merge destination: %w", err)
	}
	o := newADTOptions(opts)

	msg := hl7.NewMessage()
	msg.AddLine(g.msh("A18"))
	msg.AddLine(pid(dst))
	msg.AddLine(pv1(dst, o))
	msg.AddLine("MRG|" + src.PrimaryID + "||||" + src.VisitID + "|")

	return msg, nil
}

// BedSwapMessage builds an A17 (swap patients) message exchanging the locations of a and b.
func (g *Generator) BedSwapMessage(a, b Patient) (*hl7.Message, error) {
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("first patient: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("second patient: %w", err)
	}

	msg := hl7.NewMessage()
	msg.AddLine(g.msh("A17"))
	for _, p := range []Patient{a, b} {
		msg.AddLine(pid(p))
		msg.AddLine(`PV1|1|I|^^^|3|||^^^""^^^^||""|^^|||N|1|||^^^""^^^^|||K|` + p.VisitID +
			"|||||||||||||||11|||H||2|||||||||||")
	}

	return msg, nil
}

func (p Patient) validate() error {
	if p.PrimaryID == "" || p.VisitID == "" {
		return ErrEmptyPatientID
	}

	return nil
}

func (g *Generator) msh(event string) string {
	return `MSH|^~\&|Hospital|H|HL7|HL7|` + g.CurrentDate() + "||ADT^" + event + "|" + controlID +
		"|P|2.2|" + controlID + "||AL|||||||2.5"
}

func pid(p Patient) string {
	return "PID|1|^^^^^|" + p.PrimaryID + `^^^H^MR^||Doe^Jane^""^""|||F||7|^^^^^^^||||^^^^^|M|NO|` +
		p.VisitID + "^^^H^^||||||N|||N|||N"
}

func pv1(p Patient, o adtOptions) string {
	return "PV1|1|" + o.patientClass + "|" + o.location + "^^^" + o.facility +
		`|3|||^^^""^^^^||""|^^|||N|1|||^^^""^^^^|||K|` + p.VisitID +
		"|||||||||||||||11|||H||2|||||||||||"
}
