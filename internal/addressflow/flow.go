// Package addressflow is the two-step delivery address capture: pick a point on the
// map (Selecting), then complete the form (Completing) and submit it.
//
// The current step is a closed variant. Submit is only defined on Completing, so a
// submission from the map step cannot be expressed.
package addressflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/pkg/geocode"
)

// Address labels.
const (
	LabelHome  = "Home"
	LabelWork  = "Work"
	LabelOther = "Other"
)

const (
	stepSelect = "select"
	stepForm   = "form"
)

// ValidLabel reports whether label is Home, Work or Other.
func ValidLabel(label string) bool {
	switch label {
	case LabelHome, LabelWork, LabelOther:
		return true
	}
	return false
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coords) valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Draft is the editable form. It survives moving back and forth between steps.
type Draft struct {
	Label     string `json:"label"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Landmark  string `json:"landmark"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

func emptyDraft() Draft {
	return Draft{Label: LabelHome}
}

// Step is either Selecting or Completing.
type Step interface {
	step() string
}

// Selecting is the map step. Coords is nil until a point is picked.
type Selecting struct {
	Coords           *Coords `json:"coords,omitempty"`
	Draft            Draft   `json:"draft"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Resolved         bool    `json:"resolved"` // last pick produced structured fields
}

func (Selecting) step() string { return stepSelect }

// Completing is the form step. Coordinates are always present here.
type Completing struct {
	Coords Coords `json:"coords"`
	Draft  Draft  `json:"draft"`
}

func (Completing) step() string { return stepForm }

// Flow is the per-session capture state.
type Flow struct {
	current Step
}

// Start returns a flow on the map step with an empty Home draft.
func Start() Flow {
	return Flow{current: Selecting{Draft: emptyDraft()}}
}

// Step returns the current variant.
func (f Flow) Step() Step {
	if f.current == nil {
		return Selecting{Draft: emptyDraft()}
	}
	return f.current
}

// StepName is "select" or "form".
func (f Flow) StepName() string {
	return f.Step().step()
}

// Completing returns the form step when the flow is on it.
func (f Flow) Completing() (Completing, bool) {
	c, ok := f.Step().(Completing)
	return c, ok
}

func stepError(action, step string) error {
	return apperrors.NewValidation(apperrors.InvalidFlowStep,
		fmt.Sprintf("Cannot %s on the %s step", action, step))
}

// ReverseGeocoder resolves coordinates into address fields.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*geocode.Result, error)
}

// Pick records a map point and pre-fills the draft from reverse geocoding.
// Geocoding is best effort: on failure, or when nothing structured comes back,
// the geocoded fields are cleared and the pick still succeeds.
func (f Flow) Pick(ctx context.Context, g ReverseGeocoder, c Coords) (Flow, error) {
	sel, ok := f.Step().(Selecting)
	if !ok {
		return f, stepError("pick a location", stepForm)
	}
	if !c.valid() {
		return f, apperrors.NewValidation(apperrors.ValidationInvalidRange, "Coordinates are out of range")
	}

	picked := c
	sel.Coords = &picked
	sel.Resolved = false
	sel.FormattedAddress = ""

	var parsed geocode.Parsed
	if g != nil {
		res, err := g.Reverse(ctx, c.Lat, c.Lng)
		if err == nil && res != nil {
			if res.FullResult != nil {
				sel.FormattedAddress = res.FullResult.FormattedAddress
			}
			switch {
			case res.Parsed != nil:
				parsed = *res.Parsed
			case res.FullResult != nil:
				parsed = geocode.Parse(*res.FullResult)
			}
		}
	}

	sel.Draft.Street = parsed.Street
	sel.Draft.Landmark = parsed.Landmark
	sel.Draft.City = parsed.City
	sel.Draft.State = parsed.State
	sel.Draft.Pincode = parsed.Pincode
	sel.Resolved = !parsed.IsEmpty()

	return Flow{current: sel}, nil
}

// Proceed moves from the map to the form. A picked point is required.
func (f Flow) Proceed() (Flow, error) {
	switch s := f.Step().(type) {
	case Selecting:
		if s.Coords == nil {
			return f, apperrors.NewValidation(apperrors.MissingCoordinates, "Please pick a location on the map")
		}
		return Flow{current: Completing{Coords: *s.Coords, Draft: s.Draft}}, nil
	default:
		return f, stepError("proceed", stepForm)
	}
}

// Back returns from the form to the map keeping the point and the draft.
func (f Flow) Back() (Flow, error) {
	switch s := f.Step().(type) {
	case Completing:
		coords := s.Coords
		return Flow{current: Selecting{Coords: &coords, Draft: s.Draft}}, nil
	default:
		return f, stepError("go back", stepSelect)
	}
}

// DraftPatch is a partial form edit. Nil fields are left untouched.
type DraftPatch struct {
	Label     *string `json:"label"`
	Street    *string `json:"street"`
	Apartment *string `json:"apartment"`
	Landmark  *string `json:"landmark"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Pincode   *string `json:"pincode"`
}

// Edit applies a form change. Only allowed on the form step.
func (f Flow) Edit(p DraftPatch) (Flow, error) {
	c, ok := f.Completing()
	if !ok {
		return f, stepError("edit the address", stepSelect)
	}
	if p.Label != nil && !ValidLabel(*p.Label) {
		return f, apperrors.NewFieldValidation(apperrors.InvalidLabel,
			"Label must be Home, Work or Other", map[string]string{"label": "invalid"})
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Draft.Label, p.Label)
	set(&c.Draft.Street, p.Street)
	set(&c.Draft.Apartment, p.Apartment)
	set(&c.Draft.Landmark, p.Landmark)
	set(&c.Draft.City, p.City)
	set(&c.Draft.State, p.State)
	set(&c.Draft.Pincode, p.Pincode)

	return Flow{current: c}, nil
}

type flowJSON struct {
	Step             string  `json:"step"`
	Coords           *Coords `json:"coords,omitempty"`
	Draft            Draft   `json:"draft"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Resolved         bool    `json:"resolved,omitempty"`
}

func (f Flow) MarshalJSON() ([]byte, error) {
	switch s := f.Step().(type) {
	case Completing:
		coords := s.Coords
		return json.Marshal(flowJSON{Step: stepForm, Coords: &coords, Draft: s.Draft})
	case Selecting:
		return json.Marshal(flowJSON{
			Step:             stepSelect,
			Coords:           s.Coords,
			Draft:            s.Draft,
			FormattedAddress: s.FormattedAddress,
			Resolved:         s.Resolved,
		})
	}
	return nil, fmt.Errorf("unknown address flow step %T", f.current)
}

func (f *Flow) UnmarshalJSON(data []byte) error {
	var raw flowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Draft.Label == "" {
		raw.Draft.Label = LabelHome
	}
	switch raw.Step {
	case stepForm:
		if raw.Coords == nil {
			return fmt.Errorf("address flow form step without coordinates")
		}
		f.current = Completing{Coords: *raw.Coords, Draft: raw.Draft}
	case stepSelect, "":
		f.current = Selecting{
			Coords:           raw.Coords,
			Draft:            raw.Draft,
			FormattedAddress: raw.FormattedAddress,
			Resolved:         raw.Resolved,
		}
	default:
		return fmt.Errorf("unknown address flow step %q", raw.Step)
	}
	return nil
}
