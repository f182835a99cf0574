package addressflow

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/dvfens/ags/internal/errors"
)

// NewAddress is the persist request emitted by Submit.
type NewAddress struct {
	Label     string
	Street    string
	Apartment string
	Landmark  string
	City      string
	State     string
	Pincode   string
	Latitude  float64
	Longitude float64
	IsDefault bool
}

// Persister saves a submitted address and returns its id.
type Persister interface {
	CreateAddress(ctx context.Context, a NewAddress) (uint, error)
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, a NewAddress) (uint, error)

func (f PersisterFunc) CreateAddress(ctx context.Context, a NewAddress) (uint, error) {
	return f(ctx, a)
}

// Location is the submitted delivery location kept in the session.
// AddressID is set only when the address was persisted.
type Location struct {
	AddressID *uint   `json:"addressId,omitempty"`
	Label     string  `json:"label"`
	Street    string  `json:"street"`
	Apartment string  `json:"apartment,omitempty"`
	Landmark  string  `json:"landmark,omitempty"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"` // one-line display form
}

// Validate checks the required fields and the label.
func (c Completing) Validate() error {
	missing := map[string]string{}
	required := []struct {
		name  string
		value string
	}{
		{"street", c.Draft.Street},
		{"city", c.Draft.City},
		{"state", c.Draft.State},
		{"pincode", c.Draft.Pincode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing[f.name] = "required"
		}
	}
	if len(missing) > 0 {
		return apperrors.NewFieldValidation(apperrors.IncompleteAddress,
			"Please fill in street, city, state and pincode", missing)
	}
	if !ValidLabel(c.Draft.Label) {
		return apperrors.NewFieldValidation(apperrors.InvalidLabel,
			"Label must be Home, Work or Other", map[string]string{"label": "invalid"})
	}
	return nil
}

// Submit validates the form and, when p is non-nil, persists it as the default
// address. Validation failures never reach p. A nil p (guest session) only
// produces the session Location.
func (c Completing) Submit(ctx context.Context, p Persister) (Location, error) {
	if err := c.Validate(); err != nil {
		return Location{}, err
	}

	d := c.Draft
	loc := Location{
		Label:     d.Label,
		Street:    strings.TrimSpace(d.Street),
		Apartment: strings.TrimSpace(d.Apartment),
		Landmark:  strings.TrimSpace(d.Landmark),
		City:      strings.TrimSpace(d.City),
		State:     strings.TrimSpace(d.State),
		Pincode:   strings.TrimSpace(d.Pincode),
		Latitude:  c.Coords.Lat,
		Longitude: c.Coords.Lng,
	}
	loc.Address = fmt.Sprintf("%s, %s, %s - %s", loc.Street, loc.City, loc.State, loc.Pincode)

	if p == nil {
		return loc, nil
	}

	id, err := p.CreateAddress(ctx, NewAddress{
		Label:     loc.Label,
		Street:    loc.Street,
		Apartment: loc.Apartment,
		Landmark:  loc.Landmark,
		City:      loc.City,
		State:     loc.State,
		Pincode:   loc.Pincode,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		IsDefault: true,
	})
	if err != nil {
		return Location{}, fmt.Errorf("persist address: %w", err)
	}
	loc.AddressID = &id
	return loc, nil
}
