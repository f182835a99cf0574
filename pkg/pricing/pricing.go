// Package pricing computes order totals for a cart.
//
// All amounts are decimals. Subtotal and gift wrap price are exact; tax is rounded
// once to two places (half away from zero) and the total is the exact sum of the
// components, so Subtotal+GiftWrapPrice+DeliveryFee+Tax == Total always holds.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const taxPlaces = 2

var (
	ErrInvalidLine   = errors.New("invalid cart line")
	ErrInvalidConfig = errors.New("invalid pricing config")
)

// Config holds the pricing constants.
type Config struct {
	FreeDeliveryThreshold decimal.Decimal
	FlatDeliveryFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultConfig returns threshold 199, flat fee 40 and a 5% tax rate.
func DefaultConfig() Config {
	return Config{
		FreeDeliveryThreshold: decimal.NewFromInt(199),
		FlatDeliveryFee:       decimal.NewFromInt(40),
		TaxRate:               decimal.RequireFromString("0.05"),
	}
}

// ParseConfig builds a Config from decimal strings.
func ParseConfig(threshold, flatFee, taxRate string) (Config, error) {
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return Config{}, fmt.Errorf("%w: free delivery threshold %q: %v", ErrInvalidConfig, threshold, err)
	}
	f, err := decimal.NewFromString(flatFee)
	if err != nil {
		return Config{}, fmt.Errorf("%w: flat delivery fee %q: %v", ErrInvalidConfig, flatFee, err)
	}
	r, err := decimal.NewFromString(taxRate)
	if err != nil {
		return Config{}, fmt.Errorf("%w: tax rate %q: %v", ErrInvalidConfig, taxRate, err)
	}
	if t.IsNegative() || f.IsNegative() || r.IsNegative() {
		return Config{}, fmt.Errorf("%w: values must not be negative", ErrInvalidConfig)
	}
	return Config{FreeDeliveryThreshold: t, FlatDeliveryFee: f, TaxRate: r}, nil
}

// Line is one priced cart line.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Totals is the derived pricing snapshot. It is never stored; callers recompute it on every read.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	GiftWrapPrice decimal.Decimal `json:"giftWrapPrice"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// MarshalJSON renders every amount as a JSON number.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal      json.Number `json:"subtotal"`
		GiftWrapPrice json.Number `json:"giftWrapPrice"`
		DeliveryFee   json.Number `json:"deliveryFee"`
		Tax           json.Number `json:"tax"`
		Total         json.Number `json:"total"`
	}{
		Subtotal:      json.Number(t.Subtotal.String()),
		GiftWrapPrice: json.Number(t.GiftWrapPrice.String()),
		DeliveryFee:   json.Number(t.DeliveryFee.String()),
		Tax:           json.Number(t.Tax.String()),
		Total:         json.Number(t.Total.String()),
	})
}

// Engine computes Totals with a fixed Config.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Validate rejects negative prices, quantities below one and a negative wrap price.
func Validate(lines []Line, giftWrapPrice decimal.Decimal) error {
	if giftWrapPrice.IsNegative() {
		return fmt.Errorf("%w: negative gift wrap price", ErrInvalidLine)
	}
	for i, l := range lines {
		if l.Price.IsNegative() {
			return fmt.Errorf("%w: line %d has negative price", ErrInvalidLine, i)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: line %d has quantity %d", ErrInvalidLine, i, l.Quantity)
		}
	}
	return nil
}

// Subtotal is Σ price × quantity.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// DeliveryFee is zero only when amount is strictly above the threshold.
func (e *Engine) DeliveryFee(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(e.cfg.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return e.cfg.FlatDeliveryFee
}

// Tax is amount × rate rounded to two places.
func (e *Engine) Tax(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(e.cfg.TaxRate).Round(taxPlaces)
}

// ComputeTotals prices lines plus an optional gift wrap. Inputs are assumed validated.
func (e *Engine) ComputeTotals(lines []Line, giftWrapPrice decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	taxable := subtotal.Add(giftWrapPrice)
	fee := e.DeliveryFee(taxable)
	tax := e.Tax(taxable)

	return Totals{
		Subtotal:      subtotal,
		GiftWrapPrice: giftWrapPrice,
		DeliveryFee:   fee,
		Tax:           tax,
		Total:         taxable.Add(fee).Add(tax),
	}
}

// Matches reports whether a client-computed total is within tolerance of t.Total.
func (t Totals) Matches(clientTotal, tolerance decimal.Decimal) bool {
	return t.Total.Sub(clientTotal).Abs().LessThanOrEqual(tolerance)
}
