// Package gift models the gift sub-order attached to a cart: recipient, occasion,
// wrap, greeting message and sender visibility.
package gift

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "github.com/dvfens/ags/internal/errors"
)

// MaxMessageLength is the greeting message limit in characters.
const MaxMessageLength = 200

// Options is the gift selection held in the session next to the cart items.
type Options struct {
	IsGift          bool   `json:"isGift"`
	GiftWrapID      *uint  `json:"giftWrapId,omitempty"`
	OccasionID      *uint  `json:"occasionId,omitempty"`
	RecipientID     *uint  `json:"recipientId,omitempty"`
	GreetingMessage string `json:"greetingMessage,omitempty"`
	SenderName      string `json:"senderName,omitempty"`
	ShowSenderName  bool   `json:"showSenderName"`
}

// Defaults returns a non-gift selection that shows the sender name once gifting is switched on.
func Defaults() Options {
	return Options{ShowSenderName: true}
}

// Update is a partial change to Options. Nil fields are left untouched.
// Clear* flags unset the corresponding optional id.
type Update struct {
	IsGift          *bool   `json:"isGift"`
	GiftWrapID      *uint   `json:"giftWrapId"`
	OccasionID      *uint   `json:"occasionId"`
	RecipientID     *uint   `json:"recipientId"`
	GreetingMessage *string `json:"greetingMessage"`
	SenderName      *string `json:"senderName"`
	ShowSenderName  *bool   `json:"showSenderName"`

	ClearGiftWrap  bool `json:"clearGiftWrap"`
	ClearOccasion  bool `json:"clearOccasion"`
	ClearRecipient bool `json:"clearRecipient"`
}

// Apply returns o with u applied. Switching IsGift off clears every gift field so a
// later switch back on starts with nothing pre-selected. Field changes made while
// IsGift is off are ignored.
func (o Options) Apply(u Update) (Options, error) {
	next := o

	if u.IsGift != nil {
		if !*u.IsGift {
			return next.cleared(), nil
		}
		next.IsGift = true
	}

	if !next.IsGift {
		return next, nil
	}

	if u.GreetingMessage != nil {
		msg := strings.TrimSpace(*u.GreetingMessage)
		if utf8.RuneCountInString(msg) > MaxMessageLength {
			return o, apperrors.NewFieldValidation(apperrors.MessageTooLong,
				"Greeting message must be at most 200 characters",
				map[string]string{"greetingMessage": "too long"})
		}
		next.GreetingMessage = msg
	}

	switch {
	case u.ClearGiftWrap:
		next.GiftWrapID = nil
	case u.GiftWrapID != nil:
		next.GiftWrapID = copyID(u.GiftWrapID)
	}
	switch {
	case u.ClearOccasion:
		next.OccasionID = nil
	case u.OccasionID != nil:
		next.OccasionID = copyID(u.OccasionID)
	}
	switch {
	case u.ClearRecipient:
		next.RecipientID = nil
	case u.RecipientID != nil:
		next.RecipientID = copyID(u.RecipientID)
	}

	if u.SenderName != nil {
		next.SenderName = strings.TrimSpace(*u.SenderName)
	}
	if u.ShowSenderName != nil {
		next.ShowSenderName = *u.ShowSenderName
	}

	return next, nil
}

func (o Options) cleared() Options {
	return Options{IsGift: false, ShowSenderName: o.ShowSenderName}
}

// Validate is the gate run before an order is submitted. Wrap and occasion stay optional.
func (o Options) Validate() error {
	if !o.IsGift {
		return nil
	}
	if o.RecipientID == nil {
		return apperrors.NewFieldValidation(apperrors.MissingRecipient,
			"Please select a recipient for this gift",
			map[string]string{"recipientId": "required"})
	}
	if utf8.RuneCountInString(o.GreetingMessage) > MaxMessageLength {
		return apperrors.NewValidation(apperrors.MessageTooLong,
			"Greeting message must be at most 200 characters")
	}
	return nil
}

// Submission is the gift part of an order request.
type Submission struct {
	IsGift          bool   `json:"isGift"`
	GiftWrapID      *uint  `json:"giftWrapId,omitempty"`
	OccasionID      *uint  `json:"occasionId,omitempty"`
	RecipientID     *uint  `json:"recipientId,omitempty"`
	GreetingMessage string `json:"greetingMessage,omitempty"`
	SenderName      string `json:"senderName,omitempty"`
	ShowSenderName  bool   `json:"showSenderName"`
}

// Submission returns the fields sent with an order. When IsGift is false none of the
// gift fields are included.
func (o Options) Submission() Submission {
	if !o.IsGift {
		return Submission{}
	}
	return Submission{
		IsGift:          true,
		GiftWrapID:      copyID(o.GiftWrapID),
		OccasionID:      copyID(o.OccasionID),
		RecipientID:     copyID(o.RecipientID),
		GreetingMessage: o.GreetingMessage,
		SenderName:      o.SenderName,
		ShowSenderName:  o.ShowSenderName,
	}
}

// Wrap is the subset of a gift wrap needed for pricing.
type Wrap struct {
	ID    uint
	Price decimal.Decimal
}

// WrapPrice returns the price of the selected wrap, or zero when gifting is off,
// no wrap is selected or the id is unknown.
func (o Options) WrapPrice(wraps []Wrap) decimal.Decimal {
	if !o.IsGift || o.GiftWrapID == nil {
		return decimal.Zero
	}
	for _, w := range wraps {
		if w.ID == *o.GiftWrapID {
			return w.Price
		}
	}
	return decimal.Zero
}

// WithoutUnknownWrap drops a selected wrap that is no longer in wraps, matching
// the zero surcharge WrapPrice gives it.
func (o Options) WithoutUnknownWrap(wraps []Wrap) Options {
	if o.GiftWrapID == nil {
		return o
	}
	for _, w := range wraps {
		if w.ID == *o.GiftWrapID {
			return o
		}
	}
	o.GiftWrapID = nil
	return o
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
