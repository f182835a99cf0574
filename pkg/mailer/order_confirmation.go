package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// OrderLine is one row of the confirmation table. Amounts are preformatted.
type OrderLine struct {
	Name     string
	Quantity int
	Price    string
	Amount   string
}

type OrderConfirmation struct {
	OrderID         uint
	CustomerName    string
	Email           string
	Lines           []OrderLine
	Subtotal        string
	GiftWrapPrice   string
	DeliveryFee     string
	Tax             string
	Total           string
	PaymentMethod   string
	ShippingAddress string
	IsGift          bool
	RecipientName   string
	GreetingMessage string
}

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
<h2>Thanks for your order, {{.CustomerName}}!</h2>
<p>Order #{{.OrderID}} has been placed and will be delivered to:</p>
<p>{{.ShippingAddress}}</p>
<table style="width: 100%; border-collapse: collapse;">
<thead><tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Amount</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">₹{{.Price}}</td><td align="right">₹{{.Amount}}</td></tr>
{{end}}</tbody>
</table>
<p>Subtotal: ₹{{.Subtotal}}<br>
{{if .IsGift}}Gift wrap: ₹{{.GiftWrapPrice}}<br>{{end}}Delivery: ₹{{.DeliveryFee}}<br>
Tax: ₹{{.Tax}}<br>
<strong>Total: ₹{{.Total}}</strong> ({{.PaymentMethod}})</p>
{{if .IsGift}}<p>🎁 Sent as a gift{{if .RecipientName}} to {{.RecipientName}}{{end}}.{{if .GreetingMessage}}<br><em>"{{.GreetingMessage}}"</em>{{end}}</p>{{end}}
</div>
</body>
</html>`))

// Message renders the confirmation email.
func (o OrderConfirmation) Message() (Message, error) {
	var html bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&html, o); err != nil {
		return Message{}, fmt.Errorf("render order confirmation: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Thanks for your order, %s!\n\nOrder #%d\n", o.CustomerName, o.OrderID)
	for _, l := range o.Lines {
		fmt.Fprintf(&text, "%d x %s  ₹%s\n", l.Quantity, l.Name, l.Amount)
	}
	fmt.Fprintf(&text, "\nTotal: ₹%s (%s)\nDeliver to: %s\n", o.Total, o.PaymentMethod, o.ShippingAddress)

	return Message{
		To:      o.Email,
		Subject: fmt.Sprintf("Order #%d confirmed", o.OrderID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
