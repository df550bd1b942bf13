package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"storefront-backend/internal/model"
)

type EventKind string

const (
	EventReceived   EventKind = "received"
	EventConfirmed  EventKind = "confirmed"
	EventDispatched EventKind = "dispatched"
	EventDelivered  EventKind = "delivered"
	EventCancelled  EventKind = "cancelled"

	// internal admin alert sent alongside EventReceived
	eventAdminNewOrder EventKind = "admin_new_order"
)

// variant holds everything that differs between the lifecycle emails. The
// bodies share one template; only tone, colour and the optional blocks change.
type variant struct {
	subject      string // order number substituted with %s
	title        string
	headerColor  string
	intro        string
	showTracking bool
	showSupport  bool
}

var variants = map[EventKind]variant{
	EventReceived: {
		subject:     "We've received your order %s",
		title:       "Thank you for your order",
		headerColor: "#2e7d32",
		intro:       "We've received your order and our team is getting it ready.",
		showSupport: true,
	},
	EventConfirmed: {
		subject:     "Your order %s is being processed",
		title:       "Your order is confirmed",
		headerColor: "#1565c0",
		intro:       "Good news — your order has been confirmed and is now being processed.",
		showSupport: true,
	},
	EventDispatched: {
		subject:      "Your order %s is on its way",
		title:        "Your order has been dispatched",
		headerColor:  "#6a1b9a",
		intro:        "Your order has left our warehouse and is on its way to you.",
		showTracking: true,
		showSupport:  true,
	},
	EventDelivered: {
		subject:     "Your order %s has been delivered",
		title:       "Your order has arrived",
		headerColor: "#2e7d32",
		intro:       "Your order has been delivered. We hope you love it!",
		showSupport: true,
	},
	EventCancelled: {
		subject:     "Your order %s has been cancelled",
		title:       "Your order has been cancelled",
		headerColor: "#c62828",
		intro:       "Your order has been cancelled. If a payment was taken it will be refunded to your original payment method.",
		showSupport: true,
	},
	eventAdminNewOrder: {
		subject:     "New order %s",
		title:       "New order received",
		headerColor: "#37474f",
		intro:       "A new order has been placed and needs processing.",
	},
}

type itemView struct {
	Name       string
	Attributes []string
	Quantity   int
	UnitPrice  string
	LineTotal  string
}

type templateData struct {
	Title          string
	HeaderColor    template.CSS
	Intro          string
	FirstName      string
	OrderNumber    string
	Items          []itemView
	Total          string
	TrackingNumber string
	ShowTracking   bool
	ShowSupport    bool
}

var bodyTmpl = template.Must(template.New("order_email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, Helvetica, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: {{.HeaderColor}}; padding: 24px; border-radius: 8px 8px 0 0;">
		<h1 style="color: #fff; margin: 0; font-size: 22px;">{{.Title}}</h1>
	</div>
	<div style="background: #fff; padding: 24px; border: 1px solid #eee; border-top: none; border-radius: 0 0 8px 8px;">
		{{if .FirstName}}<p style="margin-top: 0;">Hi {{.FirstName}},</p>{{end}}
		<p>{{.Intro}}</p>
		<div style="background: #f8f9fa; padding: 12px; border-radius: 5px; margin: 16px 0;">
			<p style="margin: 0; font-size: 13px; color: #666;">Order number</p>
			<p style="margin: 4px 0 0 0; font-size: 17px; font-weight: bold; font-family: monospace;">{{.OrderNumber}}</p>
		</div>
		{{if .ShowTracking}}
		<div style="background: #f3e5f5; padding: 12px; border-radius: 5px; margin: 16px 0;">
			<p style="margin: 0; font-size: 13px; color: #666;">Tracking number</p>
			<p style="margin: 4px 0 0 0; font-size: 17px; font-weight: bold; font-family: monospace;">{{.TrackingNumber}}</p>
		</div>
		{{end}}
		<table style="width: 100%; border-collapse: collapse; margin: 16px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 10px; text-align: left;">Item</th>
					<th style="padding: 10px; text-align: center;">Qty</th>
					<th style="padding: 10px; text-align: right;">Price</th>
					<th style="padding: 10px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
				{{range .Items}}
				<tr>
					<td style="padding: 10px; border-bottom: 1px solid #eee;">
						{{.Name}}
						{{range .Attributes}}<br><span style="font-size: 12px; color: #888;">{{.}}</span>{{end}}
					</td>
					<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">&pound;{{.UnitPrice}}</td>
					<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">&pound;{{.LineTotal}}</td>
				</tr>
				{{end}}
			</tbody>
		</table>
		<div style="text-align: right; padding: 14px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 13px; color: #666;">Total</span>
			<span style="font-size: 21px; font-weight: bold; margin-left: 8px;">&pound;{{.Total}}</span>
		</div>
		{{if .ShowSupport}}
		<hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;">
		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Questions about your order? Reply to this email and our support team will help.
		</p>
		{{end}}
	</div>
</body>
</html>`))

func buildBody(kind EventKind, order *model.Order, items []model.OrderItem) (subject, body string, err error) {
	v, ok := variants[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email event %q", kind)
	}

	data := templateData{
		Title:          v.title,
		HeaderColor:    template.CSS(v.headerColor),
		Intro:          v.intro,
		OrderNumber:    order.OrderNumber,
		Total:          order.TotalAmount.StringFixed(2),
		TrackingNumber: order.TrackingNumber,
		ShowTracking:   v.showTracking,
		ShowSupport:    v.showSupport,
	}
	if kind != eventAdminNewOrder {
		data.FirstName = firstName(order.CustomerName)
	}
	for _, item := range items {
		data.Items = append(data.Items, itemView{
			Name:       item.ProductName,
			Attributes: itemAttributes(item),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			LineTotal:  item.TotalPrice.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}

	return fmt.Sprintf(v.subject, order.OrderNumber), buf.String(), nil
}

// itemAttributes renders only the snapshot attributes the item actually has.
func itemAttributes(item model.OrderItem) []string {
	pairs := []struct{ label, value string }{
		{"Size", item.Size},
		{"Color", item.Color},
		{"Depth", item.Depth},
		{"Firmness", item.Firmness},
		{"Length", item.Length},
		{"Width", item.Width},
		{"Height", item.Height},
		{"Weight", item.Weight},
		{"Material", item.Material},
		{"Brand", item.Brand},
	}

	var attrs []string
	for _, p := range pairs {
		if p.value != "" {
			attrs = append(attrs, p.label+": "+p.value)
		}
	}
	return attrs
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
