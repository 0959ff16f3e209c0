package consumer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	"github.com/jeevanjot011/bevflow/internal/estimator"
)

const textBody = `Order {{.OrderID}} placed by {{.CustomerUsername}}.
Product: {{.ProductName}}
Quantity: {{.Quantity}}
Distance: {{.Distance}} km
Estimated delivery: {{.ETADays}} days
`

const htmlBody = `<p>Order <b>{{.OrderID}}</b> placed by <b>{{.CustomerUsername}}</b>.</p>
<p>Product: <b>{{.ProductName}}</b></p>
<p>Quantity: <b>{{.Quantity}}</b></p>
<p>Distance: <b>{{.Distance}} km</b></p>
<p>Estimated delivery: <b>{{.ETADays}} days</b></p>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

type emailData struct {
	OrderID          string
	CustomerUsername string
	ProductName      string
	Quantity         int
	Distance         string
	ETADays          int
}

// RenderNotification builds the manufacturer e-mail for msg.
func RenderNotification(msg models.OrderMessage, estimate estimator.Estimate) (models.Notification, error) {
	data := emailData{
		OrderID:          msg.OrderID.String(),
		CustomerUsername: msg.CustomerUsername,
		ProductName:      msg.ProductName,
		Quantity:         msg.Quantity,
		Distance:         strconv.FormatFloat(estimate.DistanceKm, 'f', -1, 64),
		ETADays:          estimate.ETADays,
	}

	var text, html bytes.Buffer

	if err := textTmpl.Execute(&text, data); err != nil {
		return models.Notification{}, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return models.Notification{}, fmt.Errorf("render html body: %w", err)
	}

	return models.Notification{
		To:      msg.ManufacturerEmail,
		Subject: fmt.Sprintf("New Order #%s — %s", msg.OrderID, msg.ProductName),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
