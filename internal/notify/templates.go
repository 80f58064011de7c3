package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var priceDropTpl = template.Must(template.New("price_drop").Parse(`<p>Hi {{.FirstName}},</p>
<p>Good news: the {{.Year}} {{.Make}} {{.Model}} you are watching dropped from <b>{{.OldPrice}}</b> to <b>{{.NewPrice}}</b>.</p>
<p><a href="{{.Link}}">View the listing</a></p>
<p>ExiDealers</p>`))

// PriceDrop describes a price alert notification
type PriceDrop struct {
	FirstName string
	Year      int
	Make      string
	Model     string
	OldPrice  string
	NewPrice  string
	Link      string
}

// PriceDropMail renders the notification for one subscriber
func PriceDropMail(to string, d PriceDrop) (Mail, error) {
	var buf bytes.Buffer
	if err := priceDropTpl.Execute(&buf, d); err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Price drop: %d %s %s", d.Year, d.Make, d.Model),
		HTML:    buf.String(),
		Text: fmt.Sprintf("The %d %s %s dropped from %s to %s. %s",
			d.Year, d.Make, d.Model, d.OldPrice, d.NewPrice, d.Link),
	}, nil
}
