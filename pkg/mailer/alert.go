package mailer

import (
	"bytes"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

// Alert is a rendered operator notification for a degraded event.
type Alert struct {
	Subject string
	Text    string
	HTML    string
}

type alertData struct {
	App       string
	Title     string
	Type      string
	ListingID string
	ReviewID  string
	UserID    string
	Reason    string
	At        string
}

const alertText = `{{.Title}}

Event:   {{.Type}}
{{- if .ListingID}}
Listing: {{.ListingID}}{{end}}
{{- if .ReviewID}}
Review:  {{.ReviewID}}{{end}}
{{- if .UserID}}
User:    {{.UserID}}{{end}}
Reason:  {{.Reason}}
At:      {{.At}}
`

const alertHTML = `<h2>{{.Title}}</h2>
<table>
<tr><td>Event</td><td>{{.Type}}</td></tr>
{{- if .ListingID}}<tr><td>Listing</td><td>{{.ListingID}}</td></tr>{{end}}
{{- if .ReviewID}}<tr><td>Review</td><td>{{.ReviewID}}</td></tr>{{end}}
{{- if .UserID}}<tr><td>User</td><td>{{.UserID}}</td></tr>{{end}}
<tr><td>Reason</td><td>{{.Reason}}</td></tr>
<tr><td>At</td><td>{{.At}}</td></tr>
</table>
<p>{{.App}} keeps serving requests; this needs a manual look.</p>
`

var (
	alertTextTpl = texttpl.Must(texttpl.New("alert.txt").Parse(alertText))
	alertHTMLTpl = htmpl.Must(htmpl.New("alert.html").Parse(alertHTML))
)

// RenderAlert formats a degraded event for the operator mailbox.
func RenderAlert(app string, evt gateway.Event) (Alert, error) {
	d := alertData{
		App:       app,
		Title:     alertTitle(evt.Type),
		Type:      evt.Type,
		ListingID: evt.ListingID,
		ReviewID:  evt.ReviewID,
		UserID:    evt.UserID,
		Reason:    evt.Reason,
		At:        evt.At.UTC().Format(time.RFC3339),
	}
	if strings.TrimSpace(d.Reason) == "" {
		d.Reason = "unspecified"
	}
	var txt, html bytes.Buffer
	if err := alertTextTpl.Execute(&txt, d); err != nil {
		return Alert{}, err
	}
	if err := alertHTMLTpl.Execute(&html, d); err != nil {
		return Alert{}, err
	}
	return Alert{
		Subject: "[" + app + "] " + d.Title,
		Text:    txt.String(),
		HTML:    html.String(),
	}, nil
}

func alertTitle(eventType string) string {
	switch eventType {
	case gateway.EventReviewOrphaned:
		return "Review left inconsistent with its listing"
	case gateway.EventGeocodeDegraded:
		return "Geocoding fell back to the default point"
	default:
		return "Degraded event " + eventType
	}
}
