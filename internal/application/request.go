package application

import "net/http"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Message is a user-facing notice shown on the next rendered page.
type Message struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

// Identity is the authenticated user bound to a request.
type Identity struct {
	ID       string
	Username string
}

// RequestContext carries everything guards and orchestrators read from or
// write to the in-flight request. The HTTP layer builds it and later
// persists the queued messages and RedirectAfterLogin into the session.
type RequestContext struct {
	Identity           *Identity
	SessionID          string
	Path               string
	RedirectAfterLogin string

	messages []Message
}

func NewRequestContext(identity *Identity, path string) *RequestContext {
	return &RequestContext{Identity: identity, Path: path}
}

func (rc *RequestContext) Flash(kind FlashKind, text string) {
	rc.messages = append(rc.messages, Message{Kind: kind, Text: text})
}

// Messages returns the messages queued during this request.
func (rc *RequestContext) Messages() []Message {
	return rc.messages
}

// UserID returns the bound identity id, or "" when anonymous.
func (rc *RequestContext) UserID() string {
	if rc == nil || rc.Identity == nil {
		return ""
	}
	return rc.Identity.ID
}

// Outcome is what an orchestrator tells the transport to do: either follow
// Redirect or render View with Data.
type Outcome struct {
	Redirect string
	View     string
	Data     any
	Status   int
}

func (o Outcome) IsRedirect() bool { return o.Redirect != "" }

func redirectTo(path string) Outcome {
	return Outcome{Redirect: path, Status: http.StatusFound}
}

func render(view string, data any) Outcome {
	return Outcome{View: view, Data: data, Status: http.StatusOK}
}

func listingPath(id string) string {
	return "/listings/" + id
}
