package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Flash is a user-facing message carried by a view.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// CurrentUser is the identity exposed to views.
type CurrentUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// View is the render directive written instead of HTML: which template to
// render, with what data and which flash messages.
type View struct {
	View        string       `json:"view"`
	Status      int          `json:"status"`
	RequestID   string       `json:"request_id"`
	Data        any          `json:"data,omitempty"`
	Messages    []Flash      `json:"messages,omitempty"`
	CurrentUser *CurrentUser `json:"currentUser,omitempty"`
}

func Render(ctx *gin.Context, status int, view string, data any, msgs []Flash, user *CurrentUser) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, View{
		View:        view,
		Status:      status,
		RequestID:   ctx.GetString("request_id"),
		Data:        data,
		Messages:    msgs,
		CurrentUser: user,
	})
}

// ErrorPage renders the generic error view.
func ErrorPage(ctx *gin.Context, status int, message string) {
	Render(ctx, status, "error", gin.H{"statusCode": status, "message": message}, nil, nil)
}
