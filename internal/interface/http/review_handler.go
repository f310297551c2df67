package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

type ReviewHandler struct {
	Svc    *application.ReviewService
	View   *Presenter
	Logger *logrus.Logger
}

func NewReviewHandler(svc *application.ReviewService, view *Presenter, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, View: view, Logger: logger}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	rc := h.View.Context(c)
	listingID := c.Param("id")
	var sub validation.ReviewSubmission
	if err := c.ShouldBind(&sub); err != nil {
		rc.Flash(application.FlashError, "Invalid review data")
		h.View.Respond(c, rc, application.Outcome{Redirect: "/listings/" + listingID, Status: http.StatusFound},
			apperr.Wrap(apperr.ValidationFailed, "Invalid review data", err))
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), rc, listingID, sub)
	h.View.Respond(c, rc, out, err)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	rc := h.View.Context(c)
	out, err := h.Svc.Delete(c.Request.Context(), rc, c.Param("id"), c.Param("reviewId"))
	h.View.Respond(c, rc, out, err)
}
