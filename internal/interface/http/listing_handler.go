package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
)

type ListingHandler struct {
	Svc    *application.ListingService
	View   *Presenter
	Logger *logrus.Logger
}

func NewListingHandler(svc *application.ListingService, view *Presenter, logger *logrus.Logger) *ListingHandler {
	return &ListingHandler{Svc: svc, View: view, Logger: logger}
}

func (h *ListingHandler) Index(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	rc := h.View.Context(c)
	out, err := h.Svc.Index(c.Request.Context(), page)
	h.View.Respond(c, rc, out, err)
}

func (h *ListingHandler) New(c *gin.Context) {
	rc := h.View.Context(c)
	out, err := h.Svc.NewForm(rc)
	h.View.Respond(c, rc, out, err)
}

func (h *ListingHandler) Show(c *gin.Context) {
	rc := h.View.Context(c)
	out, err := h.Svc.Show(c.Request.Context(), rc, c.Param("id"))
	h.View.Respond(c, rc, out, err)
}

func (h *ListingHandler) Edit(c *gin.Context) {
	rc := h.View.Context(c)
	out, err := h.Svc.EditForm(c.Request.Context(), rc, c.Param("id"))
	h.View.Respond(c, rc, out, err)
}

func (h *ListingHandler) Create(c *gin.Context) {
	rc := h.View.Context(c)
	form, ok := h.bindForm(c, rc, "/listings/new")
	if !ok {
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), rc, form)
	h.View.Respond(c, rc, out, err)
}

func (h *ListingHandler) Update(c *gin.Context) {
	rc := h.View.Context(c)
	id := c.Param("id")
	form, ok := h.bindForm(c, rc, "/listings/"+id+"/edit")
	if !ok {
		return
	}
	out, err := h.Svc.Update(c.Request.Context(), rc, id, form)
	h.View.Respond(c, rc, out, err)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	rc := h.View.Context(c)
	out, err := h.Svc.Delete(c.Request.Context(), rc, c.Param("id"))
	h.View.Respond(c, rc, out, err)
}

// bindForm reads the listing fields and optional image. A body that cannot
// be parsed at all goes back to the form with an error message.
func (h *ListingHandler) bindForm(c *gin.Context, rc *application.RequestContext, back string) (application.ListingForm, bool) {
	var form application.ListingForm
	if err := c.ShouldBind(&form.Listing); err != nil {
		return form, h.reject(c, rc, back, err)
	}
	img, err := formUpload(c, listingImageField)
	if err != nil {
		return form, h.reject(c, rc, back, err)
	}
	form.Image = img
	return form, true
}

func (h *ListingHandler) reject(c *gin.Context, rc *application.RequestContext, back string, err error) bool {
	h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Debug("unreadable listing form")
	rc.Flash(application.FlashError, "Invalid listing data")
	h.View.Respond(c, rc, application.Outcome{Redirect: back, Status: http.StatusFound},
		apperr.Wrap(apperr.ValidationFailed, "Invalid listing data", err))
	return false
}
