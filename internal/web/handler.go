// Package web serves the server-rendered catalog page and its insertion form.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/model"
	"github.com/snnyvrz/bookcatalog/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type Handler struct {
	svc    catalog.Service
	logger *zap.Logger
}

// NewHandler takes either the in-process catalog service or an
// apiclient.Client; the page behaves the same over both.
func NewHandler(svc catalog.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(e *gin.Engine) {
	e.SetHTMLTemplate(Templates())
	e.GET("/", h.Index)
	e.POST("/", h.Submit)
}

type bookForm struct {
	Title           string `form:"title"`
	Author          string `form:"author"`
	PublicationYear string `form:"publication_year"`
	Available       string `form:"available"`
}

func (f bookForm) trimmed() bookForm {
	return bookForm{
		Title:           strings.TrimSpace(f.Title),
		Author:          strings.TrimSpace(f.Author),
		PublicationYear: strings.TrimSpace(f.PublicationYear),
		Available:       f.Available,
	}
}

// fields treats empty optional inputs as not supplied.
func (f bookForm) fields() validation.Fields {
	fields := validation.Fields{
		"title":     f.Title,
		"available": f.Available == "true",
	}
	if f.Author != "" {
		fields["author"] = f.Author
	}
	if f.PublicationYear != "" {
		fields["publication_year"] = f.PublicationYear
	}
	return fields
}

type page struct {
	Books   []model.Book
	Form    pageForm
	Message string
}

type pageForm struct {
	Title           string
	Author          string
	PublicationYear string
	Available       bool
}

func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, bookForm{}, "")
}

func (h *Handler) Submit(c *gin.Context) {
	var form bookForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, bookForm{}, "Invalid form submission.")
		return
	}
	form = form.trimmed()

	book, err := h.svc.Create(c.Request.Context(), form.fields())

	var verr *validation.Error
	switch {
	case err == nil:
		h.render(c, http.StatusOK, bookForm{}, `Book "`+book.Title+`" added.`)
	case errors.As(err, &verr):
		h.render(c, http.StatusBadRequest, form, "Invalid input: "+strings.Join(verr.Messages(), "; "))
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		h.logger.Warn("create through api failed", zap.Error(err))
		h.render(c, http.StatusBadGateway, form, "Could not reach the catalog API: "+err.Error())
	default:
		h.logger.Error("create book failed", zap.Error(err))
		h.render(c, http.StatusInternalServerError, form, "Could not save the book.")
	}
}

// render always lists the catalog. A failed listing degrades to an empty
// table and is reported only when no other message is pending.
func (h *Handler) render(c *gin.Context, status int, form bookForm, message string) {
	books, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Warn("list books for page failed", zap.Error(err))
		books = nil
		if message == "" {
			if errors.Is(err, catalog.ErrUpstreamUnavailable) {
				message = "Could not reach the catalog API: " + err.Error()
			} else {
				message = "Could not load books."
			}
		}
	}

	c.HTML(status, "index.html", page{
		Books: books,
		Form: pageForm{
			Title:           form.Title,
			Author:          form.Author,
			PublicationYear: form.PublicationYear,
			Available:       form.Available == "true",
		},
		Message: message,
	})
}
