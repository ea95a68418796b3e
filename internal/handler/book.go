package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/validation"
)

type BookHandler struct {
	svc    catalog.Service
	logger *zap.Logger
}

func NewBookHandler(svc catalog.Service, logger *zap.Logger) *BookHandler {
	return &BookHandler{svc: svc, logger: logger}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBookByID)
		books.PUT("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
		books.POST("", h.CreateBook)
	}
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Create a new book. Only title is required; available defaults to false.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateBookRequest   true  "Book to create"
// @Success      201      {object}  model.Book
// @Failure      400      {object}  validation.ErrorResponse  "Validation error"
// @Failure      500      {object}  ErrorResponse              "Internal server error"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	fields, ok := validation.BindJSON(c)
	if !ok {
		return
	}

	book, err := h.svc.Create(c.Request.Context(), fields)
	if err != nil {
		h.writeServiceError(c, err, "failed to create book")
		return
	}

	c.JSON(http.StatusCreated, book)
}

// ListBooks godoc
// @Summary      List books
// @Description  Get every book ordered by id
// @Tags         books
// @Produce      json
// @Success      200  {array}   model.Book
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err, "failed to fetch books")
		return
	}

	c.JSON(http.StatusOK, books)
}

// GetBookByID godoc
// @Summary      Get a book by ID
// @Description  Get a single book by its id
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  model.Book
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  ErrorResponse              "Book not found"
// @Failure      500  {object}  ErrorResponse              "Internal server error"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	book, err := h.svc.Get(c.Request.Context(), bookID)
	if err != nil {
		h.writeServiceError(c, err, "failed to fetch book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Update only the supplied fields of a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "Book ID"
// @Param        payload  body      UpdateBookRequest   true  "Fields to update"
// @Success      200      {object}  model.Book
// @Failure      400      {object}  validation.ErrorResponse  "Invalid ID or payload"
// @Failure      404      {object}  ErrorResponse              "Book not found"
// @Failure      500      {object}  ErrorResponse              "Internal server error"
// @Router       /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	fields, ok := validation.BindJSON(c)
	if !ok {
		return
	}

	book, err := h.svc.Update(c.Request.Context(), bookID, fields)
	if err != nil {
		h.writeServiceError(c, err, "failed to update book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary      Delete a book
// @Description  Delete a book by its id
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  catalog.Deletion
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  ErrorResponse              "Book not found"
// @Failure      500  {object}  ErrorResponse              "Internal server error"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	deletion, err := h.svc.Delete(c.Request.Context(), bookID)
	if err != nil {
		h.writeServiceError(c, err, "failed to delete book")
		return
	}

	c.JSON(http.StatusOK, deletion)
}

func parseBookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		verr := &validation.Error{}
		verr.Add("id", "id must be a positive integer")
		validation.Abort(c, verr)
		return 0, false
	}
	return uint(id), true
}

func (h *BookHandler) writeServiceError(c *gin.Context, err error, message string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		validation.Abort(c, verr)
	case errors.Is(err, catalog.ErrNotFound):
		writeError(c, http.StatusNotFound, "book not found")
	default:
		h.logger.Error(message, zap.Error(err), zap.String("path", c.Request.URL.Path))
		writeError(c, http.StatusInternalServerError, message)
	}
}
