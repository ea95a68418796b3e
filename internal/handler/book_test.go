package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/model"
	"github.com/snnyvrz/bookcatalog/internal/testutil"
	"github.com/snnyvrz/bookcatalog/internal/validation"
)

type fakeService struct {
	catalog.Service
	ListFn func(ctx context.Context) ([]model.Book, error)
}

func (f *fakeService) List(ctx context.Context) ([]model.Book, error) {
	return f.ListFn(ctx)
}

// The catalog walkthrough with titulo/disponivel spelled title/available.
func TestBookLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, http.MethodPost, "/books", map[string]any{"title": "Dune"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, created["id"])
	assert.Equal(t, "Dune", created["title"])
	assert.Equal(t, false, created["available"])
	assert.NotNil(t, created["created_at"])
	assert.Nil(t, created["author"])
	assert.Nil(t, created["publication_year"])

	w = doJSON(t, router, http.MethodPost, "/books", map[string]any{"title": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	verr := decode[validation.ErrorResponse](t, w)
	assert.Equal(t, []string{"title"}, verr.Fields)
	assert.Equal(t, []string{"title: title must not be empty"}, verr.Detail)

	w = doJSON(t, router, http.MethodPut, "/books/1", map[string]any{"available": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Book](t, w)
	assert.Equal(t, "Dune", updated.Title)
	assert.True(t, updated.Available)

	w = doJSON(t, router, http.MethodDelete, "/books/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	deletion := decode[catalog.Deletion](t, w)
	assert.Equal(t, uint(1), deletion.ID)
	assert.Equal(t, "book 1 deleted", deletion.Detail)

	w = doJSON(t, router, http.MethodGet, "/books/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "book not found", decode[ErrorResponse](t, w).Detail)
}

func TestCreateBook_AllFields(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, http.MethodPost, "/books", map[string]any{
		"title":            "Dune",
		"author":           "Frank Herbert",
		"publication_year": 1965,
		"available":        true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	book := decode[model.Book](t, w)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Frank Herbert", *book.Author)
	require.NotNil(t, book.PublicationYear)
	assert.Equal(t, 1965, *book.PublicationYear)
	assert.True(t, book.Available)
	assert.False(t, book.CreatedAt.IsZero())
}

func TestCreateBook_ValidationReportsEveryField(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, http.MethodPost, "/books", map[string]any{
		"publication_year": "next year",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[validation.ErrorResponse](t, w)
	assert.Equal(t, []string{"title", "publication_year"}, resp.Fields)
	assert.Len(t, resp.Detail, 2)

	var count int64
	require.NoError(t, db.Model(&model.Book{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBook_MalformedJSON(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, http.MethodPost, "/books", `{"title":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"body"}, decode[validation.ErrorResponse](t, w).Fields)
}

func TestCreateBook_TrailingDataAfterObject(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, http.MethodPost, "/books", `{"title":"x"} trailing`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, []string{"body"}, decode[validation.ErrorResponse](t, w).Fields)

	var count int64
	require.NoError(t, db.Model(&model.Book{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetBookByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	seeded := testutil.SeedBook(t, db, "Emma")

	w := doJSON(t, router, http.MethodGet, "/books/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	book := decode[model.Book](t, w)
	assert.Equal(t, seeded.ID, book.ID)
	assert.Equal(t, "Emma", book.Title)
}

func TestBookByID_InvalidID(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	for _, path := range []string{"/books/abc", "/books/0", "/books/-1"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := doJSON(t, router, method, path, map[string]any{})
			require.Equal(t, http.StatusBadRequest, w.Code, method+" "+path)
			resp := decode[validation.ErrorResponse](t, w)
			assert.Equal(t, []string{"id"}, resp.Fields, method+" "+path)
			assert.Equal(t, []string{"id: id must be a positive integer"}, resp.Detail, method+" "+path)
		}
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, http.MethodPut, "/books/42", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBook_InvalidField(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)
	testutil.SeedBook(t, db, "Dune")

	w := doJSON(t, router, http.MethodPut, "/books/1", map[string]any{"publication_year": "MCMLXV"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"publication_year"}, decode[validation.ErrorResponse](t, w).Fields)
}

func TestDeleteBook_NotFound(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, http.MethodDelete, "/books/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBooks_OrderedAndCounted(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	for _, title := range []string{"a", "b", "c"} {
		w := doJSON(t, router, http.MethodPost, "/books", map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doJSON(t, router, http.MethodDelete, "/books/2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, w.Code)

	books := decode[[]model.Book](t, w)
	require.Len(t, books, 2)
	assert.Equal(t, uint(1), books[0].ID)
	assert.Equal(t, uint(3), books[1].ID)
}

func TestListBooks_EmptyIsArray(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListBooks_StorageFailure(t *testing.T) {
	router := setupBookRouterWithService(&fakeService{
		ListFn: func(ctx context.Context) ([]model.Book, error) {
			return nil, errors.New("connection reset")
		},
	})

	w := doJSON(t, router, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to fetch books", decode[ErrorResponse](t, w).Detail)
}
