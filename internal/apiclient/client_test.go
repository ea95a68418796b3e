package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/handler"
	"github.com/snnyvrz/bookcatalog/internal/repository"
	"github.com/snnyvrz/bookcatalog/internal/testutil"
	"github.com/snnyvrz/bookcatalog/internal/validation"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	svc := catalog.NewBookService(repository.NewGormBookRepository(testutil.NewTestDB(t)), zap.NewNop())
	handler.NewBookHandler(svc, zap.NewNop()).RegisterRoutes(r.Group(""))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTripsThroughAPI(t *testing.T) {
	srv := newTestServer(t)
	client := New(srv.URL, 2*time.Second)
	ctx := context.Background()

	books, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	created, err := client.Create(ctx, validation.Fields{"title": "Dune", "publication_year": 1965})
	require.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)
	assert.Equal(t, 1965, *created.PublicationYear)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := client.Update(ctx, created.ID, validation.Fields{"available": true})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.True(t, updated.Available)

	got, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)

	deletion, err := client.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "book 1 deleted", deletion.Detail)

	_, err = client.Get(ctx, created.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestClient_ValidationErrorIsRebuilt(t *testing.T) {
	client := New(newTestServer(t).URL, 2*time.Second)

	_, err := client.Create(context.Background(), validation.Fields{"title": " ", "publication_year": "x"})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []string{"title", "publication_year"}, verr.Fields())
	assert.Equal(t, []string{"title must not be empty", "publication_year must be a number"}, verr.Messages())
}

func TestClient_UnreachableIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, time.Second)

	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUpstreamUnavailable)
}

func TestClient_ServerErrorIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, time.Second).List(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUpstreamUnavailable)
	assert.ErrorContains(t, err, "status 500")
}
