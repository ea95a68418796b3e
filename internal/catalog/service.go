// Package catalog is the CRUD service shared by the JSON API and the form UI.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/snnyvrz/bookcatalog/internal/model"
	"github.com/snnyvrz/bookcatalog/internal/repository"
	"github.com/snnyvrz/bookcatalog/internal/validation"
)

var (
	ErrNotFound = errors.New("book not found")

	// ErrUpstreamUnavailable is returned by remote implementations when the
	// JSON API cannot be reached.
	ErrUpstreamUnavailable = errors.New("catalog api unavailable")
)

// Service is implemented in-process by BookService and over HTTP by
// apiclient.Client. Create and Update return *validation.Error when the
// fields are rejected.
type Service interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id uint) (*model.Book, error)
	Create(ctx context.Context, fields validation.Fields) (*model.Book, error)
	Update(ctx context.Context, id uint, fields validation.Fields) (*model.Book, error)
	Delete(ctx context.Context, id uint) (Deletion, error)
}

type Deletion struct {
	ID     uint   `json:"id"`
	Detail string `json:"detail"`
}

func NewDeletion(id uint) Deletion {
	return Deletion{ID: id, Detail: fmt.Sprintf("book %d deleted", id)}
}

var _ Service = (*BookService)(nil)

type BookService struct {
	repo   repository.BookRepository
	logger *zap.Logger
}

func NewBookService(repo repository.BookRepository, logger *zap.Logger) *BookService {
	return &BookService{repo: repo, logger: logger}
}

func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list books", zap.Error(err))
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, id uint) (*model.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get book", id, err)
	}
	return book, nil
}

func (s *BookService) Create(ctx context.Context, fields validation.Fields) (*model.Book, error) {
	patch, err := validation.Create(fields)
	if err != nil {
		return nil, err
	}

	book := patch.NewBook()
	if err := s.repo.Create(ctx, &book); err != nil {
		s.logger.Error("create book", zap.Error(err))
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created", zap.Uint("id", book.ID), zap.String("title", book.Title))
	return &book, nil
}

func (s *BookService) Update(ctx context.Context, id uint, fields validation.Fields) (*model.Book, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, s.storageError("update book", id, err)
	}

	patch, err := validation.Update(fields)
	if err != nil {
		return nil, err
	}

	book, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.storageError("update book", id, err)
	}

	s.logger.Info("book updated", zap.Uint("id", id), zap.Int("fields", len(patch.Columns())))
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, id uint) (Deletion, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return Deletion{}, s.storageError("delete book", id, err)
	}

	s.logger.Info("book deleted", zap.Uint("id", id))
	return NewDeletion(id), nil
}

func (s *BookService) storageError(op string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	s.logger.Error(op, zap.Uint("id", id), zap.Error(err))
	return fmt.Errorf("%s %d: %w", op, id, err)
}
