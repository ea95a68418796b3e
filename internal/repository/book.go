package repository

import (
	"context"

	"github.com/snnyvrz/bookcatalog/internal/model"
	"gorm.io/gorm"
)

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Update(ctx context.Context, id uint, patch model.BookPatch) (*model.Book, error)
	Delete(ctx context.Context, id uint) error
}

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// session runs fn in one transaction: committed when fn returns nil,
// rolled back otherwise, released in both cases.
func (r *GormBookRepository) session(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *GormBookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.session(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(book).Error; err != nil {
			return err
		}
		return tx.First(book, book.ID).Error
	})
}

func (r *GormBookRepository) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	err := r.session(ctx, func(tx *gorm.DB) error {
		return tx.First(&book, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *GormBookRepository) List(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	err := r.session(ctx, func(tx *gorm.DB) error {
		return tx.Order("id ASC").Find(&books).Error
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *GormBookRepository) Update(ctx context.Context, id uint, patch model.BookPatch) (*model.Book, error) {
	var book model.Book
	err := r.session(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}

		if err := tx.Model(&model.Book{}).
			Where("id = ?", id).
			Updates(patch.Columns()).Error; err != nil {

			return err
		}
		return tx.First(&book, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *GormBookRepository) Delete(ctx context.Context, id uint) error {
	return r.session(ctx, func(tx *gorm.DB) error {
		result := tx.Delete(&model.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
