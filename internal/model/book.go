package model

import (
	"time"
)

const TitleMaxLength = 255

type Book struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string    `json:"title" gorm:"type:varchar(255);not null"`
	Author          *string   `json:"author"`
	PublicationYear *int      `json:"publication_year"`
	Available       bool      `json:"available" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime;<-:create"`
}

// BookPatch lists the fields a write touches. Absent fields are left alone.
type BookPatch struct {
	Title           Opt[string]
	Author          Opt[string]
	PublicationYear Opt[int]
	Available       Opt[bool]
}

// Empty reports whether no field is present.
func (p BookPatch) Empty() bool {
	return !p.Title.Present && !p.Author.Present &&
		!p.PublicationYear.Present && !p.Available.Present
}

// Columns returns the column values of the present fields only.
func (p BookPatch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.Title.Present {
		cols["title"] = p.Title.OrZero()
	}
	if p.Author.Present {
		cols["author"] = p.Author.Value
	}
	if p.PublicationYear.Present {
		cols["publication_year"] = p.PublicationYear.Value
	}
	if p.Available.Present {
		cols["available"] = p.Available.OrZero()
	}
	return cols
}

// NewBook builds the row a create writes. Absent fields take their defaults.
func (p BookPatch) NewBook() Book {
	return Book{
		Title:           p.Title.OrZero(),
		Author:          p.Author.Value,
		PublicationYear: p.PublicationYear.Value,
		Available:       p.Available.OrZero(),
	}
}
