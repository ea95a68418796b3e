package handler

// CreateBookRequest documents the POST /books body.
type CreateBookRequest struct {
	Title           string  `json:"title" example:"Dune"`
	Author          *string `json:"author" example:"Frank Herbert"`
	PublicationYear *int    `json:"publication_year" example:"1965"`
	Available       *bool   `json:"available" example:"false"`
}

// UpdateBookRequest documents the PUT /books/{id} body. Omitted fields keep
// their stored value; null clears author and publication_year.
type UpdateBookRequest struct {
	Title           *string `json:"title" example:"Dune Messiah"`
	Author          *string `json:"author" example:"Frank Herbert"`
	PublicationYear *int    `json:"publication_year" example:"1969"`
	Available       *bool   `json:"available" example:"true"`
}
