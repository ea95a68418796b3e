package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/snnyvrz/bookcatalog/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

var titleRules = "notblank,max=" + strconv.Itoa(model.TitleMaxLength)

// Create checks the fields of a new book. Title is mandatory.
func Create(f Fields) (model.BookPatch, error) {
	return check(f, true)
}

// Update checks only the fields that are present.
func Update(f Fields) (model.BookPatch, error) {
	return check(f, false)
}

func check(f Fields, create bool) (model.BookPatch, error) {
	var patch model.BookPatch
	verr := &Error{}

	if raw, ok := f["title"]; ok && raw != nil {
		if s, isString := raw.(string); !isString {
			verr.Add("title", "title must be a string")
		} else {
			title := strings.TrimSpace(s)
			if err := validate.Var(title, titleRules); err != nil {
				for _, fe := range err.(validator.ValidationErrors) {
					verr.Add("title", buildMessage("title", fe))
				}
			} else {
				patch.Title = model.Some(title)
			}
		}
	} else if create {
		verr.Add("title", "title is required")
	} else if ok {
		verr.Add("title", "title must not be empty")
	}

	if raw, ok := f["author"]; ok {
		switch v := raw.(type) {
		case nil:
			patch.Author = model.Null[string]()
		case string:
			patch.Author = model.Some(v)
		default:
			verr.Add("author", "author must be a string")
		}
	}

	if raw, ok := f["publication_year"]; ok {
		if raw == nil {
			patch.PublicationYear = model.Null[int]()
		} else if year, valid := parseYear(raw); valid {
			patch.PublicationYear = model.Some(year)
		} else {
			verr.Add("publication_year", "publication_year must be a number")
		}
	}

	if raw, ok := f["available"]; ok {
		switch v := raw.(type) {
		case nil:
			patch.Available = model.Some(false)
		case bool:
			patch.Available = model.Some(v)
		default:
			verr.Add("available", "available must be a boolean")
		}
	}

	if len(verr.Problems) > 0 {
		return model.BookPatch{}, verr
	}
	return patch, nil
}

func parseYear(raw any) (int, bool) {
	switch v := raw.(type) {
	case json.Number:
		return integral(v.String())
	case string:
		return integral(strings.TrimSpace(v))
	}
	return 0, false
}

// integral accepts whole numbers, including forms like "1999.0".
func integral(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func buildMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return field + " must not be empty"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	}

	return field + " is invalid (" + fe.Tag() + ")"
}
