package validation

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Fields holds candidate field values keyed by their JSON name.
// Numbers decoded from a request body are kept as json.Number.
type Fields map[string]any

type FieldError struct {
	Field   string
	Message string
}

// Error collects every invalid or missing field of one request.
type Error struct {
	Problems []FieldError
}

type ErrorResponse struct {
	Detail []string `json:"detail"`
	Fields []string `json:"fields"`
}

func (e *Error) Add(field, message string) {
	e.Problems = append(e.Problems, FieldError{Field: field, Message: message})
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	return msgs
}

func (e *Error) Fields() []string {
	fields := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		fields = append(fields, p.Field)
	}
	return fields
}

func (e *Error) Response() ErrorResponse {
	detail := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		detail = append(detail, p.Field+": "+p.Message)
	}
	return ErrorResponse{Detail: detail, Fields: e.Fields()}
}

// FromResponse rebuilds an Error from its wire form.
func FromResponse(r ErrorResponse) *Error {
	e := &Error{}
	for i, d := range r.Detail {
		field := ""
		if i < len(r.Fields) {
			field = r.Fields[i]
		}
		e.Add(field, strings.TrimPrefix(d, field+": "))
	}
	return e
}

// DecodeJSON decodes a request body that must be a single JSON object.
func DecodeJSON(body []byte) (Fields, error) {
	r := bytes.NewReader(body)
	dec := codec.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, single("body", "body must be valid JSON")
	}

	// Only whitespace may follow the object.
	rest, err := io.ReadAll(io.MultiReader(dec.Buffered(), r))
	if err != nil || len(bytes.TrimSpace(rest)) > 0 {
		return nil, single("body", "body must be valid JSON")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, single("body", "body must be a JSON object")
	}
	return Fields(obj), nil
}

// BindJSON reads the request body into Fields, aborting with 400 when it
// is not a JSON object.
func BindJSON(c *gin.Context) (Fields, bool) {
	body, err := c.GetRawData()
	if err != nil {
		Abort(c, single("body", "body could not be read"))
		return nil, false
	}

	fields, err := DecodeJSON(body)
	if err != nil {
		Abort(c, err.(*Error))
		return nil, false
	}
	return fields, true
}

func Abort(c *gin.Context, e *Error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, e.Response())
}

func single(field, message string) *Error {
	e := &Error{}
	e.Add(field, message)
	return e
}
