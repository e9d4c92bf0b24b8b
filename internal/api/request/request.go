package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/desslyhub/platform/internal/core"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("origin", func(fl validator.FieldLevel) bool {
		return core.ValidateOrigin(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}

// Pagination holds offset/limit query parameters.
type Pagination struct {
	Offset int
	Limit  int
}

// ParsePagination reads offset/limit from the query string, clamped to
// sane bounds.
func ParsePagination(r *http.Request) Pagination {
	pg := Pagination{Offset: 0, Limit: 100}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			pg.Offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			pg.Limit = n
		}
	}
	return pg
}
