// Package schema validates API request bodies and turns them into
// candidate records and update patches for the record service.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fintrack/internal/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError carries every FieldError of a rejected request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// RecordInput is the JSON body accepted for both create and update.
// Amount is a pointer so a missing amount is told apart from 0.
type RecordInput struct {
	Description string     `json:"description" validate:"required,notblank,max=200"`
	Amount      *float64   `json:"amount" validate:"required,finite"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
	DateCreated *time.Time `json:"date_created,omitempty"`
}

// Validate returns nil or a *ValidationError listing every problem.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Type:    fe.Tag(),
		})
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "notblank":
		return "Value must not be blank"
	case "max":
		return "Value is too long (max " + fe.Param() + ")"
	case "finite":
		return "Value must be a finite number"
	default:
		return "Invalid value"
	}
}

// Candidate builds the record to create. The store fills the category
// fallback and the creation time when they are absent.
func (in RecordInput) Candidate(kind core.Kind) core.Record {
	r := core.Record{
		Kind:        kind,
		Description: strings.TrimSpace(in.Description),
	}
	if in.Amount != nil {
		r.Amount = *in.Amount
	}
	if in.Category != nil {
		r.Category = strings.TrimSpace(*in.Category)
	}
	if in.DateCreated != nil {
		r.DateCreated = in.DateCreated.UTC()
	}
	return r
}

// Patch builds the update payload. A category that is absent (or null) in
// the body stays nil so the stored value is kept. DateCreated is ignored.
func (in RecordInput) Patch() core.RecordPatch {
	p := core.RecordPatch{
		Description: strings.TrimSpace(in.Description),
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		p.Category = &c
	}
	return p
}
