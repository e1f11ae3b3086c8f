package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joescharf/hotelops/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match what API clients sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return models.Priority(fl.Field().String()).Valid()
	})
	return v
}

// CreateInput carries the caller-supplied fields for a new request.
type CreateInput struct {
	RoomNumber  string `json:"roomNumber" validate:"required"`
	Category    string `json:"category" validate:"required,category"`
	Priority    string `json:"priority" validate:"required,priority"`
	Description string `json:"description" validate:"required"`
	CreatedBy   string `json:"createdBy"`
	Notes       string `json:"notes"`
}

// Normalize trims every field and lowercases the enum values.
func (in *CreateInput) Normalize() {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.Category = string(models.ParseCategory(in.Category))
	in.Priority = string(models.ParsePriority(in.Priority))
	in.Description = strings.TrimSpace(in.Description)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	in.Notes = strings.TrimSpace(in.Notes)
}

// Validate normalizes the input and returns the first problem as a *ValidationError.
func (in *CreateInput) Validate() error {
	in.Normalize()

	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Message: "is required"}
	case "category":
		return &ValidationError{Field: fe.Field(), Message: "must be one of: " + strings.Join(models.CategoryNames(), ", ")}
	case "priority":
		return &ValidationError{Field: fe.Field(), Message: "must be one of: " + strings.Join(models.PriorityNames(), ", ")}
	default:
		return &ValidationError{Field: fe.Field(), Message: "is invalid"}
	}
}
