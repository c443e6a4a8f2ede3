package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so messages match what the backend would say
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field failures for one form
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// CourseInput is the payload for creating a course
type CourseInput struct {
	Title        string           `json:"title" validate:"required,min=3,max=200"`
	Description  string           `json:"description" validate:"required,min=10"`
	PriceUSD     *decimal.Decimal `json:"price_usd,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Category     string           `json:"category,omitempty"`
	Level        string           `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags         []string         `json:"tags,omitempty"`
	IsPublished  bool             `json:"is_published"`
}

// Validate checks the input against the backend course rules
func (in *CourseInput) Validate() error {
	return check(in, in.PriceUSD)
}

// CourseUpdate is a partial course change; nil fields are left untouched
type CourseUpdate struct {
	Title        *string          `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,min=10"`
	PriceUSD     *decimal.Decimal `json:"price_usd,omitempty"`
	ThumbnailURL *string          `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Category     *string          `json:"category,omitempty"`
	Level        *string          `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags         []string         `json:"tags,omitempty"`
	IsPublished  *bool            `json:"is_published,omitempty"`
}

// Validate checks the set fields against the backend course rules
func (in *CourseUpdate) Validate() error {
	return check(in, in.PriceUSD)
}

// LessonInput is the payload for creating a lesson
type LessonInput struct {
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	Description     string   `json:"description,omitempty"`
	VideoURL        string   `json:"video_url,omitempty"`
	Content         string   `json:"content,omitempty"`
	Order           *int     `json:"order,omitempty" validate:"omitempty,min=0"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	IsFree          bool     `json:"is_free"`
}

// Validate checks the input against the backend lesson rules
func (in *LessonInput) Validate() error {
	return check(in, nil)
}

// LessonUpdate is a partial lesson change
type LessonUpdate struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description     *string  `json:"description,omitempty"`
	VideoURL        *string  `json:"video_url,omitempty"`
	Content         *string  `json:"content,omitempty"`
	Order           *int     `json:"order,omitempty" validate:"omitempty,min=0"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	IsFree          *bool    `json:"is_free,omitempty"`
}

// Validate checks the set fields against the backend lesson rules
func (in *LessonUpdate) Validate() error {
	return check(in, nil)
}

// ProfileUpdate is a partial profile change
type ProfileUpdate struct {
	DisplayName *string      `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string      `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL   *string      `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Email       *string      `json:"email,omitempty" validate:"omitempty,email"`
	SocialLinks *SocialLinks `json:"social_links,omitempty"`
}

// Validate checks the set profile fields
func (in *ProfileUpdate) Validate() error {
	return check(in, nil)
}

func check(in any, price *decimal.Decimal) error {
	var fields []FieldError

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: describe(fe)})
		}
	}

	if price != nil && price.IsNegative() {
		fields = append(fields, FieldError{Field: "price_usd", Message: "must not be negative"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must not be less than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
