package helpers

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground validator with engine-specific rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a new validator with engine rules
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("event_category", validateEventCategory)
	v.RegisterValidation("bias_label", validateBiasLabel)
	v.RegisterValidation("http_url", validateHTTPURL)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validateEventCategory validates the fixed topic tag set
func validateEventCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "politics", "world", "business", "technology", "science", "health", "sports", "culture":
		return true
	}
	return false
}

// validateBiasLabel validates the bias label enum
func validateBiasLabel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "neutral", "left-leaning", "right-leaning", "left", "right",
		"state-controlled", "conspiracy", "sensational", "unknown":
		return true
	}
	return false
}

// validateHTTPURL validates that the field is an absolute http(s) URL
func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
