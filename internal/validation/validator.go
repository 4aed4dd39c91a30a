package validation

import (
	"reflect"
	"strings"

	"meatmarket-api/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("meat_category", validateMeatCategory)
	_ = v.RegisterValidation("cut_type", validateCutType)
	_ = v.RegisterValidation("variation_source", validateVariationSource)
	_ = v.RegisterValidation("confidence_score", validateConfidenceScore)
	_ = v.RegisterValidation("entity_id", validateEntityID)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateMeatCategory validates that a category is one of the taxonomy categories
func validateMeatCategory(fl validator.FieldLevel) bool {
	category := strings.ToLower(fl.Field().String())
	return models.IsValidCategory(category)
}

// validateCutType validates that a cut type is one of the allowed types
func validateCutType(fl validator.FieldLevel) bool {
	cutType := strings.ToLower(fl.Field().String())
	return models.IsValidCutType(cutType)
}

// validateVariationSource validates that a source is one of the allowed sources
func validateVariationSource(fl validator.FieldLevel) bool {
	source := strings.ToLower(fl.Field().String())
	return models.IsValidSource(source)
}

// validateConfidenceScore validates that a confidence value lies in [0, 1]
func validateConfidenceScore(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		score := fl.Field().Float()
		return score >= 0.0 && score <= 1.0
	default:
		return false
	}
}

// validateEntityID validates that an ID string is a valid UUID
func validateEntityID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return false
	}

	_, err := uuid.Parse(id)
	return err == nil
}
