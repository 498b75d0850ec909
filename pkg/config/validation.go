package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected configuration field.
type ValidationError struct {
	Field   string
	Tag     string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed validation", e.Field)
}

// ValidationErrors collects every rejected field so a caller can report all
// of them at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var validate = validator.New()

// Validate checks settings against their struct tags plus the cross-field
// rules the tags cannot express.
func Validate(settings *Settings) error {
	if settings == nil {
		return ValidationErrors{{
			Field:   "settings",
			Tag:     "required",
			Message: "settings is nil",
		}}
	}

	var errs ValidationErrors

	if err := validate.Struct(settings); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				errs = append(errs, ValidationError{
					Field:   fe.Field(),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: validationMessage(fe),
				})
			}
		} else {
			errs = append(errs, ValidationError{Message: err.Error()})
		}
	}

	errs = append(errs, customRules(settings)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// customRules holds the checks that span multiple fields.
func customRules(settings *Settings) ValidationErrors {
	var errs ValidationErrors

	if settings.Engine.TournamentSize > settings.Engine.PopulationSize &&
		settings.Engine.PopulationSize > 0 {
		errs = append(errs, ValidationError{
			Field:   "TournamentSize",
			Tag:     "ltefield",
			Value:   settings.Engine.TournamentSize,
			Message: "tournament_size cannot exceed population_size",
		})
	}

	if settings.Engine.ElitismRate >= 1 {
		errs = append(errs, ValidationError{
			Field:   "ElitismRate",
			Tag:     "lt",
			Value:   settings.Engine.ElitismRate,
			Message: "elitism_rate must leave room for offspring",
		})
	}

	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
