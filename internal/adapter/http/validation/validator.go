package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"doitnow/internal/core/domain"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

// messages overrides the generic translations for the request fields the
// API exposes. Keys are "<json field>.<tag>".
var messages = map[string]string{
	"entityId.required": "Entity ID is required",
	"title.notblank":    "Title is required",
	"title.max":         "Title must not exceed 255 characters",
	"priority.oneof":    "Priority must be low, medium, or high",
	"assignedTo.max":    "Assigned to must not exceed 255 characters",
	"userId.gt":         "User ID must be a positive number",
	"username.notblank": "Username is required",
	"username.max":      "Username must not exceed 50 characters",
	"email.required":    "Email is required",
	"email.email":       "Email should be valid",
	"email.max":         "Email must not exceed 255 characters",
}

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())
	Validator.RegisterTagNameFunc(jsonFieldName)

	if err := Validator.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validator.RegisterTranslation("notblank", Translator, func(ut ut.Translator) error {
		return ut.Add("notblank", "{0} must not be blank", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notblank", fe.Field())
		return t
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

// Validate checks a request struct against its validate tags. Failing rules
// come back as a *domain.ValidationError.
func Validate(value any) error {
	err := Validator.Struct(value)
	if err == nil {
		return nil
	}

	if fields := formatValidationErrors(err); len(fields) > 0 {
		return domain.NewValidationError(fields)
	}

	return err
}

// formatValidationErrors turns validator errors into one message per field.
// The first failing rule of a field wins.
func formatValidationErrors(err error) map[string]string {
	fields := map[string]string{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fields
	}

	for _, fieldError := range validationErrors {
		if _, exists := fields[fieldError.Field()]; exists {
			continue
		}

		fields[fieldError.Field()] = message(fieldError)
	}

	return fields
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	return fe.Translate(Translator)
}
