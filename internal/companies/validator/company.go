package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"guardpost/pkg/config"
	"guardpost/pkg/logger"
	"guardpost/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CompanyValidator struct {
	validate *validator.Validate
	cfg      *config.Config
	logger   *logger.Logger
}

func NewCompanyValidator(cfg *config.Config, log *logger.Logger) *CompanyValidator {
	v := validator.New()

	minPriority := int64(cfg.MinCompanyPriority)
	maxPriority := int64(cfg.MaxCompanyPriority)
	if err := v.RegisterValidation("company_priority", func(fl validator.FieldLevel) bool {
		priority := fl.Field().Int()
		return priority >= minPriority && priority <= maxPriority
	}); err != nil {
		log.Fatal("Failed to register 'company_priority' validator",
			"error", err,
		)
	}

	log.Info("Company validator initialized successfully")

	return &CompanyValidator{
		validate: v,
		cfg:      cfg,
		logger:   log,
	}
}

func (v *CompanyValidator) Validate(company *model.Company) error {
	if err := v.validate.Struct(company); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *CompanyValidator) ValidateUpdate(update *model.CompanyUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *CompanyValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be a valid E.164 phone number", err.Field())
		case "company_priority":
			message = fmt.Sprintf("%s must be between %d and %d", err.Field(), v.cfg.MinCompanyPriority, v.cfg.MaxCompanyPriority)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
