package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TimeSlotLayout is the 12-hour label format of appointment slots, e.g. "09:15 AM"
const TimeSlotLayout = "03:04 PM"

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("timeslot", validateTimeSlot)

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			case "datetime":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "oneof":
				errors[field] = field + " must be one of " + e.Param()
			case "timeslot":
				errors[field] = field + " must be a time slot like 09:15 AM"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

// validateTimeSlot accepts labels that round-trip through TimeSlotLayout exactly
func validateTimeSlot(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	t, err := time.Parse(TimeSlotLayout, value)
	if err != nil {
		return false
	}
	return t.Format(TimeSlotLayout) == value
}
