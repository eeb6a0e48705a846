package validation

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register installs custom binding validations on gin's validator engine.
// Call once at startup, before any request binding runs.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("futuredate", futureDate)
}

// futureDate accepts time.Time values strictly after the current instant.
func futureDate(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return value.After(time.Now())
}
