package handlers

import (
	"reflect"
	"strings"
	"time"

	"gym/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewValidator returns a validator that reports JSON field names and knows
// the date tags notfuture and notpast and the string tag notblank. Date tags
// apply to YYYY-MM-DD strings and compare against today's date.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	mustRegister(validate, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(validate, "notfuture", func(fl validator.FieldLevel) bool {
		d, ok := parseDateField(fl)
		return ok && !d.After(today())
	})
	mustRegister(validate, "notpast", func(fl validator.FieldLevel) bool {
		d, ok := parseDateField(fl)
		return ok && !d.Before(today())
	})
	return validate
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func parseDateField(fl validator.FieldLevel) (time.Time, bool) {
	d, err := time.Parse(time.DateOnly, fl.Field().String())
	return d, err == nil
}

func today() time.Time {
	return models.DateOnly(time.Now())
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return badBody(err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationFailed(err)
	}
	return nil
}
