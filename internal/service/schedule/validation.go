package schedule

import (
	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// registerValidations добавляет проверку формата времени HH:MM
func registerValidations(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return types.TimeString(fl.Field().String()).Validate() == nil
	})
	return v
}
