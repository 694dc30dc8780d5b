package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the seat_class and flight_status tags to gin's
// validator and makes errors report JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("seat_class", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseSeatClass(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("flight_status", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseFlightStatus(fl.Field().String())
			return err == nil
		})
	})
}

func jsonFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}
