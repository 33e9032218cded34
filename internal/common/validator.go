package common

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

var (
	sharedOnce sync.Once
	shared     *validator.Validate

	enumsMu sync.RWMutex
	enums   = map[string][]string{}
)

// RegisterEnum makes values available to the `in=<name>` struct tag.
func RegisterEnum(name string, values ...string) {
	enumsMu.Lock()
	defer enumsMu.Unlock()
	enums[name] = append([]string(nil), values...)
}

// Validator returns the process-wide validator. Field errors are reported by form tag name.
func Validator() *validator.Validate {
	sharedOnce.Do(func() {
		shared = validator.New()
		shared.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = shared.RegisterValidation("in", isInEnum)
	})
	return shared
}

func isInEnum(fl validator.FieldLevel) bool {
	enumsMu.RLock()
	defer enumsMu.RUnlock()

	value := fl.Field().String()
	for _, allowed := range enums[fl.Param()] {
		if value == allowed {
			return true
		}
	}
	return false
}

type GenericEchoValidator struct {
	Validator *validator.Validate
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	if gv.Validator == nil {
		gv.Validator = Validator()
	}
	if err := gv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}
