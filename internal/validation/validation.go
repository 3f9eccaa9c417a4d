// Package validation extends gin's validator engine with the tags used by
// the request DTOs and converts validation failures into response details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/survey-api/internal/dto"
)

var registerOnce sync.Once
var registerErr error

// Register installs the custom tags on gin's validator. Safe to call repeatedly.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = Configure(v)
	})
	return registerErr
}

// Configure adds the custom tags, the dto.Date type and json field naming to v.
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if date, ok := field.Interface().(dto.Date); ok {
			return date.Time
		}
		return nil
	}, dto.Date{})

	if err := v.RegisterValidation("pastdate", pastDate); err != nil {
		return fmt.Errorf("register pastdate: %w", err)
	}
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	return nil
}

// pastDate accepts dates strictly before today.
func pastDate(fl validator.FieldLevel) bool {
	var t time.Time
	switch value := fl.Field().Interface().(type) {
	case time.Time:
		t = value
	case dto.Date:
		t = value.Time
	default:
		return false
	}
	return !t.IsZero() && t.Before(time.Now().UTC().Truncate(24*time.Hour))
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Details maps each invalid field onto the tag it failed. ok is false when err
// is not a validation failure (for example malformed JSON).
func Details(err error) (details map[string]string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	details = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe)] = fe.Tag()
	}
	return details, true
}

// fieldPath drops the top-level struct name from the namespace: "attrs[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
