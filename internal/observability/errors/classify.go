// Package errors turns Go errors into low-cardinality class names for
// metric tags.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/hiremetrics/hirestats/internal/errors"
)

// Classify maps err to a stable tag value. AppErrors classify by their code;
// for everything else the innermost cause's concrete type name is lowered to
// an underscore form.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return string(appErr.Code)
	}

	// The innermost error carries the most specific type.
	for {
		cause := goerrors.Unwrap(err)
		if cause == nil {
			return typeName(err)
		}
		err = cause
	}
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.NewReplacer("*", "", ".", "_").Replace(t.String())
	if name = strings.ToLower(name); name == "" {
		return "unknown"
	}
	return name
}
