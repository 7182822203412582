package goatflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every decode and request check. Validators are safe
// for concurrent use and cache struct metadata, so one instance serves the
// whole package.
var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeStrict decodes a 2xx response body into v and enforces the record
// contract: unknown fields are rejected, required fields must be present, and
// a record is never partially built. v must be a pointer.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("server returned malformed data: %v", err),
			cause:   err,
		}
	}

	return checkRecord(v)
}

// checkRecord runs the validator over a decoded struct or slice of structs.
func checkRecord(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if err := validate.Struct(rv.Interface()); err != nil {
			return validationError("response", err)
		}
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := validate.Struct(elem.Interface()); err != nil {
				return validationError("response", err)
			}
		}
	}
	return nil
}

// checkRequest validates a request record client-side before it is encoded.
// Violations surface without any network call.
func checkRequest(v any) error {
	if err := validate.Struct(v); err != nil {
		return validationError("request", err)
	}
	return nil
}

func validationError(subject string, err error) *Error {
	e := &Error{
		Kind:  KindValidation,
		cause: err,
	}

	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			e.Fields = append(e.Fields, fe.Namespace())
		}
		e.Message = fmt.Sprintf("%s failed validation on %d field(s)", subject, len(verrs))
		return e
	}

	e.Message = fmt.Sprintf("%s failed validation: %v", subject, err)
	return e
}
