package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// bindToStruct binds values to a struct using reflection.
// tagName specifies which struct tag to use (e.g., "query", "form").
// Fields without a matching value keep their current value.
func bindToStruct(v any, tagName string, values map[string][]string, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", bindErr)
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", bindErr)
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		paramName, skip := parseFieldTag(fieldType, tagName)
		if skip {
			continue
		}

		fieldValues, exists := values[paramName]
		if !exists || len(fieldValues) == 0 {
			continue
		}

		if err := setFieldValue(field, fieldType.Type, fieldValues); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, fieldType.Name, err)
		}
	}

	return nil
}

// parseFieldTag extracts the parameter name from struct tags and determines if the field should be skipped.
// If no tag is present, it defaults to the lowercase field name.
func parseFieldTag(field reflect.StructField, tagName string) (paramName string, skip bool) {
	tag := field.Tag.Get(tagName)
	switch tag {
	case "":
		return strings.ToLower(field.Name), false
	case "-":
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

// setFieldValue sets a scalar, pointer or slice field from string values.
func setFieldValue(field reflect.Value, fieldType reflect.Type, values []string) error {
	if fieldType.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(fieldType.Elem()))
		}
		return setFieldValue(field.Elem(), fieldType.Elem(), values)
	}

	if fieldType.Kind() == reflect.Slice {
		slice := reflect.MakeSlice(fieldType, len(values), len(values))
		for i, value := range values {
			if err := setFieldValue(slice.Index(i), fieldType.Elem(), []string{value}); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	// Scalars take the first value
	value := values[0]

	switch fieldType.Kind() {
	case reflect.String:
		field.SetString(sanitizeStringValue(value))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, fieldType.Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q", value)
		}
		field.SetInt(n)

	case reflect.Bool:
		switch strings.ToLower(value) {
		case "1", "true", "on", "yes":
			field.SetBool(true)
		case "0", "false", "off", "no", "":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid bool value %q", value)
		}

	default:
		return fmt.Errorf("unsupported type %s", fieldType.Kind())
	}

	return nil
}

// sanitizeStringValue drops NUL bytes, line breaks and other control characters.
func sanitizeStringValue(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, value)
}
