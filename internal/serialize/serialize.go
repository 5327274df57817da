// Package serialize converts typed resource properties to CloudFormation property maps
// and derives logical IDs from logical names.
package serialize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Resource converts a property struct to a CloudFormation property map. Keys are
// the json tag names. Zero fields are omitted, so optional scalars that must be
// emitted as false or 0 are pointers. Intrinsics are emitted through their
// MarshalJSON.
func Resource(v any) (map[string]any, error) {
	val := reflect.Indirect(reflect.ValueOf(v))
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("serialize: %T is not a struct", v)
	}
	return structValue(val)
}

func structValue(val reflect.Value) (map[string]any, error) {
	typ := val.Type()
	result := make(map[string]any)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if !field.IsExported() || name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		fv := val.Field(i)
		if fv.IsZero() || (fv.Kind() == reflect.Slice && fv.Len() == 0) {
			continue
		}
		out, err := value(fv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if out != nil {
			result[name] = out
		}
	}
	return result, nil
}

func value(v reflect.Value) (any, error) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return value(v.Elem())
	}

	if m, ok := v.Interface().(json.Marshaler); ok {
		data, err := m.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var out any
		err = json.Unmarshal(data, &out)
		return out, err
	}

	switch v.Kind() {
	case reflect.Struct:
		return structValue(v)
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := range out {
			elem, err := value(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int64:
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("unsupported property type %s", v.Type())
	}
}

// ToPascalCase converts a snake_case or kebab-case name to PascalCase.
// Separators are '_', '-', '.', '/' and spaces; other non-alphanumeric runes are dropped.
// e.g., "ecs-stack-public-rtb" -> "EcsStackPublicRtb"
func ToPascalCase(s string) string {
	var result strings.Builder
	capitalizeNext := true

	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.' || r == '/' || unicode.IsSpace(r):
			capitalizeNext = true
			continue
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			continue
		}
		if capitalizeNext {
			result.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// ToSnakeCase converts PascalCase to snake_case.
// e.g., "RouteTables" -> "route_tables"
func ToSnakeCase(s string) string {
	var result strings.Builder

	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
