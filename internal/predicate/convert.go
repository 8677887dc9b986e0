package predicate

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/roach88/fql/internal/ir"
)

var timeType = reflect.TypeOf(time.Time{})

// normalize converts a Go value into the shapes the CEL runtime adapts
// natively: nil, bool, int64, uint64, float64, string, []byte, time.Time,
// []any and map[string]any. Structs become maps keyed by field name.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case ir.IRDate:
		return val.Time()
	case ir.IRValue:
		return normalize(ir.ToGo(val))
	case time.Time:
		return val
	case []byte:
		return val
	}
	return normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= 1<<63-1 {
			return int64(u)
		}
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes()
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			if rv.CanInterface() {
				return rv.Interface()
			}
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalizeValue(iter.Value())
		}
		return out
	case reflect.Struct:
		if rv.Type() == timeType {
			return rv.Interface()
		}
		if rv.CanInterface() {
			if v, ok := rv.Interface().(ir.IRValue); ok {
				return normalize(v)
			}
		}
		out := make(map[string]any, rv.NumField())
		structFields(rv, out)
		return out
	default:
		if rv.CanInterface() {
			return rv.Interface()
		}
		return nil
	}
}

// structFields copies the exported fields of rv into out. Embedded structs
// without a tag are flattened; an outer field wins over an embedded one.
func structFields(rv reflect.Value, out map[string]any) {
	t := rv.Type()
	var embedded []reflect.Value
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup("fql")
		if tag == "-" {
			continue
		}
		if f.Anonymous && !hasTag {
			fv := rv.Field(i)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				embedded = append(embedded, fv)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		name := tag
		if name == "" {
			name = snakeCase(f.Name)
		}
		out[name] = normalizeValue(rv.Field(i))
	}

	for _, fv := range embedded {
		inner := make(map[string]any, fv.NumField())
		structFields(fv, inner)
		for k, v := range inner {
			if _, taken := out[k]; !taken {
				out[k] = v
			}
		}
	}
}

// snakeCase maps Go field names to attribute names: PostalCode becomes
// postal_code and HTTPStatus becomes http_status.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
