package moodle

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// encodeParams flattens a nested parameter structure into Moodle's bracket
// notation and adds the resulting pairs to out. The recursion rule:
//
//   - a mapping key k at path p emits path p[k] (bare k at the top level)
//   - a sequence index i at path p emits path p[i]
//   - a scalar terminates the recursion as key=value
//
// Empty mappings and sequences contribute no keys. Sequence order is
// preserved in the index; mapping keys are visited in sorted order so the
// encoding is deterministic.
func encodeParams(params any, out url.Values) error {
	return flatten("", params, out)
}

func flatten(prefix string, value any, out url.Values) error {
	if value == nil {
		return setScalar(prefix, "", out)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("moodle: encode params: map key type %s is not a string", rv.Type().Key())
		}

		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		for _, k := range keys {
			next := k
			if prefix != "" {
				next = prefix + "[" + k + "]"
			}
			inner := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()
			if err := flatten(next, inner, out); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			next := prefix + "[" + strconv.Itoa(i) + "]"
			if err := flatten(next, rv.Index(i).Interface(), out); err != nil {
				return err
			}
		}
		return nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return setScalar(prefix, "", out)
		}
		return flatten(prefix, rv.Elem().Interface(), out)

	case reflect.String:
		return setScalar(prefix, rv.String(), out)

	case reflect.Bool:
		return setScalar(prefix, strconv.FormatBool(rv.Bool()), out)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setScalar(prefix, strconv.FormatInt(rv.Int(), 10), out)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setScalar(prefix, strconv.FormatUint(rv.Uint(), 10), out)

	case reflect.Float32, reflect.Float64:
		return setScalar(prefix, strconv.FormatFloat(rv.Float(), 'g', -1, 64), out)

	default:
		return fmt.Errorf("moodle: encode params: unsupported parameter type %T at %q", value, prefix)
	}
}

func setScalar(key, value string, out url.Values) error {
	if key == "" {
		return fmt.Errorf("moodle: encode params: cannot encode a scalar without a parameter name")
	}
	out.Set(key, value)
	return nil
}
