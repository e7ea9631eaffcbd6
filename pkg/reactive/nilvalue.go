package reactive

import "reflect"

// IsNilValue reports whether v is a nil pointer, interface, slice,
// map, channel or function. For any other kind (numbers, strings,
// structs, arrays) it is always false: those types have no "null"
// representation, so the protocol-violation check in spec §4.3/§4.7
// (a null value from the iterator, or a null combiner result) is a
// no-op for them.
func IsNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
