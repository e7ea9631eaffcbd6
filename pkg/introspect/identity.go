package introspect

import (
	"fmt"
	"reflect"
)

// name returns o's display name: its declared Introspectable name if
// it has one, otherwise its dynamic Go type name.
func name(o any) string {
	if o == nil {
		return ""
	}
	if i, ok := o.(Introspectable); ok {
		if n := i.Name(); n != "" {
			return n
		}
	}
	t := reflect.TypeOf(o)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}

// identify returns o's stable graph identifier: its declared
// Identifiable id if it has one, otherwise a name-and-pointer default
// analogous to a Java hashcode-derived identity.
func identify(o any) string {
	if i, ok := o.(Identifiable); ok {
		if id := i.IntrospectID(); id != "" {
			return id
		}
	}
	return fmt.Sprintf("%s@%p", name(o), o)
}
