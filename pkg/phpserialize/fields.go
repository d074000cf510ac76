package phpserialize

import (
	"reflect"
	"strings"
	"sync"
)

// structField describes one encodable/decodable struct field.
type structField struct {
	name      string
	index     int
	omitEmpty bool
}

// structFields is the parsed field set of a struct type.
type structFields struct {
	list   []structField
	byName map[string]*structField
}

// fieldCache avoids re-parsing struct tags on every call.
var fieldCache sync.Map // reflect.Type → *structFields

func cachedFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	f, _ := fieldCache.LoadOrStore(t, parseFields(t))
	return f.(*structFields)
}

// parseFields reads `php:"name,omitempty"` tags. A tag of "-" excludes
// the field; unexported fields are always excluded.
func parseFields(t reflect.Type) *structFields {
	fs := &structFields{byName: make(map[string]*structField, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		omitEmpty := false
		if tag, ok := sf.Tag.Lookup("php"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" && len(parts) == 1 {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}
		fs.list = append(fs.list, structField{name: name, index: i, omitEmpty: omitEmpty})
	}
	for i := range fs.list {
		fs.byName[fs.list[i].name] = &fs.list[i]
	}
	return fs
}

// isEmptyValue reports whether v is dropped by omitempty: empty
// containers, zero scalars, nil pointers and interfaces.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v.IsZero()
	}
	return false
}
