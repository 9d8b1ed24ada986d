package container

import "reflect"

// ServiceKey identifies a service contract. Any non-empty string works; KeyOf
// and TypeKey derive one from a Go type.
type ServiceKey string

func (k ServiceKey) String() string { return string(k) }

// KeyOf returns the package-qualified name of T. Pointer types share the key
// of their element type, so KeyOf[*Clock]() == KeyOf[Clock]().
//
//	c.Singleton(container.KeyOf[Clock](), newClock)
func KeyOf[T any]() ServiceKey {
	return typeKey(reflect.TypeFor[T]())
}

// TypeKey returns the package-qualified type name of v, useful as a stable
// key when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
func TypeKey(v any) ServiceKey {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return typeKey(t)
}

func typeKey(t reflect.Type) ServiceKey {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		// unnamed: slices, maps, func types
		return ServiceKey(t.String())
	}
	return ServiceKey(t.PkgPath() + "." + t.Name())
}
