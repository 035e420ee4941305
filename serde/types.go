package serde

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/xerrors"
)

// KeyOf returns the name of the type of the value, qualified by its package
// path. Pointers are resolved to the type they point to.
func KeyOf(m interface{}) string {
	typ := reflect.TypeOf(m)
	if typ == nil {
		return ""
	}

	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	return fmt.Sprintf("%s.%s", typ.PkgPath(), typ.Name())
}

// TypeRegistry is a registry of polymorphic message types. Each type is bound
// to the factory that can deserialize it, and it is looked up with the name
// returned by KeyOf. It is safe for concurrent use.
type TypeRegistry struct {
	sync.RWMutex
	factories map[string]Factory
}

// NewTypeRegistry returns a new empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		factories: make(map[string]Factory),
	}
}

// Register binds the type of the example to the factory. A nil factory means
// the type is deserialized by unmarshaling the data into a new value of the
// type, which is enough for messages made of exported plain fields.
func (r *TypeRegistry) Register(example Message, f Factory) {
	if f == nil {
		f = reflectFactory{typ: reflect.TypeOf(example)}
	}

	r.Lock()
	r.factories[KeyOf(example)] = f
	r.Unlock()
}

// Get returns the factory of the type name, or nil if unknown.
func (r *TypeRegistry) Get(key string) Factory {
	r.RLock()
	defer r.RUnlock()

	return r.factories[key]
}

// Deserialize looks up the factory of the type and returns the message.
func (r *TypeRegistry) Deserialize(ctx Context, key string, data []byte) (Message, error) {
	f := r.Get(key)
	if f == nil {
		return nil, xerrors.Errorf("unknown type '%s'", key)
	}

	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("factory of '%s' failed: %v", key, err)
	}

	return msg, nil
}

// reflectFactory instantiates a value of its type and populates it using the
// context engine.
//
// - implements serde.Factory
type reflectFactory struct {
	typ reflect.Type
}

// Deserialize implements serde.Factory.
func (f reflectFactory) Deserialize(ctx Context, data []byte) (Message, error) {
	typ := f.typ
	isPtr := typ.Kind() == reflect.Ptr
	if isPtr {
		typ = typ.Elem()
	}

	value := reflect.New(typ)

	err := ctx.Unmarshal(data, value.Interface())
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	if !isPtr {
		value = value.Elem()
	}

	msg, ok := value.Interface().(Message)
	if !ok {
		return nil, xerrors.Errorf("type '%v' is not a message", f.typ)
	}

	return msg, nil
}
