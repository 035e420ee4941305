package serde

import "golang.org/x/xerrors"

// ContextEngine encodes the messages of a format. Transactions are signed over
// the bytes it produces, so an engine must be deterministic.
type ContextEngine interface {
	// GetFormat returns the name of the format of the engine.
	GetFormat() Format

	// Marshal returns the bytes of the message.
	Marshal(message interface{}) ([]byte, error)

	// Unmarshal populates the message with the data.
	Unmarshal(data []byte, message interface{}) error
}

// Context carries the engine of a format and the factories that nested
// messages need to be decoded, such as the wire transaction of a signed one.
type Context struct {
	ContextEngine

	factories map[interface{}]Factory
}

// NewContext returns a context without any factory.
func NewContext(engine ContextEngine) Context {
	return Context{
		ContextEngine: engine,
		factories:     make(map[interface{}]Factory),
	}
}

// GetFactory returns the factory registered under the key, or nil.
func (ctx Context) GetFactory(key interface{}) Factory {
	return ctx.factories[key]
}

// FactoryOf returns the factory registered under the key when it is of type T.
func FactoryOf[T Factory](ctx Context, key interface{}) (T, error) {
	raw := ctx.factories[key]

	fac, ok := raw.(T)
	if !ok {
		return fac, xerrors.Errorf("invalid factory '%T'", raw)
	}

	return fac, nil
}

// WithFactory returns a copy of the context where the factory is registered
// under the key. The given context is left untouched.
func WithFactory(ctx Context, key interface{}, f Factory) Context {
	factories := make(map[interface{}]Factory, len(ctx.factories)+1)

	for k, v := range ctx.factories {
		factories[k] = v
	}

	factories[key] = f
	ctx.factories = factories

	return ctx
}
