// Package serde defines the primitives to serialize and deserialize (serde)
// the data models of the ledger.
//
// A message is serialized according to the format of the context, which means
// the data model is independent from the encoding. Formats register engines
// for the messages they support, and a factory is used to instantiate a
// message from its serialized form.
package serde

import "io"

// Format is the identifier of a serialization format.
type Format string

const (
	// FormatJSON is the identifier of the JSON format.
	FormatJSON Format = "JSON"
)

// Message is the interface a data model should implement to be serialized.
type Message interface {
	// Serialize returns the bytes of the message according to the format of
	// the context.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface to implement to instantiate a message from its
// serialized form.
type Factory interface {
	Deserialize(ctx Context, data []byte) (Message, error)
}

// FormatEngine is the interface to implement to support a message in a given
// format.
type FormatEngine interface {
	// Encode returns the bytes of the message in the format.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message populated with the data.
	Decode(ctx Context, data []byte) (Message, error)
}

// Fingerprinter is an interface to fingerprint an object.
type Fingerprinter interface {
	// Fingerprint writes a deterministic binary representation of the object
	// into the writer.
	Fingerprint(writer io.Writer) error
}
