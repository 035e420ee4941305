// Package txn defines the views of a transaction as it progresses through the
// verification pipeline.
//
// A Builder accumulates the inputs, the outputs and the commands of a
// transaction and freezes them into a WireTransaction, which is the unit that
// is hashed and signed. Its identifier is the digest of its canonical bytes,
// and a SignedTransaction bundles those bytes with the signatures.
//
// Resolving the keys of the commands to parties, and the attachments to
// archives, produces a LedgerTransaction. Once its inputs are dereferenced
// against the transactions that produced them, it becomes a
// TransactionForVerification that checks the signers and the rules of the
// transaction type. General transactions delegate the validation to the
// contracts of the states, which only get a TransactionForContract.
//
// The wire and the signed forms are serialized by the format engines
// registered for the format of the context. The JSON engines live in the json
// sub-package.
package txn

import (
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"go.dedis.ch/ledgerkit/serde/registry"
	"golang.org/x/xerrors"
)

var (
	wireFormats   = registry.NewSimpleRegistry()
	signedFormats = registry.NewSimpleRegistry()
)

// RegisterWireFormat registers the engine for the wire transactions in the
// provided format.
func RegisterWireFormat(f serde.Format, e serde.FormatEngine) {
	wireFormats.Register(f, e)
}

// RegisterSignedFormat registers the engine for the signed transactions in the
// provided format.
func RegisterSignedFormat(f serde.Format, e serde.FormatEngine) {
	signedFormats.Register(f, e)
}

// Type is the type of a transaction, which decides the signers it requires and
// the rules it must follow.
type Type uint8

const (
	// General is the type of the transactions validated by the contracts of
	// their states.
	General Type = iota

	// NotaryChange is the type of the transactions that move states to
	// another notary without changing them.
	NotaryChange
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case General:
		return "General"
	case NotaryChange:
		return "NotaryChange"
	default:
		return "Unknown"
	}
}

// ParseType returns the type with the name.
func ParseType(name string) (Type, error) {
	switch name {
	case "General":
		return General, nil
	case "NotaryChange":
		return NotaryChange, nil
	default:
		return 0, xerrors.Errorf("unknown transaction type '%s'", name)
	}
}

type template struct {
	hashFactory crypto.HashFactory
	notary      *identity.Party
	txType      Type
}

func newTemplate(opts []Option) template {
	tmpl := template{
		hashFactory: crypto.NewSha256Factory(),
		txType:      General,
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	return tmpl
}

// Option is the type of options to create transactions, builders and
// factories.
type Option func(*template)

// WithHashFactory is an option to set the hash factory used to compute the
// identifier of the transactions.
func WithHashFactory(f crypto.HashFactory) Option {
	return func(tmpl *template) {
		tmpl.hashFactory = f
	}
}

// WithDefaultNotary is an option to set the notary of the outputs added to a
// builder without one.
func WithDefaultNotary(notary identity.Party) Option {
	return func(tmpl *template) {
		tmpl.notary = &notary
	}
}

// WithType is an option to set the type of the transactions of a builder.
func WithType(t Type) Option {
	return func(tmpl *template) {
		tmpl.txType = t
	}
}
