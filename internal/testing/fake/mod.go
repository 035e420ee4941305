// Package fake provides fake implementations for interfaces commonly used in
// the repository.
// The implementations offer configuration to return errors when it is needed by
// the unit test and it is also possible to record the call of functions of an
// object in some cases.
package fake

import (
	"encoding/json"
	"hash"

	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// Err returns the error that fake implementations are returning when
// configured to fail, prefixed with the message.
func Err(msg string) error {
	return xerrors.Errorf("%s: %v", msg, fakeErr)
}

var fakeErr = xerrors.New("fake error")

// Call is a tool to keep track of a function calls.
type Call struct {
	calls [][]interface{}
}

// Get returns the nth call ith parameter.
func (c *Call) Get(n, i int) interface{} {
	return c.calls[n][i]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	return len(c.calls)
}

// Add adds a call to the list.
func (c *Call) Add(args ...interface{}) {
	c.calls = append(c.calls, args)
}

// PublicKey is a fake implementation of crypto.PublicKey. Keys with different
// indices are different.
//
// - implements crypto.PublicKey
type PublicKey struct {
	index byte
	err   error
}

// NewPublicKey returns a fake public key identified by the index.
func NewPublicKey(index byte) PublicKey {
	return PublicKey{index: index}
}

// NewBadPublicKey returns a new fake public key that returns error when
// appropriate.
func NewBadPublicKey() PublicKey {
	return PublicKey{err: fakeErr}
}

// GetAlgorithm implements crypto.PublicKey.
func (pk PublicKey) GetAlgorithm() string {
	return "fake"
}

// Verify implements crypto.PublicKey.
func (pk PublicKey) Verify([]byte, crypto.Signature) error {
	return pk.err
}

// Equal implements crypto.PublicKey.
func (pk PublicKey) Equal(other interface{}) bool {
	o, ok := other.(PublicKey)
	return ok && o.index == pk.index
}

// MarshalBinary implements crypto.PublicKey.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return []byte{pk.index}, pk.err
}

// MarshalText implements crypto.PublicKey.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), pk.err
}

// String implements fmt.Stringer.
func (pk PublicKey) String() string {
	return "fake.PublicKey"
}

// SignatureByte is the byte returned when marshaling a fake signature.
const SignatureByte = 0xfe

// Signature is a fake implementation of the signature.
//
// - implements crypto.Signature
type Signature struct {
	err error
}

// NewBadSignature returns a signature that will return error when appropriate.
func NewBadSignature() Signature {
	return Signature{err: fakeErr}
}

// Equal implements crypto.Signature.
func (s Signature) Equal(o crypto.Signature) bool {
	_, ok := o.(Signature)
	return ok
}

// MarshalBinary implements crypto.Signature.
func (s Signature) MarshalBinary() ([]byte, error) {
	return []byte{SignatureByte}, s.err
}

// Signer is a fake implementation of the crypto.Signer interface.
//
// - implements crypto.Signer
type Signer struct {
	key PublicKey
	err error
}

// NewSigner returns a new instance of the fake signer.
func NewSigner(index byte) Signer {
	return Signer{key: NewPublicKey(index)}
}

// NewBadSigner returns a fake signer that will return an error when
// appropriate.
func NewBadSigner() Signer {
	return Signer{err: fakeErr}
}

// GetPublicKey implements crypto.Signer.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return s.key
}

// Sign implements crypto.Signer.
func (s Signer) Sign([]byte) (crypto.Signature, error) {
	return Signature{}, s.err
}

// Hash is a fake implementation of hash.Hash.
type Hash struct {
	hash.Hash
	delay int
	err   error
}

// NewBadHash returns a fake hash that returns an error when appropriate.
func NewBadHash() *Hash {
	return &Hash{err: fakeErr}
}

// NewBadHashWithDelay returns a fake hash that returns an error after a
// certain amount of calls.
func NewBadHashWithDelay(delay int) *Hash {
	return &Hash{err: fakeErr, delay: delay}
}

func (h *Hash) Write([]byte) (int, error) {
	if h.delay > 0 {
		h.delay--
		return 0, nil
	}

	return 0, h.err
}

// Sum implements hash.Hash.
func (h *Hash) Sum([]byte) []byte {
	return make([]byte, crypto.DigestSize)
}

// HashFactory is a fake implementation of a hash factory.
//
// - implements crypto.HashFactory
type HashFactory struct {
	hash *Hash
}

// NewHashFactory returns a fake hash factory.
func NewHashFactory(h *Hash) HashFactory {
	return HashFactory{hash: h}
}

// New implements crypto.HashFactory.
func (f HashFactory) New() hash.Hash {
	return f.hash
}

// Message is a fake implementation of a message.
//
// - implements serde.Message
type Message struct {
	Digest []byte
}

// Serialize implements serde.Message.
func (m Message) Serialize(ctx serde.Context) ([]byte, error) {
	return []byte("{}"), nil
}

// Format is a fake format engine implementation.
//
// - implements serde.FormatEngine
type Format struct {
	err  error
	Msg  serde.Message
	Call *Call
}

// NewBadFormat returns a format engine that will return an error when
// appropriate.
func NewBadFormat() Format {
	return Format{err: fakeErr}
}

// Encode implements serde.FormatEngine.
func (f Format) Encode(ctx serde.Context, m serde.Message) ([]byte, error) {
	if f.Call != nil {
		f.Call.Add(ctx, m)
	}

	return []byte("fake format"), f.err
}

// Decode implements serde.FormatEngine.
func (f Format) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	if f.Call != nil {
		f.Call.Add(ctx, data)
	}

	return f.Msg, f.err
}

const (
	// GoodFormat is the name of a format that tests can register a working
	// fake engine for.
	GoodFormat = serde.Format("FAKE-GOOD")

	// BadFormat is the name of a format that tests can register a failing
	// fake engine for.
	BadFormat = serde.Format("FAKE-BAD")
)

// ContextEngine is a fake implementation of the serde.ContextEngine interface.
//
// - implements serde.ContextEngine
type ContextEngine struct {
	Count *Counter
	err   error
}

// NewContext returns a new fake context.
func NewContext() serde.Context {
	return serde.NewContext(ContextEngine{})
}

// NewContextWithFormat returns a new fake context with the format.
func NewContextWithFormat(f serde.Format) serde.Context {
	return serde.NewContext(formatContextEngine{format: f})
}

// NewBadContext returns a new fake context that returns an error when
// appropriate.
func NewBadContext() serde.Context {
	return serde.NewContext(ContextEngine{err: fakeErr})
}

// NewBadContextWithDelay returns a new fake context that returns an error
// after a certain amount of calls.
func NewBadContextWithDelay(delay int) serde.Context {
	return serde.NewContext(ContextEngine{err: fakeErr, Count: NewCounter(delay)})
}

// GetFormat implements serde.ContextEngine.
func (ctx ContextEngine) GetFormat() serde.Format {
	return serde.Format("FAKE")
}

// Marshal implements serde.ContextEngine.
func (ctx ContextEngine) Marshal(message interface{}) ([]byte, error) {
	if ctx.Count != nil && !ctx.Count.Done() {
		ctx.Count.Decrease()
		return json.Marshal(message)
	}

	if ctx.err != nil {
		return nil, ctx.err
	}

	return json.Marshal(message)
}

// Unmarshal implements serde.ContextEngine.
func (ctx ContextEngine) Unmarshal(data []byte, m interface{}) error {
	if ctx.err != nil {
		return ctx.err
	}

	return json.Unmarshal(data, m)
}

type formatContextEngine struct {
	ContextEngine
	format serde.Format
}

func (ctx formatContextEngine) GetFormat() serde.Format {
	return ctx.format
}

// Counter is a helper to delay errors or actions. It can be nil without
// panics.
type Counter struct {
	Value int
}

// NewCounter returns a new counter set to the given value.
func NewCounter(value int) *Counter {
	return &Counter{
		Value: value,
	}
}

// Done returns true when the counter reached zero.
func (c *Counter) Done() bool {
	return c == nil || c.Value <= 0
}

// Decrease decrements the counter.
func (c *Counter) Decrease() {
	if c == nil {
		return
	}

	c.Value--
}
