package cash

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/common"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// State is a claim of the owner on the issuer for an amount of currency. A
// move command signed by the owner is required to spend it.
//
// - implements contract.OwnableState
type State struct {
	Amount IssuedAmount
	Owner  crypto.PublicKey
}

// NewState returns a state of the quantity of currency issued under the
// deposit reference.
func NewState(deposit identity.PartyAndReference, quantity int64, currency Currency,
	owner crypto.PublicKey) (State, error) {

	amount, err := contract.NewAmount(quantity, contract.Issued[Currency]{
		Issuer:  deposit,
		Product: currency,
	})
	if err != nil {
		return State{}, xerrors.Errorf("invalid amount: %v", err)
	}

	return State{Amount: amount, Owner: owner}, nil
}

// GetContract implements contract.ContractState.
func (s State) GetContract() contract.Contract {
	return Contract{}
}

// GetParticipants implements contract.ContractState. It returns the owner.
func (s State) GetParticipants() []crypto.PublicKey {
	return []crypto.PublicKey{s.Owner}
}

// GetOwner implements contract.OwnableState.
func (s State) GetOwner() crypto.PublicKey {
	return s.Owner
}

// WithNewOwner implements contract.OwnableState.
func (s State) WithNewOwner(owner crypto.PublicKey) (contract.CommandData, contract.OwnableState) {
	s.Owner = owner

	return Move{}, s
}

// GetDeposit returns the issuer and the deposit reference of the cash.
func (s State) GetDeposit() identity.PartyAndReference {
	return s.Amount.Token.Issuer
}

// GetExitKeys returns the keys that must sign to exit the cash.
func (s State) GetExitKeys() []crypto.PublicKey {
	return []crypto.PublicKey{s.Amount.Token.Issuer.Party.OwningKey}
}

// String implements fmt.Stringer.
func (s State) String() string {
	return fmt.Sprintf("Cash(%d %v at %v owned by %v)", s.Amount.Quantity,
		s.Amount.Token.Product, s.Amount.Token.Issuer, s.Owner)
}

// Serialize implements serde.Message.
func (s State) Serialize(ctx serde.Context) ([]byte, error) {
	amount, err := newAmountMessage(s.Amount)
	if err != nil {
		return nil, xerrors.Errorf("amount: %v", err)
	}

	owner, err := common.TagPublicKey(s.Owner)
	if err != nil {
		return nil, xerrors.Errorf("owner: %v", err)
	}

	data, err := ctx.Marshal(stateMessage{Amount: amount, Owner: owner})
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Fingerprint implements serde.Fingerprinter. It writes the quantity, the
// currency, the issuer key and the deposit reference, then the owner key.
func (s State) Fingerprint(w io.Writer) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(s.Amount.Quantity))

	_, err := w.Write(buf)
	if err != nil {
		return xerrors.Errorf("couldn't write quantity: %v", err)
	}

	_, err = w.Write([]byte(s.Amount.Token.Product.Code))
	if err != nil {
		return xerrors.Errorf("couldn't write currency: %v", err)
	}

	err = writeKey(w, s.Amount.Token.Issuer.Party.OwningKey)
	if err != nil {
		return xerrors.Errorf("issuer: %v", err)
	}

	_, err = w.Write(s.Amount.Token.Issuer.Reference)
	if err != nil {
		return xerrors.Errorf("couldn't write reference: %v", err)
	}

	err = writeKey(w, s.Owner)
	if err != nil {
		return xerrors.Errorf("owner: %v", err)
	}

	return nil
}

// Serialize implements serde.Message.
func (cmd Exit) Serialize(ctx serde.Context) ([]byte, error) {
	amount, err := newAmountMessage(cmd.Amount)
	if err != nil {
		return nil, xerrors.Errorf("amount: %v", err)
	}

	data, err := ctx.Marshal(exitMessage{Amount: amount})
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

type partyMessage struct {
	Name string
	Key  common.TaggedData
}

type amountMessage struct {
	Quantity  int64
	Currency  string
	Issuer    partyMessage
	Reference []byte
}

type stateMessage struct {
	Amount amountMessage
	Owner  common.TaggedData
}

type exitMessage struct {
	Amount amountMessage
}

func newAmountMessage(amount IssuedAmount) (amountMessage, error) {
	key, err := common.TagPublicKey(amount.Token.Issuer.Party.OwningKey)
	if err != nil {
		return amountMessage{}, xerrors.Errorf("issuer: %v", err)
	}

	m := amountMessage{
		Quantity: amount.Quantity,
		Currency: amount.Token.Product.Code,
		Issuer: partyMessage{
			Name: amount.Token.Issuer.Party.Name,
			Key:  key,
		},
		Reference: amount.Token.Issuer.Reference,
	}

	return m, nil
}

func (m amountMessage) toAmount(f common.PublicKeyFactory) (IssuedAmount, error) {
	key, err := f.PublicKeyOf(m.Issuer.Key)
	if err != nil {
		return IssuedAmount{}, xerrors.Errorf("issuer: %v", err)
	}

	issuer := identity.NewParty(m.Issuer.Name, key)

	return contract.NewAmount(m.Quantity, contract.Issued[Currency]{
		Issuer:  issuer.Ref(m.Reference...),
		Product: Currency{Code: m.Currency},
	})
}

// stateFactory is the factory of cash states.
//
// - implements serde.Factory
type stateFactory struct{}

// Deserialize implements serde.Factory.
func (stateFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	m := stateMessage{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	fac := common.NewPublicKeyFactory()

	amount, err := m.Amount.toAmount(fac)
	if err != nil {
		return nil, xerrors.Errorf("amount: %v", err)
	}

	owner, err := fac.PublicKeyOf(m.Owner)
	if err != nil {
		return nil, xerrors.Errorf("owner: %v", err)
	}

	return State{Amount: amount, Owner: owner}, nil
}

// exitFactory is the factory of exit commands.
//
// - implements serde.Factory
type exitFactory struct{}

// Deserialize implements serde.Factory.
func (exitFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	m := exitMessage{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	amount, err := m.Amount.toAmount(common.NewPublicKeyFactory())
	if err != nil {
		return nil, xerrors.Errorf("amount: %v", err)
	}

	return Exit{Amount: amount}, nil
}

func writeKey(w io.Writer, key crypto.PublicKey) error {
	if key == nil {
		return xerrors.New("missing key")
	}

	data, err := key.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("couldn't marshal key: %v", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return xerrors.Errorf("couldn't write key: %v", err)
	}

	return nil
}
