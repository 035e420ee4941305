// Package dummy implements a contract that accepts every transaction. Its
// states carry a magic number and are meant to exercise the transaction
// machinery without any business rule getting in the way.
package dummy

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/common"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// LegalProse is the text the contract reference is the digest of.
const LegalProse = "The dummy contract accepts any transaction."

var reference = crypto.Digest(sha256.Sum256([]byte(LegalProse)))

func init() {
	contract.RegisterState(State{}, nil)
	contract.RegisterState(OwnedState{}, ownedFactory{})
	contract.RegisterCommand(Create{}, nil)
	contract.RegisterCommand(Move{}, nil)
}

// Contract is the contract that accepts every transaction.
//
// - implements contract.Contract
type Contract struct{}

// Verify implements contract.Contract. It always returns nil.
func (Contract) Verify(contract.TransactionForContract) error {
	return nil
}

// LegalContractReference implements contract.Contract.
func (Contract) LegalContractReference() crypto.Digest {
	return reference
}

// Create is the command to create dummy states.
type Create struct {
	contract.TypeOnly
}

// Move is the command to change the owner of a dummy state.
type Move struct {
	contract.TypeOnly
}

// State is a dummy state without participants.
//
// - implements contract.ContractState
type State struct {
	Magic int
}

// GetContract implements contract.ContractState.
func (s State) GetContract() contract.Contract {
	return Contract{}
}

// GetParticipants implements contract.ContractState. A dummy state has no
// participant.
func (s State) GetParticipants() []crypto.PublicKey {
	return nil
}

// Serialize implements serde.Message.
func (s State) Serialize(ctx serde.Context) ([]byte, error) {
	return ctx.Marshal(s)
}

// Fingerprint implements serde.Fingerprinter. It writes the magic number.
func (s State) Fingerprint(w io.Writer) error {
	return writeMagic(w, s.Magic)
}

// OwnedState is a dummy state owned by a single key.
//
// - implements contract.OwnableState
type OwnedState struct {
	Magic int
	Owner crypto.PublicKey
}

// GetContract implements contract.ContractState.
func (s OwnedState) GetContract() contract.Contract {
	return Contract{}
}

// GetParticipants implements contract.ContractState. It returns the owner.
func (s OwnedState) GetParticipants() []crypto.PublicKey {
	return []crypto.PublicKey{s.Owner}
}

// GetOwner implements contract.OwnableState.
func (s OwnedState) GetOwner() crypto.PublicKey {
	return s.Owner
}

// WithNewOwner implements contract.OwnableState.
func (s OwnedState) WithNewOwner(owner crypto.PublicKey) (contract.CommandData, contract.OwnableState) {
	s.Owner = owner

	return Move{}, s
}

// Serialize implements serde.Message.
func (s OwnedState) Serialize(ctx serde.Context) ([]byte, error) {
	owner, err := common.TagPublicKey(s.Owner)
	if err != nil {
		return nil, xerrors.Errorf("owner: %v", err)
	}

	data, err := ctx.Marshal(ownedMessage{Magic: s.Magic, Owner: owner})
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Fingerprint implements serde.Fingerprinter. It writes the magic number
// followed by the owner key.
func (s OwnedState) Fingerprint(w io.Writer) error {
	err := writeMagic(w, s.Magic)
	if err != nil {
		return err
	}

	if s.Owner == nil {
		return nil
	}

	data, err := s.Owner.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("couldn't marshal owner: %v", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return xerrors.Errorf("couldn't write owner: %v", err)
	}

	return nil
}

type ownedMessage struct {
	Magic int
	Owner common.TaggedData
}

// ownedFactory is the factory of owned states.
//
// - implements serde.Factory
type ownedFactory struct{}

// Deserialize implements serde.Factory.
func (ownedFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	m := ownedMessage{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	owner, err := common.NewPublicKeyFactory().PublicKeyOf(m.Owner)
	if err != nil {
		return nil, xerrors.Errorf("owner: %v", err)
	}

	return OwnedState{Magic: m.Magic, Owner: owner}, nil
}

func writeMagic(w io.Writer, magic int) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(magic))

	_, err := w.Write(buf)
	if err != nil {
		return xerrors.Errorf("couldn't write magic: %v", err)
	}

	return nil
}
