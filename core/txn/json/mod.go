// Package json implements the JSON format engines of the wire and the signed
// transactions.
//
// The wire format is the canonical form of a transaction: states and commands
// are tagged with the name of their registered type, and keys and signatures
// with the name of their algorithm, so that the bytes decode back into the
// exact same values.
package json

import (
	"encoding/json"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/common"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

func init() {
	txn.RegisterWireFormat(serde.FormatJSON, newWireFormat())
	txn.RegisterSignedFormat(serde.FormatJSON, newSignedFormat())
}

// StateRefJSON is the JSON message of a state reference.
type StateRefJSON struct {
	TxID  crypto.Digest
	Index int
}

// PartyJSON is the JSON message of a party.
type PartyJSON struct {
	Name string
	Key  common.TaggedData
}

// StateJSON is the JSON message of an output.
type StateJSON struct {
	Type   string
	Data   json.RawMessage
	Notary PartyJSON
}

// CommandJSON is the JSON message of a command.
type CommandJSON struct {
	Type    string
	Data    json.RawMessage
	Signers []common.TaggedData
}

// WireJSON is the JSON message of a wire transaction.
type WireJSON struct {
	Type        string
	Inputs      []StateRefJSON
	Attachments []crypto.Digest
	Outputs     []StateJSON
	Commands    []CommandJSON
	Signers     []common.TaggedData
}

// wireFormat is the engine to encode and decode the content of wire
// transactions in JSON format.
//
// - implements serde.FormatEngine
type wireFormat struct {
	pubkeyFac common.PublicKeyFactory
}

func newWireFormat() wireFormat {
	return wireFormat{
		pubkeyFac: common.NewPublicKeyFactory(),
	}
}

// Encode implements serde.FormatEngine. It returns the JSON data of the wire
// transaction content if appropriate, otherwise it returns an error.
func (f wireFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	data, ok := msg.(txn.WireData)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := WireJSON{
		Type:        data.Type.String(),
		Inputs:      make([]StateRefJSON, len(data.Inputs)),
		Attachments: append([]crypto.Digest{}, data.Attachments...),
		Outputs:     make([]StateJSON, len(data.Outputs)),
		Commands:    make([]CommandJSON, len(data.Commands)),
	}

	for i, ref := range data.Inputs {
		m.Inputs[i] = StateRefJSON{TxID: ref.TxID, Index: ref.Index}
	}

	for i, output := range data.Outputs {
		state, err := encodeState(ctx, output)
		if err != nil {
			return nil, xerrors.Errorf("output %d: %v", i, err)
		}

		m.Outputs[i] = state
	}

	for i, cmd := range data.Commands {
		raw, err := cmd.Value.Serialize(ctx)
		if err != nil {
			return nil, xerrors.Errorf("command %d: couldn't serialize: %v", i, err)
		}

		signers, err := tagKeys(cmd.Signers)
		if err != nil {
			return nil, xerrors.Errorf("command %d: %v", i, err)
		}

		m.Commands[i] = CommandJSON{
			Type:    contract.TypeName(cmd.Value),
			Data:    raw,
			Signers: signers,
		}
	}

	signers, err := tagKeys(data.Signers)
	if err != nil {
		return nil, xerrors.Errorf("signers: %v", err)
	}

	m.Signers = signers

	raw, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return raw, nil
}

// Decode implements serde.FormatEngine. It returns the content of the wire
// transaction of the JSON data if appropriate, otherwise it returns an error.
func (f wireFormat) Decode(ctx serde.Context, raw []byte) (serde.Message, error) {
	m := WireJSON{}

	err := ctx.Unmarshal(raw, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	txType, err := txn.ParseType(m.Type)
	if err != nil {
		return nil, xerrors.Errorf("invalid type: %v", err)
	}

	data := txn.WireData{
		Inputs:      make([]contract.StateRef, len(m.Inputs)),
		Attachments: append([]crypto.Digest{}, m.Attachments...),
		Outputs:     make([]contract.TransactionState, len(m.Outputs)),
		Commands:    make([]contract.Command, len(m.Commands)),
		Type:        txType,
	}

	for i, ref := range m.Inputs {
		data.Inputs[i] = contract.NewStateRef(ref.TxID, ref.Index)
	}

	for i, output := range m.Outputs {
		state, err := f.decodeState(ctx, output)
		if err != nil {
			return nil, xerrors.Errorf("output %d: %v", i, err)
		}

		data.Outputs[i] = state
	}

	for i, cmd := range m.Commands {
		value, err := contract.DeserializeCommand(ctx, cmd.Type, cmd.Data)
		if err != nil {
			return nil, xerrors.Errorf("command %d: %v", i, err)
		}

		signers, err := f.keysOf(cmd.Signers)
		if err != nil {
			return nil, xerrors.Errorf("command %d: %v", i, err)
		}

		data.Commands[i], err = contract.NewCommand(value, signers...)
		if err != nil {
			return nil, xerrors.Errorf("command %d: %v", i, err)
		}
	}

	data.Signers, err = f.keysOf(m.Signers)
	if err != nil {
		return nil, xerrors.Errorf("signers: %v", err)
	}

	return data, nil
}

func (f wireFormat) decodeState(ctx serde.Context, m StateJSON) (contract.TransactionState, error) {
	data, err := contract.DeserializeState(ctx, m.Type, m.Data)
	if err != nil {
		return contract.TransactionState{}, err
	}

	key, err := f.pubkeyFac.PublicKeyOf(m.Notary.Key)
	if err != nil {
		return contract.TransactionState{}, xerrors.Errorf("notary: %v", err)
	}

	notary := identity.NewParty(m.Notary.Name, key)

	return contract.NewTransactionState(data, notary), nil
}

func (f wireFormat) keysOf(tagged []common.TaggedData) ([]crypto.PublicKey, error) {
	keys := make([]crypto.PublicKey, len(tagged))

	for i, t := range tagged {
		key, err := f.pubkeyFac.PublicKeyOf(t)
		if err != nil {
			return nil, xerrors.Errorf("key %d: %v", i, err)
		}

		keys[i] = key
	}

	return keys, nil
}

func encodeState(ctx serde.Context, state contract.TransactionState) (StateJSON, error) {
	if state.Data == nil {
		return StateJSON{}, xerrors.New("missing state data")
	}

	raw, err := state.Data.Serialize(ctx)
	if err != nil {
		return StateJSON{}, xerrors.Errorf("couldn't serialize: %v", err)
	}

	key, err := common.TagPublicKey(state.Notary.OwningKey)
	if err != nil {
		return StateJSON{}, xerrors.Errorf("notary: %v", err)
	}

	m := StateJSON{
		Type: contract.TypeName(state.Data),
		Data: raw,
		Notary: PartyJSON{
			Name: state.Notary.Name,
			Key:  key,
		},
	}

	return m, nil
}

func tagKeys(keys []crypto.PublicKey) ([]common.TaggedData, error) {
	tagged := make([]common.TaggedData, len(keys))

	for i, key := range keys {
		t, err := common.TagPublicKey(key)
		if err != nil {
			return nil, xerrors.Errorf("key %d: %v", i, err)
		}

		tagged[i] = t
	}

	return tagged, nil
}
