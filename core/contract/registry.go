package contract

import (
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

var (
	stateTypes   = serde.NewTypeRegistry()
	commandTypes = serde.NewTypeRegistry()
)

func init() {
	RegisterCommand(TimestampCommand{}, timestampFactory{})
}

// RegisterState registers the type of the state so that it can be
// deserialized. A nil factory means the state is made of plain exported
// fields.
func RegisterState(example ContractState, f serde.Factory) {
	stateTypes.Register(example, f)
}

// RegisterCommand registers the type of the command data so that it can be
// deserialized. A nil factory means the data is made of plain exported fields.
func RegisterCommand(example CommandData, f serde.Factory) {
	commandTypes.Register(example, f)
}

// TypeName returns the name the type of the message is registered with.
func TypeName(m serde.Message) string {
	return serde.KeyOf(m)
}

// DeserializeState returns the state of the registered type.
func DeserializeState(ctx serde.Context, typeName string, data []byte) (ContractState, error) {
	msg, err := stateTypes.Deserialize(ctx, typeName, data)
	if err != nil {
		return nil, xerrors.Errorf("state: %v", err)
	}

	state, ok := msg.(ContractState)
	if !ok {
		return nil, xerrors.Errorf("invalid state '%T'", msg)
	}

	return state, nil
}

// DeserializeCommand returns the command data of the registered type.
func DeserializeCommand(ctx serde.Context, typeName string, data []byte) (CommandData, error) {
	msg, err := commandTypes.Deserialize(ctx, typeName, data)
	if err != nil {
		return nil, xerrors.Errorf("command: %v", err)
	}

	return msg, nil
}
