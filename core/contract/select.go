package contract

import (
	"reflect"

	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// SelectFilter is a predicate applied to the commands selected by type.
type SelectFilter func(AuthenticatedObject) bool

// WithSigner keeps the commands signed by the key.
func WithSigner(key crypto.PublicKey) SelectFilter {
	return func(cmd AuthenticatedObject) bool {
		return cmd.SignedBy(key)
	}
}

// WithParty keeps the commands signed by the party.
func WithParty(party identity.Party) SelectFilter {
	return func(cmd AuthenticatedObject) bool {
		return cmd.SignedByParty(party)
	}
}

// Select returns the commands whose data is of type T and that match every
// filter. T can be an interface to select a family of commands.
func Select[T CommandData](cmds []AuthenticatedObject, filters ...SelectFilter) []AuthenticatedObject {
	res := []AuthenticatedObject{}

	for _, cmd := range cmds {
		_, ok := cmd.Value.(T)
		if !ok {
			continue
		}

		if matchAll(cmd, filters) {
			res = append(res, cmd)
		}
	}

	return res
}

// RequireSingleCommand returns the only command of type T. It returns an error
// if there is none or more than one.
func RequireSingleCommand[T CommandData](cmds []AuthenticatedObject) (AuthenticatedObject, T, error) {
	var zero T

	selected := Select[T](cmds)
	if len(selected) != 1 {
		return AuthenticatedObject{}, zero, xerrors.Errorf("required a single %s command but found %d",
			typeNameOf[T](), len(selected))
	}

	return selected[0], selected[0].Value.(T), nil
}

// GroupCommands returns the commands of type T grouped by the key.
func GroupCommands[T CommandData, K comparable](cmds []AuthenticatedObject,
	key func(T) K) map[K][]AuthenticatedObject {

	groups := make(map[K][]AuthenticatedObject)

	for _, cmd := range Select[T](cmds) {
		k := key(cmd.Value.(T))
		groups[k] = append(groups[k], cmd)
	}

	return groups
}

// InputsOfType returns the inputs of the transaction of type T.
func InputsOfType[T ContractState](tx TransactionForContract) []T {
	return statesOfType[T](tx.Inputs)
}

// OutputsOfType returns the outputs of the transaction of type T.
func OutputsOfType[T ContractState](tx TransactionForContract) []T {
	return statesOfType[T](tx.Outputs)
}

// InOutGroup is the inputs and the outputs of a transaction that share the
// same grouping key.
type InOutGroup[T ContractState, K comparable] struct {
	Inputs  []T
	Outputs []T
	Key     K
}

// GroupStates groups the inputs and the outputs of type T by the key. The
// groups are returned in order of first appearance, inputs first, so that the
// result is deterministic.
func GroupStates[T ContractState, K comparable](tx TransactionForContract,
	key func(T) K) []InOutGroup[T, K] {

	index := make(map[K]int)
	groups := []InOutGroup[T, K]{}

	lookup := func(state T) *InOutGroup[T, K] {
		k := key(state)

		i, found := index[k]
		if !found {
			i = len(groups)
			index[k] = i
			groups = append(groups, InOutGroup[T, K]{Key: k})
		}

		return &groups[i]
	}

	for _, state := range InputsOfType[T](tx) {
		group := lookup(state)
		group.Inputs = append(group.Inputs, state)
	}

	for _, state := range OutputsOfType[T](tx) {
		group := lookup(state)
		group.Outputs = append(group.Outputs, state)
	}

	return groups
}

// Requirement is a named condition of a contract.
type Requirement struct {
	Description string
	Holds       bool
}

// Require returns a requirement with the description.
func Require(description string, holds bool) Requirement {
	return Requirement{
		Description: description,
		Holds:       holds,
	}
}

// RequireThat returns an error naming the first requirement that does not
// hold.
func RequireThat(reqs ...Requirement) error {
	for _, req := range reqs {
		if !req.Holds {
			return xerrors.Errorf("failed requirement: %s", req.Description)
		}
	}

	return nil
}

func statesOfType[T ContractState](states []ContractState) []T {
	res := []T{}

	for _, state := range states {
		typed, ok := state.(T)
		if ok {
			res = append(res, typed)
		}
	}

	return res
}

func matchAll(cmd AuthenticatedObject, filters []SelectFilter) bool {
	for _, filter := range filters {
		if !filter(cmd) {
			return false
		}
	}

	return true
}

func typeNameOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
