package contract

import (
	"fmt"
	"reflect"
	"strings"

	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// CommandData is the data of a command. The concrete types must be registered
// with RegisterCommand.
type CommandData interface {
	serde.Message
}

// TypeOnly is embedded by the commands that carry no data. Two such commands
// are equal when they have the same type.
type TypeOnly struct{}

// Serialize implements serde.Message.
func (TypeOnly) Serialize(ctx serde.Context) ([]byte, error) {
	return ctx.Marshal(struct{}{})
}

func (TypeOnly) typeOnly() {}

type typeOnlyCommand interface {
	typeOnly()
}

// SameCommand returns true if the two command data are equal. Commands that
// embed TypeOnly are compared by type only.
func SameCommand(a, b CommandData) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	_, ok := a.(typeOnlyCommand)
	if ok {
		return true
	}

	return reflect.DeepEqual(a, b)
}

// Command is the command data and the keys that must sign the transaction for
// the command to be authorized.
type Command struct {
	Value   CommandData
	Signers []crypto.PublicKey
}

// NewCommand returns a new command. It returns an error if there is no signer
// or if a signer is nil.
func NewCommand(value CommandData, signers ...crypto.PublicKey) (Command, error) {
	if value == nil {
		return Command{}, xerrors.New("missing command data")
	}

	if len(signers) == 0 {
		return Command{}, xerrors.Errorf("command %s must have at least one signer",
			serde.KeyOf(value))
	}

	for i, key := range signers {
		if key == nil {
			return Command{}, xerrors.Errorf("command %s: signer %d has no key",
				serde.KeyOf(value), i)
		}
	}

	cmd := Command{
		Value:   value,
		Signers: append([]crypto.PublicKey{}, signers...),
	}

	return cmd, nil
}

// MustCommand returns a new command and panics if it is invalid. It is meant
// for static commands known to be valid.
func MustCommand(value CommandData, signers ...crypto.PublicKey) Command {
	cmd, err := NewCommand(value, signers...)
	if err != nil {
		panic(err)
	}

	return cmd
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("%s with %v", serde.KeyOf(c.Value), crypto.NewKeySet(c.Signers...))
}

// AuthenticatedObject is a command whose signer keys were resolved to the
// well-known parties, when known.
type AuthenticatedObject struct {
	Signers        []crypto.PublicKey
	SigningParties []identity.Party
	Value          CommandData
}

// Authenticate looks up the parties of the signers of the command. Unknown keys
// are simply not attributed to a party.
func Authenticate(cmd Command, identities identity.Service) AuthenticatedObject {
	parties := make([]identity.Party, 0, len(cmd.Signers))

	for _, key := range cmd.Signers {
		party, found := identities.PartyFromKey(key)
		if found {
			parties = append(parties, party)
		}
	}

	return AuthenticatedObject{
		Signers:        append([]crypto.PublicKey{}, cmd.Signers...),
		SigningParties: parties,
		Value:          cmd.Value,
	}
}

// SignedBy returns true if the key is one of the signers.
func (o AuthenticatedObject) SignedBy(key crypto.PublicKey) bool {
	return crypto.NewKeySet(o.Signers...).Contains(key)
}

// SignedByParty returns true if the party is one of the signing parties.
func (o AuthenticatedObject) SignedByParty(party identity.Party) bool {
	for _, p := range o.SigningParties {
		if p.Equal(party) {
			return true
		}
	}

	return false
}

// String implements fmt.Stringer.
func (o AuthenticatedObject) String() string {
	names := make([]string, len(o.SigningParties))
	for i, p := range o.SigningParties {
		names[i] = p.Name
	}

	return fmt.Sprintf("%s by [%s]", serde.KeyOf(o.Value), strings.Join(names, ", "))
}
