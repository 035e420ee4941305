package contract

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
	"go.dedis.ch/ledgerkit/serde"
	sjson "go.dedis.ch/ledgerkit/serde/json"
)

func TestStateRef_String(t *testing.T) {
	ref := NewStateRef(crypto.Digest{1}, 2)
	require.Equal(t, crypto.Digest{1}.Prefix()+"(2)", ref.String())
}

func TestTransactionState_WithNewNotary(t *testing.T) {
	n1 := identity.NewParty("N1", ed25519.NewSigner().GetPublicKey())
	n2 := identity.NewParty("N2", ed25519.NewSigner().GetPublicKey())

	state := NewTransactionState(testState{Value: 1}, n1)

	moved := state.WithNewNotary(n2)
	require.True(t, moved.Notary.Equal(n2))
	require.True(t, state.Notary.Equal(n1))
	require.True(t, StatesEqual(state.Data, moved.Data))
	require.False(t, state.Equal(moved))
	require.True(t, state.Equal(NewTransactionState(testState{Value: 1}, n1)))
}

func TestStatesEqual(t *testing.T) {
	require.True(t, StatesEqual(testState{Value: 1}, testState{Value: 1}))
	require.False(t, StatesEqual(testState{Value: 1}, testState{Value: 2}))
	require.False(t, StatesEqual(testState{Value: 1}, otherState{testState{Value: 1}}))
	require.False(t, StatesEqual(testState{Value: 1}, nil))
	require.True(t, StatesEqual(nil, nil))
}

func TestCommand_New(t *testing.T) {
	key := ed25519.NewSigner().GetPublicKey()

	cmd, err := NewCommand(testCommand{}, key)
	require.NoError(t, err)
	require.Len(t, cmd.Signers, 1)

	_, err = NewCommand(testCommand{})
	require.EqualError(t, err,
		"command go.dedis.ch/ledgerkit/core/contract.testCommand must have at least one signer")

	_, err = NewCommand(nil, key)
	require.EqualError(t, err, "missing command data")

	_, err = NewCommand(testCommand{}, key, nil)
	require.EqualError(t, err,
		"command go.dedis.ch/ledgerkit/core/contract.testCommand: signer 1 has no key")

	require.Panics(t, func() { MustCommand(testCommand{}) })
}

func TestSameCommand(t *testing.T) {
	require.True(t, SameCommand(testCommand{}, testCommand{}))
	require.False(t, SameCommand(testCommand{}, otherCommand{}))

	now := time.Now()
	ts := NewTimestampAround(now, time.Second)
	require.True(t, SameCommand(ts, NewTimestampAround(now, time.Second)))
	require.False(t, SameCommand(ts, NewTimestampAround(now, time.Minute)))
}

func TestAuthenticate(t *testing.T) {
	alice := identity.NewParty("Alice", ed25519.NewSigner().GetPublicKey())
	unknown := ed25519.NewSigner().GetPublicKey()

	srvc := fakeIdentities{alice}

	obj := Authenticate(MustCommand(testCommand{}, alice.OwningKey, unknown), srvc)
	require.Len(t, obj.Signers, 2)
	require.Len(t, obj.SigningParties, 1)
	require.True(t, obj.SignedBy(unknown))
	require.True(t, obj.SignedByParty(alice))
	require.False(t, obj.SignedByParty(identity.NewParty("Bob", unknown)))
	require.Contains(t, obj.String(), "by [Alice]")
}

func TestRegistry_Deserialize(t *testing.T) {
	ctx := sjson.NewContext()

	RegisterState(testState{}, nil)
	RegisterCommand(testCommand{}, nil)

	data, err := testState{Value: 5}.Serialize(ctx)
	require.NoError(t, err)

	state, err := DeserializeState(ctx, TypeName(testState{}), data)
	require.NoError(t, err)
	require.Equal(t, testState{Value: 5}, state)

	_, err = DeserializeState(ctx, "unknown", data)
	require.EqualError(t, err, "state: unknown type 'unknown'")

	data, err = testCommand{}.Serialize(ctx)
	require.NoError(t, err)

	cmd, err := DeserializeCommand(ctx, TypeName(testCommand{}), data)
	require.NoError(t, err)
	require.Equal(t, testCommand{}, cmd)

	_, err = DeserializeCommand(ctx, "unknown", data)
	require.EqualError(t, err, "command: unknown type 'unknown'")
}

func TestTimestamp_Deserialize(t *testing.T) {
	ctx := sjson.NewContext()

	ts := NewTimestampAround(time.Now(), time.Minute)

	data, err := ts.Serialize(ctx)
	require.NoError(t, err)

	cmd, err := DeserializeCommand(ctx, TypeName(ts), data)
	require.NoError(t, err)
	require.Equal(t, ts, cmd)

	_, err = DeserializeCommand(ctx, TypeName(ts), []byte(`{}`))
	require.EqualError(t, err, "command: factory of "+
		"'go.dedis.ch/ledgerkit/core/contract.TimestampCommand' failed: "+
		"invalid timestamp: timestamp must have at least one bound")
}

// -----------------------------------------------------------------------------
// Utility functions

type testContract struct {
	err error
}

func (c testContract) Verify(TransactionForContract) error {
	return c.err
}

func (c testContract) LegalContractReference() crypto.Digest {
	return crypto.Digest{0xaa}
}

type testState struct {
	Value int
	Owner crypto.PublicKey `json:"-"`
}

func (s testState) Serialize(ctx serde.Context) ([]byte, error) {
	return ctx.Marshal(s)
}

func (s testState) Fingerprint(w io.Writer) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(s.Value))

	_, err := w.Write(buf)
	return err
}

func (s testState) GetContract() Contract {
	return testContract{}
}

func (s testState) GetParticipants() []crypto.PublicKey {
	if s.Owner == nil {
		return nil
	}

	return []crypto.PublicKey{s.Owner}
}

type otherState struct {
	testState
}

type testCommand struct {
	TypeOnly
}

type otherCommand struct {
	TypeOnly
}

type fakeIdentities []identity.Party

func (ids fakeIdentities) PartyFromKey(key crypto.PublicKey) (identity.Party, bool) {
	for _, p := range ids {
		if p.OwningKey.Equal(key) {
			return p, true
		}
	}

	return identity.Party{}, false
}

func (ids fakeIdentities) PartyFromName(name string) (identity.Party, bool) {
	for _, p := range ids {
		if p.Name == name {
			return p, true
		}
	}

	return identity.Party{}, false
}
