package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/ed25519"
)

func TestSelect(t *testing.T) {
	alice := identity.NewParty("Alice", ed25519.NewSigner().GetPublicKey())
	bob := identity.NewParty("Bob", ed25519.NewSigner().GetPublicKey())

	cmds := []AuthenticatedObject{
		{Value: testCommand{}, Signers: []crypto.PublicKey{alice.OwningKey}, SigningParties: []identity.Party{alice}},
		{Value: otherCommand{}, Signers: []crypto.PublicKey{bob.OwningKey}, SigningParties: []identity.Party{bob}},
		{Value: testCommand{}, Signers: []crypto.PublicKey{bob.OwningKey}, SigningParties: []identity.Party{bob}},
	}

	require.Len(t, Select[testCommand](cmds), 2)
	require.Len(t, Select[otherCommand](cmds), 1)
	require.Len(t, Select[CommandData](cmds), 3)
	require.Len(t, Select[testCommand](cmds, WithSigner(bob.OwningKey)), 1)
	require.Len(t, Select[testCommand](cmds, WithParty(alice)), 1)
	require.Len(t, Select[otherCommand](cmds, WithParty(alice)), 0)
	require.Len(t, Select[TimestampCommand](cmds), 0)
}

func TestRequireSingleCommand(t *testing.T) {
	key := ed25519.NewSigner().GetPublicKey()

	cmds := []AuthenticatedObject{
		{Value: testCommand{}, Signers: []crypto.PublicKey{key}},
		{Value: otherCommand{}, Signers: []crypto.PublicKey{key}},
		{Value: otherCommand{}, Signers: []crypto.PublicKey{key}},
	}

	cmd, value, err := RequireSingleCommand[testCommand](cmds)
	require.NoError(t, err)
	require.Equal(t, testCommand{}, value)
	require.Equal(t, cmds[0], cmd)

	_, _, err = RequireSingleCommand[otherCommand](cmds)
	require.EqualError(t, err, "required a single contract.otherCommand command but found 2")

	_, _, err = RequireSingleCommand[TimestampCommand](cmds)
	require.EqualError(t, err, "required a single contract.TimestampCommand command but found 0")
}

func TestGroupCommands(t *testing.T) {
	key := ed25519.NewSigner().GetPublicKey()

	cmds := []AuthenticatedObject{
		{Value: NewTimestampAround(time.Unix(100, 0), time.Second), Signers: []crypto.PublicKey{key}},
		{Value: testCommand{}, Signers: []crypto.PublicKey{key}},
		{Value: NewTimestampAround(time.Unix(100, 0), time.Minute), Signers: []crypto.PublicKey{key}},
	}

	groups := GroupCommands[TimestampCommand](cmds, func(ts TimestampCommand) int64 {
		mid, _ := ts.Midpoint()
		return mid.Unix()
	})

	require.Len(t, groups, 1)
	require.Len(t, groups[100], 2)
}

func TestGroupStates(t *testing.T) {
	tx := TransactionForContract{
		Inputs:  []ContractState{testState{Value: 1}, testState{Value: 2}, otherState{}},
		Outputs: []ContractState{testState{Value: 3}, testState{Value: 4}, testState{Value: 6}},
	}

	require.Len(t, InputsOfType[testState](tx), 2)
	require.Len(t, InputsOfType[otherState](tx), 1)
	require.Len(t, OutputsOfType[testState](tx), 3)

	groups := GroupStates(tx, func(s testState) bool {
		return s.Value%2 == 0
	})

	require.Len(t, groups, 2)
	require.False(t, groups[0].Key)
	require.Equal(t, []testState{{Value: 1}}, groups[0].Inputs)
	require.Equal(t, []testState{{Value: 3}}, groups[0].Outputs)
	require.True(t, groups[1].Key)
	require.Equal(t, []testState{{Value: 2}}, groups[1].Inputs)
	require.Equal(t, []testState{{Value: 4}, {Value: 6}}, groups[1].Outputs)
}

func TestRequireThat(t *testing.T) {
	err := RequireThat(
		Require("one is one", 1 == 1),
		Require("there is no input", false),
		Require("never reached", false),
	)
	require.EqualError(t, err, "failed requirement: there is no input")

	require.NoError(t, RequireThat(Require("true", true)))
}

func TestTransactionForContract_GetTimestampBy(t *testing.T) {
	notary := identity.NewParty("Notary Service", ed25519.NewSigner().GetPublicKey())
	other := identity.NewParty("Bank A", ed25519.NewSigner().GetPublicKey())

	ts := NewTimestampAround(time.Now(), time.Second)

	tx := TransactionForContract{
		Commands: []AuthenticatedObject{
			{Value: testCommand{}, Signers: []crypto.PublicKey{other.OwningKey}},
			{Value: ts, Signers: []crypto.PublicKey{notary.OwningKey}, SigningParties: []identity.Party{notary}},
		},
	}

	res, found := tx.GetTimestampBy(notary)
	require.True(t, found)
	require.Equal(t, ts, res)

	_, found = tx.GetTimestampBy(other)
	require.False(t, found)

	_, found = tx.GetTimestampBy(identity.Party{})
	require.False(t, found)
}

func TestTransactionForContract_GetTimestampByName(t *testing.T) {
	notary := identity.NewParty("Notary Service", ed25519.NewSigner().GetPublicKey())

	ts := NewTimestampAround(time.Now(), time.Second)

	tx := TransactionForContract{
		Commands: []AuthenticatedObject{
			{Value: ts, Signers: []crypto.PublicKey{notary.OwningKey}, SigningParties: []identity.Party{notary}},
		},
	}

	res, found, err := tx.GetTimestampByName("Bank A", "notary service")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ts, res)

	_, found, err = tx.GetTimestampByName("Bank A")
	require.EqualError(t, err,
		"timestamp command is not signed by a recognised timestamping authority")
	require.False(t, found)

	_, found, err = TransactionForContract{}.GetTimestampByName("Bank A")
	require.NoError(t, err)
	require.False(t, found)
}

func TestTimestampCommand_New(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)

	ts, err := NewTimestampCommand(&now, &later)
	require.NoError(t, err)

	mid, ok := ts.Midpoint()
	require.True(t, ok)
	require.True(t, mid.Equal(now.Add(30*time.Minute)))
	require.True(t, ts.Contains(now.Add(time.Minute)))
	require.False(t, ts.Contains(later.Add(time.Minute)))
	require.False(t, ts.Contains(now.Add(-time.Minute)))

	ts, err = NewTimestampCommand(nil, &later)
	require.NoError(t, err)

	_, ok = ts.Midpoint()
	require.False(t, ok)

	_, err = NewTimestampCommand(nil, nil)
	require.EqualError(t, err, "timestamp must have at least one bound")

	_, err = NewTimestampCommand(&later, &now)
	require.Error(t, err)
	require.Contains(t, err.Error(), "timestamp bounds are reversed")
}
