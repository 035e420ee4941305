package contract

import (
	"strings"

	"go.dedis.ch/ledgerkit/core/identity"
	"golang.org/x/xerrors"
)

// GetTimestampBy returns the timestamp command signed by the authority. It
// returns false if there is none, or if there is more than one.
func (tx TransactionForContract) GetTimestampBy(authority identity.Party) (TimestampCommand, bool) {
	if authority.OwningKey == nil {
		return TimestampCommand{}, false
	}

	selected := Select[TimestampCommand](tx.Commands, WithSigner(authority.OwningKey))
	if len(selected) != 1 {
		return TimestampCommand{}, false
	}

	return selected[0].Value.(TimestampCommand), true
}

// GetTimestampByName returns the timestamp command of the transaction if one of
// its signing parties has one of the names, compared case-insensitively. It
// returns false if there is not exactly one timestamp command, and an error if
// the command is not signed by one of the named parties.
//
// Deprecated: a name is not an identity. This is kept for contracts written
// against name-based timestamping authorities and it must not be used as a
// security boundary. Use GetTimestampBy instead.
func (tx TransactionForContract) GetTimestampByName(names ...string) (TimestampCommand, bool, error) {
	selected := Select[TimestampCommand](tx.Commands)
	if len(selected) != 1 {
		return TimestampCommand{}, false, nil
	}

	cmd := selected[0]

	for _, party := range cmd.SigningParties {
		for _, name := range names {
			if strings.EqualFold(party.Name, name) {
				return cmd.Value.(TimestampCommand), true, nil
			}
		}
	}

	return TimestampCommand{}, false,
		xerrors.New("timestamp command is not signed by a recognised timestamping authority")
}
