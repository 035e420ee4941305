package dummy

import (
	"io"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/crypto/common"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

func init() {
	contract.RegisterState(Deal{}, dealFactory{})
}

// Deal is a dummy agreement between parties that evolves along a thread of
// transactions.
//
// - implements contract.DealState
type Deal struct {
	Ref     string
	Thread  crypto.Digest
	Parties []identity.Party
}

// GetContract implements contract.ContractState.
func (d Deal) GetContract() contract.Contract {
	return Contract{}
}

// GetParticipants implements contract.ContractState. It returns the keys of
// the parties.
func (d Deal) GetParticipants() []crypto.PublicKey {
	keys := make([]crypto.PublicKey, len(d.Parties))
	for i, p := range d.Parties {
		keys[i] = p.OwningKey
	}

	return keys
}

// GetThread implements contract.LinearState.
func (d Deal) GetThread() crypto.Digest {
	return d.Thread
}

// IsRelevant implements contract.LinearState. A deal is relevant to any of the
// keys of its parties.
func (d Deal) IsRelevant(keys crypto.KeySet) bool {
	for _, p := range d.Parties {
		if keys.Contains(p.OwningKey) {
			return true
		}
	}

	return false
}

// GetRef implements contract.DealState.
func (d Deal) GetRef() string {
	return d.Ref
}

// GetParties implements contract.DealState.
func (d Deal) GetParties() []identity.Party {
	return append([]identity.Party{}, d.Parties...)
}

// Serialize implements serde.Message.
func (d Deal) Serialize(ctx serde.Context) ([]byte, error) {
	m := dealMessage{
		Ref:     d.Ref,
		Thread:  d.Thread,
		Parties: make([]partyMessage, len(d.Parties)),
	}

	for i, p := range d.Parties {
		key, err := common.TagPublicKey(p.OwningKey)
		if err != nil {
			return nil, xerrors.Errorf("party %d: %v", i, err)
		}

		m.Parties[i] = partyMessage{Name: p.Name, Key: key}
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Fingerprint implements serde.Fingerprinter. It writes the reference, the
// thread and the keys of the parties.
func (d Deal) Fingerprint(w io.Writer) error {
	_, err := w.Write([]byte(d.Ref))
	if err != nil {
		return xerrors.Errorf("couldn't write ref: %v", err)
	}

	_, err = w.Write(d.Thread[:])
	if err != nil {
		return xerrors.Errorf("couldn't write thread: %v", err)
	}

	for _, p := range d.Parties {
		data, err := p.OwningKey.MarshalBinary()
		if err != nil {
			return xerrors.Errorf("couldn't marshal key: %v", err)
		}

		_, err = w.Write(data)
		if err != nil {
			return xerrors.Errorf("couldn't write key: %v", err)
		}
	}

	return nil
}

type partyMessage struct {
	Name string
	Key  common.TaggedData
}

type dealMessage struct {
	Ref     string
	Thread  crypto.Digest
	Parties []partyMessage
}

// dealFactory is the factory of deals.
//
// - implements serde.Factory
type dealFactory struct{}

// Deserialize implements serde.Factory.
func (dealFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	m := dealMessage{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	fac := common.NewPublicKeyFactory()

	deal := Deal{
		Ref:     m.Ref,
		Thread:  m.Thread,
		Parties: make([]identity.Party, len(m.Parties)),
	}

	for i, p := range m.Parties {
		key, err := fac.PublicKeyOf(p.Key)
		if err != nil {
			return nil, xerrors.Errorf("party %d: %v", i, err)
		}

		deal.Parties[i] = identity.NewParty(p.Name, key)
	}

	return deal, nil
}
