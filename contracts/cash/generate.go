package cash

import (
	"fmt"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// InsufficientBalanceError is returned when the states cannot cover an amount.
type InsufficientBalanceError struct {
	Missing int64
	Token   contract.Issued[Currency]
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: missing %d %v", e.Missing, e.Token)
}

// GenerateIssue adds to the builder the issuance of the amount to the owner.
// The issuer must sign the transaction.
func GenerateIssue(b *txn.Builder, amount IssuedAmount, owner crypto.PublicKey, notary identity.Party) error {
	if amount.Quantity <= 0 {
		return xerrors.Errorf("cannot issue %d", amount.Quantity)
	}

	_, err := b.AddOutputStateWithNotary(State{Amount: amount, Owner: owner}, notary)
	if err != nil {
		return xerrors.Errorf("couldn't add output: %v", err)
	}

	err = b.AddCommand(NewIssue(), amount.Token.Issuer.Party.OwningKey)
	if err != nil {
		return xerrors.Errorf("couldn't add command: %v", err)
	}

	return nil
}

// GenerateSpend adds to the builder the move of the quantity of the issued
// token to the recipient. The states of the token are consumed in order until
// the quantity is gathered, and the change goes back to the change key. It
// returns the keys that must sign the transaction.
func GenerateSpend(b *txn.Builder, quantity int64, token contract.Issued[Currency],
	to, change crypto.PublicKey, states []contract.StateAndRef) ([]crypto.PublicKey, error) {

	gathered, total, err := gather(quantity, token, states)
	if err != nil {
		return nil, err
	}

	owners := crypto.NewKeySet()

	for _, input := range gathered {
		err = b.AddInputState(input)
		if err != nil {
			return nil, xerrors.Errorf("couldn't add input: %v", err)
		}

		owners.Add(input.State.Data.(State).Owner)
	}

	notary := gathered[0].State.Notary

	payment := State{Amount: IssuedAmount{Quantity: quantity, Token: token}, Owner: to}

	_, err = b.AddOutputStateWithNotary(payment, notary)
	if err != nil {
		return nil, xerrors.Errorf("couldn't add output: %v", err)
	}

	if total > quantity {
		rest := State{Amount: IssuedAmount{Quantity: total - quantity, Token: token}, Owner: change}

		_, err = b.AddOutputStateWithNotary(rest, notary)
		if err != nil {
			return nil, xerrors.Errorf("couldn't add change: %v", err)
		}
	}

	err = b.AddCommand(Move{}, owners.Slice()...)
	if err != nil {
		return nil, xerrors.Errorf("couldn't add command: %v", err)
	}

	return owners.Slice(), nil
}

// GenerateExit adds to the builder the withdrawal of the amount from the
// ledger. The states of the token are consumed in order and the change goes
// back to the change key. It returns the key of the issuer, which must sign the
// transaction along with the owners.
func GenerateExit(b *txn.Builder, amount IssuedAmount, change crypto.PublicKey,
	states []contract.StateAndRef) (crypto.PublicKey, error) {

	gathered, total, err := gather(amount.Quantity, amount.Token, states)
	if err != nil {
		return nil, err
	}

	owners := crypto.NewKeySet()

	for _, input := range gathered {
		err = b.AddInputState(input)
		if err != nil {
			return nil, xerrors.Errorf("couldn't add input: %v", err)
		}

		owners.Add(input.State.Data.(State).Owner)
	}

	if total > amount.Quantity {
		rest := State{Amount: IssuedAmount{Quantity: total - amount.Quantity, Token: amount.Token}, Owner: change}

		_, err = b.AddOutputStateWithNotary(rest, gathered[0].State.Notary)
		if err != nil {
			return nil, xerrors.Errorf("couldn't add change: %v", err)
		}
	}

	issuer := amount.Token.Issuer.Party.OwningKey

	err = b.AddCommand(Exit{Amount: amount}, issuer)
	if err != nil {
		return nil, xerrors.Errorf("couldn't add command: %v", err)
	}

	err = b.AddCommand(Move{}, owners.Slice()...)
	if err != nil {
		return nil, xerrors.Errorf("couldn't add command: %v", err)
	}

	return issuer, nil
}

// gather returns the cash states of the token, all under the notary of the
// first one, that are needed to cover the quantity.
func gather(quantity int64, token contract.Issued[Currency],
	states []contract.StateAndRef) ([]contract.StateAndRef, int64, error) {

	if quantity <= 0 {
		return nil, 0, xerrors.Errorf("cannot move %d", quantity)
	}

	gathered := []contract.StateAndRef{}
	total := int64(0)

	for _, candidate := range states {
		if total >= quantity {
			break
		}

		state, ok := candidate.State.Data.(State)
		if !ok || !state.Amount.Token.Equal(token) {
			continue
		}

		if len(gathered) > 0 && !candidate.State.Notary.Equal(gathered[0].State.Notary) {
			continue
		}

		gathered = append(gathered, candidate)
		total += state.Amount.Quantity
	}

	if total < quantity {
		return nil, 0, InsufficientBalanceError{Missing: quantity - total, Token: token}
	}

	return gathered, total, nil
}
