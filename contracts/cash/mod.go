// Package cash implements a fungible cash contract.
//
// Cash is a claim on an issuer for an amount of a currency. Cash states issued
// by different parties, or under different deposit references, are not
// fungible: the contract groups the states of a transaction by issuance and
// checks that each group is either a valid issuance or conserves its amount,
// minus what exits the ledger.
package cash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// LegalProse is the text the contract reference is the digest of.
const LegalProse = "https://www.big-book-of-banking-law.gov/cash-claims.html"

var reference = crypto.Digest(sha256.Sum256([]byte(LegalProse)))

func init() {
	contract.RegisterState(State{}, stateFactory{})
	contract.RegisterCommand(Issue{}, nil)
	contract.RegisterCommand(Move{}, nil)
	contract.RegisterCommand(Exit{}, exitFactory{})
}

// Currency is the product cash is denominated in.
//
// - implements contract.Token
type Currency struct {
	Code string
}

// Well-known currencies.
var (
	USD = Currency{Code: "USD"}
	EUR = Currency{Code: "EUR"}
	CHF = Currency{Code: "CHF"}
)

// Equal implements contract.Token.
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return c.Code
}

// IssuedAmount is an amount of a currency issued by a party.
type IssuedAmount = contract.Amount[contract.Issued[Currency]]

// Command is implemented by the commands of the contract.
type Command interface {
	contract.CommandData

	cash()
}

// Issue is the command to create cash. The nonce makes the transaction unique
// when it has no input.
type Issue struct {
	Nonce uint64
}

// NewIssue returns an issue command with a random nonce.
func NewIssue() Issue {
	buf := make([]byte, 8)

	_, err := rand.Read(buf)
	if err != nil {
		panic(fmt.Sprintf("failed to read random nonce: %v", err))
	}

	return Issue{Nonce: binary.LittleEndian.Uint64(buf)}
}

// Serialize implements serde.Message.
func (cmd Issue) Serialize(ctx serde.Context) ([]byte, error) {
	return ctx.Marshal(cmd)
}

func (Issue) cash() {}

// Move is the command to transfer cash to new owners.
type Move struct {
	contract.TypeOnly
}

func (Move) cash() {}

// Exit is the command to withdraw an amount from the ledger. It must be signed
// by the issuer.
type Exit struct {
	Amount IssuedAmount
}

func (Exit) cash() {}

// Contract is the cash contract.
//
// - implements contract.Contract
type Contract struct{}

// LegalContractReference implements contract.Contract.
func (Contract) LegalContractReference() crypto.Digest {
	return reference
}

// Verify implements contract.Contract. Every issuance group of the transaction
// must be valid.
func (Contract) Verify(tx contract.TransactionForContract) error {
	err := contract.RequireThat(
		contract.Require("there is at least one cash command", len(contract.Select[Command](tx.Commands)) > 0),
	)
	if err != nil {
		return err
	}

	groups := contract.GroupStates(tx, func(s State) string {
		return issuanceKey(s.Amount.Token)
	})

	for _, group := range groups {
		token := tokenOf(group)

		err := verifyGroup(tx, token, group)
		if err != nil {
			return xerrors.Errorf("%v: %v", token, err)
		}
	}

	return nil
}

func verifyGroup(tx contract.TransactionForContract, token contract.Issued[Currency],
	group contract.InOutGroup[State, string]) error {

	outputSum, err := contract.SumOrZero(token, amountsOf(group.Outputs))
	if err != nil {
		return xerrors.Errorf("outputs: %v", err)
	}

	err = contract.RequireThat(
		contract.Require("there are no zero sized outputs", allPositive(group.Outputs)),
	)
	if err != nil {
		return err
	}

	issuer := token.Issuer.Party.OwningKey

	if len(group.Inputs) == 0 {
		issues := contract.Select[Issue](tx.Commands)

		return contract.RequireThat(
			contract.Require("there is a single issue command", len(issues) == 1),
			contract.Require("output values sum to more than zero", outputSum.Quantity > 0),
			contract.Require("the issue command is signed by the issuer",
				len(issues) == 1 && issues[0].SignedBy(issuer)),
		)
	}

	inputSum, err := contract.SumOrError(amountsOf(group.Inputs))
	if err != nil {
		return xerrors.Errorf("inputs: %v", err)
	}

	exitSum, exitsSigned, err := exitsOf(tx, token)
	if err != nil {
		return err
	}

	balance, err := outputSum.Plus(exitSum)
	if err != nil {
		return xerrors.Errorf("balance: %v", err)
	}

	owners := crypto.NewKeySet()
	for _, input := range group.Inputs {
		owners.Add(input.Owner)
	}

	moveSigners := crypto.NewKeySet()
	for _, cmd := range contract.Select[Move](tx.Commands) {
		moveSigners.Add(cmd.Signers...)
	}

	return contract.RequireThat(
		contract.Require("there are no zero sized inputs", allPositive(group.Inputs)),
		contract.Require("the owning keys are a subset of the signing keys",
			!moveSigners.IsEmpty() && moveSigners.ContainsAll(owners)),
		contract.Require("the amounts balance", inputSum.Equal(balance)),
		contract.Require("the exit is signed by the issuer", exitsSigned),
	)
}

// exitsOf returns the sum of the amounts exited for the token, and whether the
// issuer signed all of those exits.
func exitsOf(tx contract.TransactionForContract, token contract.Issued[Currency]) (IssuedAmount, bool, error) {
	signed := true
	amounts := []IssuedAmount{}

	for _, cmd := range contract.Select[Exit](tx.Commands) {
		exit := cmd.Value.(Exit)
		if !exit.Amount.Token.Equal(token) {
			continue
		}

		amounts = append(amounts, exit.Amount)
		signed = signed && cmd.SignedBy(token.Issuer.Party.OwningKey)
	}

	sum, err := contract.SumOrZero(token, amounts)
	if err != nil {
		return IssuedAmount{}, false, xerrors.Errorf("exits: %v", err)
	}

	return sum, signed, nil
}

func tokenOf(group contract.InOutGroup[State, string]) contract.Issued[Currency] {
	if len(group.Inputs) > 0 {
		return group.Inputs[0].Amount.Token
	}

	return group.Outputs[0].Amount.Token
}

func amountsOf(states []State) []IssuedAmount {
	amounts := make([]IssuedAmount, len(states))
	for i, s := range states {
		amounts[i] = s.Amount
	}

	return amounts
}

func allPositive(states []State) bool {
	for _, s := range states {
		if s.Amount.Quantity <= 0 {
			return false
		}
	}

	return true
}

// issuanceKey returns a comparable identifier of the issuance.
func issuanceKey(token contract.Issued[Currency]) string {
	key := ""
	if token.Issuer.Party.OwningKey != nil {
		key = crypto.KeyOf(token.Issuer.Party.OwningKey)
	}

	return fmt.Sprintf("%s|%x|%s", key, token.Issuer.Reference, token.Product.Code)
}
