// Package validation defines the service that decides whether signed
// transactions are valid state transitions.
//
// A transaction is valid when its signatures are, when its inputs resolve to
// unspent outputs of its known history, and when it passes the verification of
// its type, including the contracts of its states. The history is verified
// along with the transaction, up to a configurable depth.
package validation

import (
	"context"

	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde"
)

// TransactionResult is the outcome of the validation of a single transaction.
type TransactionResult interface {
	serde.Message

	// GetTransactionID returns the identifier of the validated transaction.
	GetTransactionID() crypto.Digest

	// GetStatus returns true if the transaction is valid, otherwise false
	// with the reason.
	GetStatus() (bool, string)
}

// Result is the outcome of the validation of a batch of transactions.
type Result interface {
	serde.Message
	serde.Fingerprinter

	GetTransactionResults() []TransactionResult
}

// ResultFactory is the factory to deserialize results.
type ResultFactory interface {
	serde.Factory

	ResultOf(ctx serde.Context, data []byte) (Result, error)
}

// Service is the validation service.
type Service interface {
	// Verify returns the resolved view of the transaction if it is valid,
	// otherwise it returns the reason why it is not.
	Verify(ctx context.Context, stx txn.SignedTransaction) (txn.TransactionForVerification, error)

	// Validate verifies each transaction of the batch independently and
	// returns the outcomes. The error is reserved for failures unrelated to
	// the transactions themselves.
	Validate(ctx context.Context, txs []txn.SignedTransaction) (Result, error)
}
