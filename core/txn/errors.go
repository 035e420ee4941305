package txn

import (
	"fmt"
	"strings"

	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// ErrSigned is returned when a builder is modified after a signature was
// collected.
var ErrSigned = xerrors.New("transaction is frozen by a signature")

// Kind is the kind of a verification failure.
type Kind uint8

const (
	// SignersMissing means a key required to sign is missing from the signers.
	SignersMissing Kind = iota

	// MoreThanOneNotary means the inputs and the timestamp imply different
	// notaries.
	MoreThanOneNotary

	// ContractRejection means one of the contracts refused the transaction.
	ContractRejection

	// InvalidNotaryChange means a notary change transaction changes more than
	// the notary.
	InvalidNotaryChange

	// NotaryChangeInWrongTransactionType means a general transaction moves an
	// output to another notary.
	NotaryChangeInWrongTransactionType

	// InvalidTimestamp means the transaction has more than one timestamp.
	InvalidTimestamp
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case SignersMissing:
		return "SignersMissing"
	case MoreThanOneNotary:
		return "MoreThanOneNotary"
	case ContractRejection:
		return "ContractRejection"
	case InvalidNotaryChange:
		return "InvalidNotaryChange"
	case NotaryChangeInWrongTransactionType:
		return "NotaryChangeInWrongTransactionType"
	case InvalidTimestamp:
		return "InvalidTimestamp"
	default:
		return "Unknown"
	}
}

// VerificationError is returned when a transaction fails the verification. It
// carries the transaction and the details of the failure.
type VerificationError struct {
	Kind Kind
	Tx   TransactionForVerification

	// Keys are the missing signers, or the conflicting notaries.
	Keys []crypto.PublicKey

	// Contract is the contract that rejected the transaction.
	Contract contract.Contract

	// Output is the output that was moved to another notary.
	Output *contract.TransactionState

	Cause error
}

func (e VerificationError) Error() string {
	prefix := fmt.Sprintf("transaction %v", e.Tx.ID)

	switch e.Kind {
	case SignersMissing:
		return fmt.Sprintf("%s: signers missing: %v", prefix, crypto.NewKeySet(e.Keys...))
	case MoreThanOneNotary:
		return fmt.Sprintf("%s: more than one notary: %v", prefix, crypto.NewKeySet(e.Keys...))
	case ContractRejection:
		return fmt.Sprintf("%s: contract %T rejected the transaction: %v", prefix, e.Contract, e.Cause)
	case InvalidNotaryChange:
		return fmt.Sprintf("%s: invalid notary change: %v", prefix, e.Cause)
	case NotaryChangeInWrongTransactionType:
		return fmt.Sprintf("%s: output %v changes the notary in a %v transaction",
			prefix, e.Output, e.Tx.Type)
	case InvalidTimestamp:
		return fmt.Sprintf("%s: invalid timestamp: %v", prefix, e.Cause)
	default:
		return fmt.Sprintf("%s: verification failed: %v", prefix, e.Cause)
	}
}

// Unwrap returns the cause of the failure, if any.
func (e VerificationError) Unwrap() error {
	return e.Cause
}

// MissingSignaturesError is returned when signatures of required signers are
// missing from a transaction.
type MissingSignaturesError struct {
	TxID    crypto.Digest
	Missing []crypto.PublicKey

	// Descriptions tells for each missing key why it is required.
	Descriptions []string
}

func (e MissingSignaturesError) Error() string {
	return fmt.Sprintf("missing signatures on transaction %s for: %s",
		e.TxID.Prefix(), strings.Join(e.Descriptions, ", "))
}

// ResolutionError is returned when an input cannot be resolved to the output of
// a known transaction.
type ResolutionError struct {
	TxID crypto.Digest
	Ref  contract.StateRef

	// OutOfRange is true when the transaction is known but the index is out of
	// its outputs.
	OutOfRange bool
}

func (e ResolutionError) Error() string {
	if e.OutOfRange {
		return fmt.Sprintf("transaction %v: input %v is out of range", e.TxID, e.Ref)
	}

	return fmt.Sprintf("transaction %v: transaction %v of input %v is unknown", e.TxID, e.Ref.TxID, e.Ref)
}

// ConflictError is returned when two transactions consume the same state.
type ConflictError struct {
	Ref    contract.StateRef
	First  crypto.Digest
	Second crypto.Digest
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %v: consumed by both %v and %v", e.Ref, e.First, e.Second)
}
