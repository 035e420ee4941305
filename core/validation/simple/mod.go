// Package simple implements a validation service that fetches the history of
// the transactions from a transaction store.
package simple

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/attachment"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/core/txn/group"
	"go.dedis.ch/ledgerkit/core/txn/storage"
	"go.dedis.ch/ledgerkit/core/validation"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// defines prometheus metrics
var (
	promVerified = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledgerkit_validation_verified_total",
		Help: "total number of transactions accepted by the validation service",
	})

	promRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerkit_validation_rejected_total",
		Help: "total number of transactions rejected by the validation service",
	}, []string{"kind"})
)

func init() {
	ledgerkit.PromCollectors = append(ledgerkit.PromCollectors,
		promVerified, promRejected)
}

// Service is a validation service that verifies a transaction together with
// its history up to a maximum depth. The ancestors beyond that depth are
// trusted.
//
// - implements validation.Service
type Service struct {
	identities  identity.Service
	attachments attachment.Storage
	store       storage.Reader
	workers     int
	maxDepth    int
}

// ServiceOption is the type of options to create a service.
type ServiceOption func(*Service)

// WithWorkers is an option to set the number of transactions of a group
// verified in parallel. Zero keeps the default of the group and a negative
// value means there is no limit.
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		s.workers = n
	}
}

// WithMaxDepth is an option to set the number of generations of ancestors that
// are verified. The generation right after is only used to resolve the inputs.
// Zero means the whole history is verified.
func WithMaxDepth(depth int) ServiceOption {
	return func(s *Service) {
		s.maxDepth = depth
	}
}

// NewService creates a new validation service.
func NewService(identities identity.Service, attachments attachment.Storage,
	store storage.Reader, opts ...ServiceOption) Service {

	s := Service{
		identities:  identities,
		attachments: attachments,
		store:       store,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// Verify implements validation.Service. It verifies the signatures of the
// transaction, fetches its history from the store and verifies the whole as a
// group. Ancestors missing from the store are not fetched, so that an input
// they produce fails the resolution.
func (s Service) Verify(ctx context.Context, stx txn.SignedTransaction) (txn.TransactionForVerification, error) {
	tfv, err := s.verify(ctx, stx)
	if err != nil {
		promRejected.WithLabelValues(kindOf(err)).Inc()

		ledgerkit.Logger.Warn().
			Stringer("tx", stx.GetID()).
			Err(err).
			Msg("transaction rejected")

		return txn.TransactionForVerification{}, err
	}

	promVerified.Inc()

	return tfv, nil
}

// Validate implements validation.Service. It verifies the transactions one by
// one and stops only if the context is done.
func (s Service) Validate(ctx context.Context, txs []txn.SignedTransaction) (validation.Result, error) {
	results := make([]TransactionResult, len(txs))

	for i, stx := range txs {
		_, err := s.Verify(ctx, stx)

		// This is a critical error unrelated to the transaction itself.
		if ctx.Err() != nil {
			return nil, xerrors.Errorf("validation interrupted at tx %v: %v", stx.GetID(), ctx.Err())
		}

		if err != nil {
			results[i] = NewTransactionResult(stx, false, err.Error())
		} else {
			results[i] = NewTransactionResult(stx, true, "")
		}
	}

	return NewResult(results), nil
}

func (s Service) verify(ctx context.Context, stx txn.SignedTransaction) (txn.TransactionForVerification, error) {
	ltx, err := stx.VerifyToLedgerTransaction(s.identities, s.attachments)
	if err != nil {
		return txn.TransactionForVerification{}, err
	}

	toVerify, roots, err := s.fetchHistory(ltx)
	if err != nil {
		return txn.TransactionForVerification{}, xerrors.Errorf("couldn't fetch history: %w", err)
	}

	opts := []group.Option{}
	if s.workers != 0 {
		opts = append(opts, group.WithWorkers(s.workers))
	}

	g, err := group.NewGroup(toVerify, roots, opts...)
	if err != nil {
		return txn.TransactionForVerification{}, err
	}

	resolved, err := g.Verify(ctx)
	if err != nil {
		return txn.TransactionForVerification{}, err
	}

	return resolved[0], nil
}

// fetchHistory walks the ancestors of the transaction generation by
// generation. The transaction comes first in the list to verify.
func (s Service) fetchHistory(ltx txn.LedgerTransaction) ([]txn.LedgerTransaction, []txn.LedgerTransaction, error) {
	toVerify := []txn.LedgerTransaction{ltx}
	roots := []txn.LedgerTransaction{}

	visited := map[crypto.Digest]struct{}{ltx.ID: {}}
	frontier := parentsOf(ltx)

	for depth := 1; len(frontier) > 0; depth++ {
		next := []crypto.Digest{}

		for _, id := range frontier {
			_, found := visited[id]
			if found {
				continue
			}

			visited[id] = struct{}{}

			stx, err := s.store.GetTransaction(id)
			if storage.IsNotFound(err) {
				ledgerkit.Logger.Trace().Stringer("tx", id).Msg("ancestor not in store")
				continue
			}
			if err != nil {
				return nil, nil, xerrors.Errorf("couldn't read ancestor: %v", err)
			}

			if s.maxDepth > 0 && depth > s.maxDepth {
				root, err := s.toRoot(stx)
				if err != nil {
					return nil, nil, err
				}

				roots = append(roots, root)
				continue
			}

			anc, err := stx.VerifyToLedgerTransaction(s.identities, s.attachments)
			if err != nil {
				return nil, nil, xerrors.Errorf("ancestor %v: %w", id, err)
			}

			toVerify = append(toVerify, anc)
			next = append(next, parentsOf(anc)...)
		}

		frontier = next
	}

	return toVerify, roots, nil
}

func (s Service) toRoot(stx txn.SignedTransaction) (txn.LedgerTransaction, error) {
	wtx, err := stx.GetWireTransaction()
	if err != nil {
		return txn.LedgerTransaction{}, xerrors.Errorf("root %v: %v", stx.GetID(), err)
	}

	ltx, err := wtx.ToLedgerTransaction(s.identities, s.attachments)
	if err != nil {
		return txn.LedgerTransaction{}, xerrors.Errorf("root %v: %w", stx.GetID(), err)
	}

	return ltx, nil
}

func parentsOf(ltx txn.LedgerTransaction) []crypto.Digest {
	ids := make([]crypto.Digest, len(ltx.Inputs))
	for i, ref := range ltx.Inputs {
		ids[i] = ref.TxID
	}

	return ids
}

// kindOf returns the label of the failure for the metrics.
func kindOf(err error) string {
	var verr txn.VerificationError
	if xerrors.As(err, &verr) {
		return verr.Kind.String()
	}

	var merr txn.MissingSignaturesError
	if xerrors.As(err, &merr) {
		return "MissingSignatures"
	}

	var rerr txn.ResolutionError
	if xerrors.As(err, &rerr) {
		return "Resolution"
	}

	var cerr txn.ConflictError
	if xerrors.As(err, &cerr) {
		return "Conflict"
	}

	if attachment.IsNotFound(err) {
		return "AttachmentNotFound"
	}

	return "Other"
}
