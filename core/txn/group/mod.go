// Package group implements the verification of a group of transactions.
//
// A group is made of the transactions to verify and of trusted roots that are
// only used to resolve the inputs coming from outside the group. The inputs of
// the whole group are first resolved and checked for double spends, which is a
// sequential step. The transactions are then verified independently from each
// other by a pool of workers.
package group

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// defines prometheus metrics
var (
	promGroupSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledgerkit_group_transactions",
		Help:    "number of transactions to verify in a group",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20, 30, 50, 100},
	})

	promConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledgerkit_group_conflicts_total",
		Help: "total number of double spends detected in groups",
	})

	promDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "ledgerkit_group_verification_seconds",
		Help: "duration of the verification of a group",
	})
)

func init() {
	ledgerkit.PromCollectors = append(ledgerkit.PromCollectors,
		promGroupSize, promConflicts, promDuration)
}

// Group is a set of transactions to verify backed by trusted roots.
type Group struct {
	toVerify []txn.LedgerTransaction
	roots    []txn.LedgerTransaction
	workers  int
}

// Option is the type of options to create a group.
type Option func(*Group)

// WithWorkers is an option to set the number of transactions verified in
// parallel. A value lower than one means there is no limit.
func WithWorkers(n int) Option {
	return func(g *Group) {
		g.workers = n
	}
}

// NewGroup returns a group of the transactions to verify. The roots are trusted
// and only used to resolve inputs. It returns an error if a transaction is in
// both sets.
func NewGroup(toVerify, roots []txn.LedgerTransaction, opts ...Option) (*Group, error) {
	ids := make(map[crypto.Digest]struct{}, len(toVerify))
	for _, tx := range toVerify {
		ids[tx.ID] = struct{}{}
	}

	for _, root := range roots {
		_, found := ids[root.ID]
		if found {
			return nil, xerrors.Errorf("transaction %v is both a root and to be verified", root.ID)
		}
	}

	g := &Group{
		toVerify: toVerify,
		roots:    roots,
		workers:  runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Len returns the number of transactions to verify.
func (g *Group) Len() int {
	return len(g.toVerify)
}

// Verify resolves the inputs of the transactions to verify and then verifies
// them. It returns the resolved transactions in the same order, or the first
// error encountered.
func (g *Group) Verify(ctx context.Context) ([]txn.TransactionForVerification, error) {
	logger := ledgerkit.Logger.With().Stringer("group", xid.New()).Logger()

	start := time.Now()
	defer func() {
		promDuration.Observe(time.Since(start).Seconds())
	}()

	promGroupSize.Observe(float64(len(g.toVerify)))

	resolved, err := g.resolve()
	if err != nil {
		logger.Debug().Err(err).Msg("group resolution failed")
		return nil, err
	}

	eg, ctx := errgroup.WithContext(ctx)

	if g.workers > 0 {
		eg.SetLimit(g.workers)
	}

	for _, tfv := range resolved {
		tfv := tfv

		eg.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err
			}

			return tfv.Verify()
		})
	}

	err = eg.Wait()
	if err != nil {
		logger.Debug().Err(err).Msg("group verification failed")
		return nil, err
	}

	logger.Debug().
		Int("transactions", len(resolved)).
		Int("roots", len(g.roots)).
		Dur("duration", time.Since(start)).
		Msg("group verified")

	return resolved, nil
}

// resolve dereferences the inputs of the transactions to verify and detects
// the states consumed twice.
func (g *Group) resolve() ([]txn.TransactionForVerification, error) {
	lookup := make(map[crypto.Digest]txn.LedgerTransaction, len(g.toVerify)+len(g.roots))
	for _, tx := range g.roots {
		lookup[tx.ID] = tx
	}
	for _, tx := range g.toVerify {
		lookup[tx.ID] = tx
	}

	consumers := make(map[contract.StateRef]crypto.Digest)
	resolved := make([]txn.TransactionForVerification, len(g.toVerify))

	for i, tx := range g.toVerify {
		inputs := make([]contract.StateAndRef, len(tx.Inputs))

		for j, ref := range tx.Inputs {
			first, found := consumers[ref]
			if found {
				promConflicts.Inc()

				return nil, txn.ConflictError{
					Ref:    ref,
					First:  first,
					Second: tx.ID,
				}
			}

			consumers[ref] = tx.ID

			producer, found := lookup[ref.TxID]
			if !found {
				return nil, txn.ResolutionError{TxID: tx.ID, Ref: ref}
			}

			input, err := producer.OutRef(ref.Index)
			if err != nil {
				return nil, txn.ResolutionError{TxID: tx.ID, Ref: ref, OutOfRange: true}
			}

			inputs[j] = input
		}

		tfv, err := tx.ToTransactionForVerification(inputs)
		if err != nil {
			return nil, xerrors.Errorf("couldn't resolve: %v", err)
		}

		resolved[i] = tfv
	}

	return resolved, nil
}
