// Package search implements a backward search in the history of transactions.
//
// The search starts from the inputs of a set of transactions and walks toward
// their ancestors with a work list, so that deep histories do not grow the
// stack. Transactions missing from the store are skipped: the search is a
// diagnostic tool and the store may have pruned part of the history.
package search

import (
	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/contract"
	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/core/txn/storage"
	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// Query is the set of criteria a transaction must match to be returned by a
// search.
type Query struct {
	// withCommand returns true when the command data is of the queried type.
	withCommand func(contract.CommandData) bool

	// follow returns true when the input state must be followed.
	follow func(contract.ContractState) bool
}

// QueryOption is the type of options to create a query.
type QueryOption func(*Query)

// WithCommandOfType is an option to only return the transactions that have a
// command of type T. T can be an interface to match a family of commands.
func WithCommandOfType[T contract.CommandData]() QueryOption {
	return func(q *Query) {
		q.withCommand = func(data contract.CommandData) bool {
			_, ok := data.(T)
			return ok
		}
	}
}

// WithFollowInputsOfType is an option to only walk through the inputs whose
// state is of type T.
func WithFollowInputsOfType[T contract.ContractState]() QueryOption {
	return func(q *Query) {
		q.follow = func(state contract.ContractState) bool {
			_, ok := state.(T)
			return ok
		}
	}
}

// NewQuery returns a query with the criteria. A query without criteria
// matches every transaction.
func NewQuery(opts ...QueryOption) Query {
	q := Query{}

	for _, opt := range opts {
		opt(&q)
	}

	return q
}

// Matches returns true if the transaction matches the criteria.
func (q Query) Matches(wtx txn.WireTransaction) bool {
	if q.withCommand == nil {
		return true
	}

	for _, cmd := range wtx.GetCommands() {
		if q.withCommand(cmd.Value) {
			return true
		}
	}

	return false
}

// follows returns true if the output at the index must be followed.
func (q Query) follows(outputs []contract.TransactionState, index int) bool {
	if q.follow == nil {
		return true
	}

	return index >= 0 && index < len(outputs) && q.follow(outputs[index].Data)
}

// GraphSearch is a search through the ancestors of a set of transactions.
type GraphSearch struct {
	store  storage.Reader
	starts []txn.WireTransaction
	query  Query
}

// NewGraphSearch returns a search from the transactions, fetching the
// ancestors from the store.
func NewGraphSearch(store storage.Reader, starts []txn.WireTransaction, query Query) GraphSearch {
	return GraphSearch{
		store:  store,
		starts: starts,
		query:  query,
	}
}

// Call runs the search and returns the ancestors matching the query. Each
// ancestor is reported once even if it is reached through several paths. The
// starting transactions are never part of the result.
func (s GraphSearch) Call() ([]txn.WireTransaction, error) {
	results := []txn.WireTransaction{}

	visited := make(map[crypto.Digest]struct{})
	for _, wtx := range s.starts {
		visited[wtx.GetID()] = struct{}{}
	}

	next := []contract.StateRef{}
	for _, wtx := range s.starts {
		next = append(next, wtx.GetInputs()...)
	}

	for len(next) > 0 {
		ref := next[len(next)-1]
		next = next[:len(next)-1]

		_, seen := visited[ref.TxID]
		if seen {
			continue
		}

		stx, err := s.store.GetTransaction(ref.TxID)
		if storage.IsNotFound(err) {
			ledgerkit.Logger.Trace().Stringer("tx", ref.TxID).Msg("ancestor not found")
			continue
		}
		if err != nil {
			return nil, xerrors.Errorf("couldn't read transaction %v: %v", ref.TxID, err)
		}

		wtx, err := stx.GetWireTransaction()
		if err != nil {
			return nil, xerrors.Errorf("couldn't decode: %v", err)
		}

		if !s.query.follows(wtx.GetOutputs(), ref.Index) {
			continue
		}

		visited[ref.TxID] = struct{}{}

		if s.query.Matches(wtx) {
			results = append(results, wtx)
		}

		next = append(next, wtx.GetInputs()...)
	}

	return results, nil
}
