// Package json defines the JSON messages for the validation results.
package json

import (
	"encoding/json"

	"go.dedis.ch/ledgerkit/core/txn"
	"go.dedis.ch/ledgerkit/core/validation/simple"
	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"

	// Signed transactions are embedded in the results.
	_ "go.dedis.ch/ledgerkit/core/txn/json"
)

func init() {
	simple.RegisterTransactionResultFormat(serde.FormatJSON, txResFormat{})
	simple.RegisterResultFormat(serde.FormatJSON, resFormat{})
}

// TransactionResultJSON is the JSON message for transaction results.
type TransactionResultJSON struct {
	Transaction json.RawMessage
	Accepted    bool
	Reason      string `json:",omitempty"`
}

// ResultJSON is the JSON message for results.
type ResultJSON struct {
	Results []json.RawMessage
}

type txResFormat struct{}

func (f txResFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	txres, ok := msg.(simple.TransactionResult)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	tx, err := txres.GetTransaction().Serialize(ctx)
	if err != nil {
		return nil, xerrors.Errorf("couldn't serialize tx: %v", err)
	}

	accepted, reason := txres.GetStatus()

	m := TransactionResultJSON{
		Transaction: tx,
		Accepted:    accepted,
		Reason:      reason,
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

func (f txResFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := TransactionResultJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	fac, err := serde.FactoryOf[txn.SignedFactory](ctx, simple.TransactionKey{})
	if err != nil {
		return nil, xerrors.Errorf("transaction: %v", err)
	}

	tx, err := fac.SignedTransactionOf(ctx, m.Transaction)
	if err != nil {
		return nil, xerrors.Errorf("couldn't deserialize tx: %v", err)
	}

	res := simple.NewTransactionResult(tx, m.Accepted, m.Reason)

	return res, nil
}

type resFormat struct{}

func (f resFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	res, ok := msg.(simple.Result)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	results := res.GetTransactionResults()
	raws := make([]json.RawMessage, len(results))

	for i, res := range results {
		buffer, err := res.Serialize(ctx)
		if err != nil {
			return nil, xerrors.Errorf("result %d: %v", i, err)
		}

		raws[i] = buffer
	}

	m := ResultJSON{
		Results: raws,
	}

	buffer, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return buffer, nil
}

func (f resFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := ResultJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	factory := ctx.GetFactory(simple.ResultKey{})
	if factory == nil {
		return nil, xerrors.New("missing transaction result factory")
	}

	results := make([]simple.TransactionResult, len(m.Results))
	for i, raw := range m.Results {
		msg, err := factory.Deserialize(ctx, raw)
		if err != nil {
			return nil, xerrors.Errorf("result %d: %v", i, err)
		}

		res, ok := msg.(simple.TransactionResult)
		if !ok {
			return nil, xerrors.Errorf("result %d: invalid message of type '%T'", i, msg)
		}

		results[i] = res
	}

	res := simple.NewResult(results)

	return res, nil
}
