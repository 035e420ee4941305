package contract

import (
	"time"

	"go.dedis.ch/ledgerkit/serde"
	"golang.org/x/xerrors"
)

// TimestampCommand asserts that the transaction happened within a window of
// time. The signer of the command is the timestamping authority, which is the
// notary of the transaction.
type TimestampCommand struct {
	After  *time.Time `json:",omitempty"`
	Before *time.Time `json:",omitempty"`
}

// NewTimestampCommand returns a timestamp bounded by the two instants. It
// returns an error if both are missing or if they are reversed.
func NewTimestampCommand(after, before *time.Time) (TimestampCommand, error) {
	if after == nil && before == nil {
		return TimestampCommand{}, xerrors.New("timestamp must have at least one bound")
	}

	if after != nil && before != nil && after.After(*before) {
		return TimestampCommand{}, xerrors.Errorf("timestamp bounds are reversed: %v > %v",
			after, before)
	}

	ts := TimestampCommand{
		After:  utc(after),
		Before: utc(before),
	}

	return ts, nil
}

// NewTimestampAround returns a timestamp centered on the instant, that allows
// the tolerance on both sides.
func NewTimestampAround(t time.Time, tolerance time.Duration) TimestampCommand {
	if tolerance < 0 {
		tolerance = -tolerance
	}

	after := t.Add(-tolerance)
	before := t.Add(tolerance)

	return TimestampCommand{
		After:  utc(&after),
		Before: utc(&before),
	}
}

// Midpoint returns the instant in the middle of the window. It returns false
// if the window is open on one side.
func (ts TimestampCommand) Midpoint() (time.Time, bool) {
	if ts.After == nil || ts.Before == nil {
		return time.Time{}, false
	}

	return ts.After.Add(ts.Before.Sub(*ts.After) / 2), true
}

// Contains returns true if the instant is inside the window.
func (ts TimestampCommand) Contains(t time.Time) bool {
	if ts.After != nil && t.Before(*ts.After) {
		return false
	}

	if ts.Before != nil && t.After(*ts.Before) {
		return false
	}

	return true
}

// Serialize implements serde.Message.
func (ts TimestampCommand) Serialize(ctx serde.Context) ([]byte, error) {
	data, err := ctx.Marshal(ts)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// timestampFactory deserializes timestamp commands and checks the bounds.
//
// - implements serde.Factory
type timestampFactory struct{}

// Deserialize implements serde.Factory.
func (timestampFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	var ts TimestampCommand

	err := ctx.Unmarshal(data, &ts)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal: %v", err)
	}

	ts, err = NewTimestampCommand(ts.After, ts.Before)
	if err != nil {
		return nil, xerrors.Errorf("invalid timestamp: %v", err)
	}

	return ts, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	res := t.UTC().Round(0)

	return &res
}
