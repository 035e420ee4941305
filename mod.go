// Package ledgerkit is the transaction verification core of a permissioned
// ledger. It defines what a transaction is, how it is built and signed, how it
// is resolved against its dependencies and how it is verified as a valid state
// transition.
package ledgerkit

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes the prometheus collectors created by the packages of
// the module. An application is free to register them into its own registry.
var PromCollectors []prometheus.Collector
