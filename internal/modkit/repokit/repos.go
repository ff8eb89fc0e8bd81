// Package repokit carries the tiny repo seams modules bind their SQL against
package repokit

import "vassist/internal/platform/store"

type (
	// Queryer is the minimal SQL surface a repo needs
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can also open transactions
	TxRunner = store.TxRunner
)
