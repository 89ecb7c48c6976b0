// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyFee  = "fee"
	StrategyFIFO = "fifo"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyFee:  feeSelect,
	StrategyFIFO: fifoSelect,
}

// Func defines a function that takes the pending transactions and selects
// howMany of them in an order based on the functions strategy. Receiving -1
// for howMany must return all the transactions in the strategies ordering.
// The function must not modify the slice it receives.
type Func func(pending []Pending, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// Pending is a transaction waiting for a block with the fee it leaves and
// the order it arrived in.
type Pending struct {
	Tx      database.Tx
	Fee     uint64
	Arrival uint64
}

// byArrival provides sorting support by the arrival order.
type byArrival []Pending

// Len returns the number of transactions in the list.
func (ba byArrival) Len() int {
	return len(ba)
}

// Less helps to sort the list by arrival in ascending order.
func (ba byArrival) Less(i, j int) bool {
	return ba[i].Arrival < ba[j].Arrival
}

// Swap moves transactions in the order of the arrival value.
func (ba byArrival) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}

// =============================================================================

// byFee provides sorting support by the transaction fee value.
type byFee []Pending

// Len returns the number of transactions in the list.
func (bf byFee) Len() int {
	return len(bf)
}

// Less helps to sort the list by fee in decending order to pick the
// transactions that provide the best reward. Equal fees keep arrival order.
func (bf byFee) Less(i, j int) bool {
	if bf[i].Fee != bf[j].Fee {
		return bf[i].Fee > bf[j].Fee
	}
	return bf[i].Arrival < bf[j].Arrival
}

// Swap moves transactions in the order of the fee value.
func (bf byFee) Swap(i, j int) {
	bf[i], bf[j] = bf[j], bf[i]
}

// =============================================================================

// take returns the first howMany transactions of the sorted list.
func take(sorted []Pending, howMany int) []database.Tx {
	if howMany < 0 || howMany > len(sorted) {
		howMany = len(sorted)
	}

	final := make([]database.Tx, howMany)
	for i := range final {
		final[i] = sorted[i].Tx
	}

	return final
}
