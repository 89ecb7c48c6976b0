package selector

import (
	"sort"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// feeSelect returns the transactions leaving the best fee. Transactions with
// the same fee are taken in the order they arrived.
var feeSelect = func(pending []Pending, howMany int) []database.Tx {
	list := make([]Pending, len(pending))
	copy(list, pending)

	/*
		{Fee: 10, Arrival: 1}, {Fee: 50, Arrival: 2}, {Fee: 10, Arrival: 3}, {Fee: 100, Arrival: 4}
		=>
		{Fee: 100, Arrival: 4}, {Fee: 50, Arrival: 2}, {Fee: 10, Arrival: 1}, {Fee: 10, Arrival: 3}
	*/
	sort.Sort(byFee(list))

	return take(list, howMany)
}
