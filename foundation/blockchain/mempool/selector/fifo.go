package selector

import (
	"sort"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// fifoSelect returns the transactions in the order they arrived.
var fifoSelect = func(pending []Pending, howMany int) []database.Tx {
	list := make([]Pending, len(pending))
	copy(list, pending)

	sort.Sort(byArrival(list))

	return take(list, howMany)
}
