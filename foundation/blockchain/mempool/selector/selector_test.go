package selector_test

import (
	"testing"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/mempool/selector"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestSelect(t *testing.T) {
	pending := []selector.Pending{
		{Tx: database.Tx{ID: "0x01"}, Fee: 10, Arrival: 3},
		{Tx: database.Tx{ID: "0x02"}, Fee: 50, Arrival: 1},
		{Tx: database.Tx{ID: "0x03"}, Fee: 10, Arrival: 2},
		{Tx: database.Tx{ID: "0x04"}, Fee: 100, Arrival: 4},
	}

	type table struct {
		name     string
		strategy string
		howMany  int
		best     []string
	}

	tt := []table{
		{name: "fee", strategy: selector.StrategyFee, howMany: -1, best: []string{"0x04", "0x02", "0x03", "0x01"}},
		{name: "feetwo", strategy: selector.StrategyFee, howMany: 2, best: []string{"0x04", "0x02"}},
		{name: "fifo", strategy: selector.StrategyFIFO, howMany: -1, best: []string{"0x02", "0x03", "0x01", "0x04"}},
		{name: "fifomore", strategy: selector.StrategyFIFO, howMany: 10, best: []string{"0x02", "0x03", "0x01", "0x04"}},
	}

	t.Log("Given the need to select the best transactions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen using the %s strategy.", testID, tst.name)
				{
					fn, err := selector.Retrieve(tst.strategy)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to retrieve the strategy: %s", failed, testID, err)
					}

					got := fn(pending, tst.howMany)
					if len(got) != len(tst.best) {
						t.Fatalf("\t%s\tTest %d:\tShould get %d transactions: got %d", failed, testID, len(tst.best), len(got))
					}

					for i, tx := range got {
						if tx.ID != tst.best[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.ID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.best[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the right order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right order.", success, testID)

					if pending[0].Tx.ID != "0x01" {
						t.Fatalf("\t%s\tTest %d:\tShould not modify the input.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not modify the input.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
