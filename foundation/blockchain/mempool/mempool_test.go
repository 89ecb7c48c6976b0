package mempool_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newTx(id string, outpoints ...database.Outpoint) database.Tx {
	tx := database.NewTx(outpoints, []database.TxOutput{{Address: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Amount: 1}})
	tx.ID = id
	return tx
}

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
		fees []uint64
		best []string
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				newTx("0x02", database.Outpoint{TxID: "0xaa", Index: 0}),
				newTx("0x03", database.Outpoint{TxID: "0xaa", Index: 1}),
				newTx("0x04", database.Outpoint{TxID: "0xbb", Index: 0}),
				newTx("0x01", database.Outpoint{TxID: "0xcc", Index: 0}),
			},
			fees: []uint64{10, 50, 100, 10},
			best: []string{"0x04", "0x03", "0x02", "0x01"},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp, err := mempool.New()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %s", failed, testID, err)
					}

					for i, tx := range tst.txs {
						if _, err := mp.Upsert(tx, tst.fees[i]); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %s", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx.ID)
					}

					for i, tx := range mp.Copy() {
						if tx.ID != tst.txs[i].ID {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.ID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i].ID)
							t.Fatalf("\t%s\tTest %d:\tShould get back the arrival order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the arrival order.", success, testID)

					for i, tx := range mp.PickBest(4) {
						if tx.ID != tst.best[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.ID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.best[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the best fee.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the best fee.", success, testID)

					if fees := mp.Fees(mp.PickBest(2)); fees != 150 {
						t.Fatalf("\t%s\tTest %d:\tShould total the fees: got %d", failed, testID, fees)
					}
					t.Logf("\t%s\tTest %d:\tShould total the fees.", success, testID)

					mp.Delete(tst.txs[1].ID)
					if mp.Count() != 3 || mp.Claimed(tst.txs[1].Inputs[0].Outpoint) {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove a transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to remove a transaction.", success, testID)

					mp.Truncate()
					if l := len(mp.Copy()); l != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestConflicts(t *testing.T) {
	t.Log("Given the need to keep conflicting transactions out of the mempool.")
	{
		mp, err := mempool.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the mempool: %s", failed, err)
		}

		op := database.Outpoint{TxID: "0xaa", Index: 0}
		if _, err := mp.Upsert(newTx("0x01", op), 1); err != nil {
			t.Fatalf("\t%s\tShould be able to add a transaction: %s", failed, err)
		}

		if !mp.Claimed(op) {
			t.Fatalf("\t%s\tShould mark the outpoint as claimed.", failed)
		}
		t.Logf("\t%s\tShould mark the outpoint as claimed.", success)

		if _, err := mp.Upsert(newTx("0x01", op), 1); !errors.Is(err, database.ErrReplay) {
			t.Fatalf("\t%s\tShould reject the same transaction twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the same transaction twice.", success)

		if _, err := mp.Upsert(newTx("0x02", database.Outpoint{TxID: "0xbb"}, op), 1); !errors.Is(err, database.ErrDoubleSpend) {
			t.Fatalf("\t%s\tShould reject spending a claimed outpoint: %v", failed, err)
		}
		if mp.Claimed(database.Outpoint{TxID: "0xbb"}) {
			t.Fatalf("\t%s\tShould not claim anything for a rejected transaction.", failed)
		}
		t.Logf("\t%s\tShould reject spending a claimed outpoint.", success)

		if _, err := mempool.NewWithStrategy("random"); err == nil {
			t.Fatalf("\t%s\tShould reject an unknown strategy.", failed)
		}
		t.Logf("\t%s\tShould reject an unknown strategy.", success)
	}
}
