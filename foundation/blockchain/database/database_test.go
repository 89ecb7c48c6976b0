package database_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkMiner = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkOther = "aed31b6b5a341af8f27e66fb0b7633cf20fc27049e3eb7f6f623a4655b719ebb"
)

// =============================================================================

type ledger struct {
	h     *hasher.Hasher
	gen   genesis.Genesis
	db    *database.Database
	strg  *memory.Memory
	miner *ecdsa.PrivateKey
	other *ecdsa.PrivateKey
}

func newLedger(t *testing.T) ledger {
	t.Helper()

	gen := genesis.Default()
	gen.Mining.MiningReward = 50

	miner, err := crypto.HexToECDSA(pkMiner)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the miner key: %s", failed, err)
	}

	other, err := crypto.HexToECDSA(pkOther)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the other key: %s", failed, err)
	}

	h := hasher.New()
	strg := memory.New()

	db, err := database.New(h, gen, strg, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the database: %s", failed, err)
	}

	return ledger{
		h:     h,
		gen:   gen,
		db:    db,
		strg:  strg,
		miner: miner,
		other: other,
	}
}

func address(pk *ecdsa.PrivateKey) string {
	return signature.PublicKeyToAddress(pk.PublicKey)
}

// mine builds a block paying the reward plus the fees to the miner.
func (l ledger) mine(t *testing.T, fees uint64, trans ...database.Tx) database.Block {
	t.Helper()

	latest := l.db.LatestBlock()
	height := latest.Header.Index + 1

	reward := database.NewRewardTx(l.h, height, address(l.miner), l.gen.Mining.MiningReward+fees)

	block, err := database.POW(context.Background(), database.POWArgs{
		Hasher:    l.h,
		PrevBlock: latest,
		Target:    l.db.NextTarget(),
		Trans:     append([]database.Tx{reward}, trans...),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine block %d: %s", failed, height, err)
	}

	return block
}

// spend signs a transaction spending the outpoints with the key.
func (l ledger) spend(t *testing.T, pk *ecdsa.PrivateKey, outpoints []database.Outpoint, outputs ...database.TxOutput) database.Tx {
	t.Helper()

	keys := make([]*ecdsa.PrivateKey, len(outpoints))
	for i := range keys {
		keys[i] = pk
	}

	tx, err := database.NewTx(outpoints, outputs).Sign(l.h, keys)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %s", failed, err)
	}

	return tx
}

// =============================================================================

func Test_Coinbase(t *testing.T) {
	t.Log("Given the need to mine a block with only a reward.")
	{
		l := newLedger(t)

		block := l.mine(t, 0)
		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould be able to append the block: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to append the block.", success)

		if got := l.db.Balance(address(l.miner)); got != 50 {
			t.Fatalf("\t%s\tShould credit the miner with 50: got %d", failed, got)
		}
		t.Logf("\t%s\tShould credit the miner with 50.", success)

		unspent := l.db.UnspentForAddress(address(l.miner))
		if len(unspent) != 1 || unspent[0].TxID != block.Trans[0].ID {
			t.Fatalf("\t%s\tShould have the reward as the only unspent output: %v", failed, unspent)
		}
		t.Logf("\t%s\tShould have the reward as the only unspent output.", success)

		if got := l.db.Supply(); got != 50 {
			t.Fatalf("\t%s\tShould have a supply of 50: got %d", failed, got)
		}
		t.Logf("\t%s\tShould have a supply of 50.", success)

		if !l.db.HasTx(block.Trans[0].ID) {
			t.Fatalf("\t%s\tShould index the reward transaction.", failed)
		}
		t.Logf("\t%s\tShould index the reward transaction.", success)
	}
}

func Test_Transfer(t *testing.T) {
	t.Log("Given the need to transfer value between addresses.")
	{
		l := newLedger(t)

		block := l.mine(t, 0)
		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould be able to append block 1: %s", failed, err)
		}
		reward := block.Trans[0]
		op := database.Outpoint{TxID: reward.ID, Index: 0}

		tx := l.spend(t, l.miner, []database.Outpoint{op}, database.TxOutput{Address: address(l.other), Amount: 30})

		fee, err := l.db.CheckTransaction(tx, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould accept spending 50 into 30: %s", failed, err)
		}
		if fee != 20 {
			t.Fatalf("\t%s\tShould leave a fee of 20: got %d", failed, fee)
		}
		t.Logf("\t%s\tShould accept spending 50 into 30 with a fee of 20.", success)

		block = l.mine(t, fee, tx)
		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould be able to append block 2: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to append block 2.", success)

		if got := l.db.Balance(address(l.other)); got != 30 {
			t.Fatalf("\t%s\tShould credit the receiver with 30: got %d", failed, got)
		}
		if got := l.db.Balance(address(l.miner)); got != 70 {
			t.Fatalf("\t%s\tShould credit the miner with reward plus fee: got %d", failed, got)
		}
		t.Logf("\t%s\tShould move the value and the fee.", success)

		if got := l.db.Supply(); got != 100 {
			t.Fatalf("\t%s\tShould grow the supply by the reward only: got %d", failed, got)
		}
		t.Logf("\t%s\tShould grow the supply by the reward only.", success)

		if _, err := l.db.CheckTransaction(tx, nil); !errors.Is(err, database.ErrReplay) {
			t.Fatalf("\t%s\tShould reject the same transaction as a replay: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the same transaction as a replay.", success)

		proof, order, err := block.Proof(l.h, tx.ID)
		if err != nil || len(proof) == 0 || len(proof) != len(order) {
			t.Fatalf("\t%s\tShould produce an inclusion proof: %v", failed, err)
		}
		t.Logf("\t%s\tShould produce an inclusion proof.", success)
	}
}

func Test_IntraBlockSpend(t *testing.T) {
	t.Log("Given the need to spend an output created earlier in the same block.")
	{
		l := newLedger(t)

		block := l.mine(t, 0)
		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould be able to append block 1: %s", failed, err)
		}

		tx1 := l.spend(t, l.miner, []database.Outpoint{{TxID: block.Trans[0].ID}}, database.TxOutput{Address: address(l.other), Amount: 30})
		tx2 := l.spend(t, l.other, []database.Outpoint{{TxID: tx1.ID}}, database.TxOutput{Address: address(l.miner), Amount: 20})

		block = l.mine(t, 30, tx1, tx2)
		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould accept the chained spend: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept the chained spend.", success)

		if got := l.db.Balance(address(l.other)); got != 0 {
			t.Fatalf("\t%s\tShould leave the receiver with nothing: got %d", failed, got)
		}
		if got := l.db.Balance(address(l.miner)); got != 100 {
			t.Fatalf("\t%s\tShould leave the miner with 100: got %d", failed, got)
		}
		t.Logf("\t%s\tShould apply the transactions in block order.", success)
	}

	t.Log("Given the need to spend the reward of the same block.")
	{
		l := newLedger(t)

		latest := l.db.LatestBlock()
		height := latest.Header.Index + 1

		reward := database.NewRewardTx(l.h, height, address(l.miner), l.gen.Mining.MiningReward+10)
		tx := l.spend(t, l.miner, []database.Outpoint{{TxID: reward.ID, Index: 0}}, database.TxOutput{Address: address(l.other), Amount: 50})

		block, err := database.POW(context.Background(), database.POWArgs{
			Hasher:    l.h,
			PrevBlock: latest,
			Target:    l.db.NextTarget(),
			Trans:     []database.Tx{reward, tx},
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the block: %s", failed, err)
		}

		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould accept spending the reward in its own block: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept spending the reward in its own block.", success)

		if got := l.db.Balance(address(l.other)); got != 50 {
			t.Fatalf("\t%s\tShould credit the receiver with 50: got %d", failed, got)
		}
		if got := l.db.Balance(address(l.miner)); got != 0 {
			t.Fatalf("\t%s\tShould leave the miner with nothing: got %d", failed, got)
		}
		if got := l.db.Supply(); got != 50 {
			t.Fatalf("\t%s\tShould grow the supply by the reward only: got %d", failed, got)
		}
		t.Logf("\t%s\tShould move the reward and keep the supply.", success)
	}
}

func Test_RejectTransaction(t *testing.T) {
	l := newLedger(t)

	block := l.mine(t, 0)
	if err := l.db.Append(block); err != nil {
		t.Fatalf("\t%s\tShould be able to append block 1: %s", failed, err)
	}
	op := database.Outpoint{TxID: block.Trans[0].ID, Index: 0}

	type table struct {
		name string
		tx   database.Tx
		err  error
	}

	tt := []table{
		{
			name: "overspend",
			tx:   l.spend(t, l.miner, []database.Outpoint{op}, database.TxOutput{Address: address(l.other), Amount: 60}),
			err:  database.ErrConservation,
		},
		{
			name: "nofee",
			tx:   l.spend(t, l.miner, []database.Outpoint{op}, database.TxOutput{Address: address(l.other), Amount: 50}),
			err:  database.ErrConservation,
		},
		{
			name: "unknown",
			tx:   l.spend(t, l.miner, []database.Outpoint{{TxID: op.TxID, Index: 1}}, database.TxOutput{Address: address(l.other), Amount: 10}),
			err:  database.ErrDoubleSpend,
		},
		{
			name: "twice",
			tx:   l.spend(t, l.miner, []database.Outpoint{op, op}, database.TxOutput{Address: address(l.other), Amount: 10}),
			err:  database.ErrDoubleSpend,
		},
		{
			name: "notowner",
			tx:   l.spend(t, l.other, []database.Outpoint{op}, database.TxOutput{Address: address(l.other), Amount: 10}),
			err:  database.ErrAuthorization,
		},
		{
			name: "zero",
			tx:   l.spend(t, l.miner, []database.Outpoint{op}, database.TxOutput{Address: address(l.other), Amount: 0}),
			err:  database.ErrStructural,
		},
		{
			name: "reward",
			tx:   database.NewRewardTx(l.h, 9, address(l.other), 10),
			err:  database.ErrStructural,
		},
	}

	t.Log("Given the need to reject invalid transactions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
				{
					_, err := l.db.CheckTransaction(tst.tx, nil)
					if !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould get a %v error: got %v", failed, testID, tst.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get a %v error.", success, testID, tst.err)

					if got := l.db.Balance(address(l.miner)); got != 50 {
						t.Fatalf("\t%s\tTest %d:\tShould leave the ledger unchanged: got %d", failed, testID, got)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the ledger unchanged.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}

	t.Log("Given the need to hide outputs claimed by pending transactions.")
	{
		tx := l.spend(t, l.miner, []database.Outpoint{op}, database.TxOutput{Address: address(l.other), Amount: 10})

		claimed := func(o database.Outpoint) bool { return o == op }
		if _, err := l.db.CheckTransaction(tx, claimed); !errors.Is(err, database.ErrDoubleSpend) {
			t.Fatalf("\t%s\tShould reject spending a claimed output: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject spending a claimed output.", success)
	}
}

func Test_RejectBlock(t *testing.T) {
	t.Log("Given the need to reject invalid blocks.")
	{
		l := newLedger(t)

		block := l.mine(t, 0)
		if err := l.db.Append(block); err != nil {
			t.Fatalf("\t%s\tShould be able to append block 1: %s", failed, err)
		}
		latest := l.db.LatestBlock()

		t.Logf("\tTest 0:\tWhen the reward is wrong.")
		{
			block := l.mine(t, 1)
			if err := l.db.Append(block); !errors.Is(err, database.ErrConservation) {
				t.Fatalf("\t%s\tTest 0:\tShould get a conservation error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get a conservation error.", success)
		}

		t.Logf("\tTest 1:\tWhen the header was changed after mining.")
		{
			block := l.mine(t, 0)
			block.Header.Nonce++
			if err := l.db.Append(database.ToBlock(database.NewBlockData(block))); !errors.Is(err, database.ErrValidation) {
				t.Fatalf("\t%s\tTest 1:\tShould get a validation error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a validation error.", success)
		}

		t.Logf("\tTest 2:\tWhen the hash doesn't meet the target.")
		{
			reward := database.NewRewardTx(l.h, 2, address(l.miner), 50)
			header := database.BlockHeader{
				Index:        2,
				PreviousHash: latest.Hash(),
				Timestamp:    latest.Header.Timestamp,
				TransRoot:    database.TransRoot(l.h, []database.Tx{reward}),
			}

			block := database.NewBlock(l.h, header, []database.Tx{reward})
			for database.IsHashSolved(l.db.NextTarget(), block.Hash()) {
				header.Nonce++
				block = database.NewBlock(l.h, header, []database.Tx{reward})
			}

			if err := l.db.Append(block); !errors.Is(err, database.ErrValidation) {
				t.Fatalf("\t%s\tTest 2:\tShould get a validation error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get a validation error.", success)
		}

		t.Logf("\tTest 3:\tWhen the block replays a confirmed transaction.")
		{
			tx := l.spend(t, l.miner, []database.Outpoint{{TxID: block.Trans[0].ID}}, database.TxOutput{Address: address(l.other), Amount: 30})
			next := l.mine(t, 40, tx, tx)
			if err := l.db.Append(next); !errors.Is(err, database.ErrReplay) {
				t.Fatalf("\t%s\tTest 3:\tShould get a replay error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould get a replay error.", success)
		}

		if l.db.LatestBlock().Hash() != latest.Hash() || l.db.Supply() != 50 {
			t.Fatalf("\t%s\tShould leave the chain unchanged.", failed)
		}
		t.Logf("\t%s\tShould leave the chain unchanged.", success)
	}
}

func Test_Replay(t *testing.T) {
	t.Log("Given the need to rebuild the ledger from storage.")
	{
		l := newLedger(t)

		for i := 0; i < 3; i++ {
			if err := l.db.Append(l.mine(t, 0)); err != nil {
				t.Fatalf("\t%s\tShould be able to append a block: %s", failed, err)
			}
		}

		unspent := l.db.UnspentForAddress(address(l.miner))
		tx := l.spend(t, l.miner, []database.Outpoint{unspent[0].Outpoint()}, database.TxOutput{Address: address(l.other), Amount: 45})
		if err := l.db.Append(l.mine(t, 5, tx)); err != nil {
			t.Fatalf("\t%s\tShould be able to append a transfer: %s", failed, err)
		}

		db, err := database.New(l.h, l.gen, l.strg, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to replay the storage: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to replay the storage.", success)

		if db.LatestBlock().Hash() != l.db.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould end at the same block.", failed)
		}
		t.Logf("\t%s\tShould end at the same block.", success)

		got := db.UTXO().Values()
		exp := l.db.UTXO().Values()
		if len(got) != len(exp) {
			t.Fatalf("\t%s\tShould rebuild the same index: got %d outputs, exp %d", failed, len(got), len(exp))
		}
		for i := range got {
			if got[i] != exp[i] {
				t.Fatalf("\t%s\tShould rebuild the same index: got %v, exp %v", failed, got[i], exp[i])
			}
		}
		t.Logf("\t%s\tShould rebuild the same index.", success)

		if !db.HasTx(tx.ID) {
			t.Fatalf("\t%s\tShould rebuild the transaction index.", failed)
		}
		t.Logf("\t%s\tShould rebuild the transaction index.", success)
	}
}

func Test_Replace(t *testing.T) {
	t.Log("Given the need to replace the chain with a longer valid chain.")
	{
		long := newLedger(t)
		short := newLedger(t)

		for i := 0; i < 3; i++ {
			if err := long.db.Append(long.mine(t, 0)); err != nil {
				t.Fatalf("\t%s\tShould be able to append to the long chain: %s", failed, err)
			}
		}
		if err := short.db.Append(short.mine(t, 0)); err != nil {
			t.Fatalf("\t%s\tShould be able to append to the short chain: %s", failed, err)
		}

		blocks, err := long.db.Blocks(0, database.QueryLatest)
		if err != nil || len(blocks) != 4 {
			t.Fatalf("\t%s\tShould be able to read the long chain: %d blocks: %v", failed, len(blocks), err)
		}

		if err := long.db.Replace(blocks[:2]); !errors.Is(err, database.ErrNotLonger) {
			t.Fatalf("\t%s\tShould reject a shorter chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a shorter chain.", success)

		if err := long.db.Replace(blocks); !errors.Is(err, database.ErrNotLonger) {
			t.Fatalf("\t%s\tShould reject a chain of the same length: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain of the same length.", success)

		bad := append([]database.Block{}, blocks...)
		bad[2] = database.ToBlock(database.NewBlockData(bad[3]))
		if err := short.db.Replace(bad); !errors.Is(err, database.ErrValidation) {
			t.Fatalf("\t%s\tShould reject a chain with an invalid block: %v", failed, err)
		}
		if short.db.Height() != 1 {
			t.Fatalf("\t%s\tShould keep the local chain after a rejection.", failed)
		}
		t.Logf("\t%s\tShould keep the local chain after a rejection.", success)

		if err := short.db.Replace(blocks); err != nil {
			t.Fatalf("\t%s\tShould accept the longer chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept the longer chain.", success)

		if short.db.LatestBlock().Hash() != long.db.LatestBlock().Hash() || short.db.Supply() != 150 {
			t.Fatalf("\t%s\tShould adopt the state of the longer chain.", failed)
		}
		t.Logf("\t%s\tShould adopt the state of the longer chain.", success)

		if _, err := short.strg.GetBlock(3); err != nil {
			t.Fatalf("\t%s\tShould rewrite the storage: %s", failed, err)
		}
		t.Logf("\t%s\tShould rewrite the storage.", success)
	}
}

// resetReader reads the chain from another goroutine as soon as the storage
// is reset in the middle of a chain replacement.
type resetReader struct {
	*memory.Memory
	db    *database.Database
	reads chan []database.Block
}

func (r *resetReader) Reset() error {
	err := r.Memory.Reset()

	go func() {
		blocks, err := r.db.Blocks(0, database.QueryLatest)
		if err != nil {
			blocks = nil
		}
		r.reads <- blocks
	}()

	return err
}

func Test_ReplaceConcurrentRead(t *testing.T) {
	t.Log("Given the need to read the chain while it is being replaced.")
	{
		long := newLedger(t)
		for i := 0; i < 3; i++ {
			if err := long.db.Append(long.mine(t, 0)); err != nil {
				t.Fatalf("\t%s\tShould be able to append to the long chain: %s", failed, err)
			}
		}

		blocks, err := long.db.Blocks(0, database.QueryLatest)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the long chain: %s", failed, err)
		}

		strg := resetReader{
			Memory: memory.New(),
			reads:  make(chan []database.Block, 1),
		}

		db, err := database.New(long.h, long.gen, &strg, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the database: %s", failed, err)
		}
		strg.db = db

		short := long
		short.db = db
		short.strg = strg.Memory
		if err := short.db.Append(short.mine(t, 0)); err != nil {
			t.Fatalf("\t%s\tShould be able to append to the short chain: %s", failed, err)
		}

		if err := short.db.Replace(blocks); err != nil {
			t.Fatalf("\t%s\tShould accept the longer chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept the longer chain.", success)

		select {
		case read := <-strg.reads:
			if len(read) != len(blocks) {
				t.Fatalf("\t%s\tShould only see the complete chain: got %d blocks, exp %d", failed, len(read), len(blocks))
			}
			for i := range read {
				if read[i].Hash() != blocks[i].Hash() {
					t.Fatalf("\t%s\tShould only see the blocks of the new chain: block %d", failed, i)
				}
			}
			t.Logf("\t%s\tShould only see the complete chain.", success)

		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould get the concurrent read.", failed)
		}
	}
}

func Test_Target(t *testing.T) {
	pow := genesis.ProofOfWork{
		BaseDifficulty: 1 << 40,
		EveryXBlocks:   5,
		PowCurve:       2,
	}

	type table struct {
		name  string
		index uint64
		exp   uint64
	}

	tt := []table{
		{name: "first", index: 1, exp: 1 << 40},
		{name: "beforestep", index: 3, exp: 1 << 40},
		{name: "step1", index: 4, exp: (1 << 40) / 4},
		{name: "step2", index: 9, exp: (1 << 40) / 9},
	}

	t.Log("Given the need to compute the target of a block.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling block %d.", testID, tst.index)
				{
					got := database.Target(pow, tst.index, nil)
					if got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get the curve value: got %d, exp %d", failed, testID, got, tst.exp)
					}
					t.Logf("\t%s\tTest %d:\tShould get the curve value.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}

	t.Log("Given the need to adjust the target by block time.")
	{
		pow := pow
		pow.TargetBlockTime = 10
		base := float64(pow.BaseDifficulty)

		history := make([]database.BlockHeader, 9)
		for i := range history {
			history[i] = database.BlockHeader{Index: uint64(i), Timestamp: uint64(i) * 100}
		}

		got := database.Target(pow, 9, history)
		if exp := uint64(base / 9 * 4); got != exp {
			t.Fatalf("\t%s\tShould make the target easier for slow blocks: got %d, exp %d", failed, got, exp)
		}
		t.Logf("\t%s\tShould make the target easier for slow blocks.", success)

		for i := range history {
			history[i].Timestamp = uint64(i)
		}
		got = database.Target(pow, 9, history)
		if exp := uint64(base / 9 * 0.25); got != exp {
			t.Fatalf("\t%s\tShould make the target harder for fast blocks: got %d, exp %d", failed, got, exp)
		}
		t.Logf("\t%s\tShould make the target harder for fast blocks.", success)

		if got := database.Target(genesis.ProofOfWork{BaseDifficulty: 10, EveryXBlocks: 1, PowCurve: 10}, 50, nil); got != 1 {
			t.Fatalf("\t%s\tShould never go below 1: got %d", failed, got)
		}
		t.Logf("\t%s\tShould never go below 1.", success)
	}
}
