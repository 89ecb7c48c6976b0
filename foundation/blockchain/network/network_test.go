package network_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/network"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/peer"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Client(t *testing.T) {
	var proposed database.BlockData
	var submitted database.Tx

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/node/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(peer.PeerStatus{
			LatestBlockHash:  "0x01",
			LatestBlockIndex: 7,
			KnownPeers:       []peer.Peer{peer.New("host1")},
		})
	})
	mux.HandleFunc("/v1/node/block/list/0/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]database.BlockData{
			{Hash: "0x01", Header: database.BlockHeader{Index: 0}},
			{Hash: "0x02", Header: database.BlockHeader{Index: 1}},
		})
	})
	mux.HandleFunc("/v1/node/tx/list", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]database.Tx{{ID: "0xaa"}})
	})
	mux.HandleFunc("/v1/node/block/propose", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&proposed)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/v1/node/tx/submit", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&submitted)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"double-spend"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	pr := peer.New(strings.TrimPrefix(srv.URL, "http://"))
	client := network.New(5*time.Second, nil)
	ctx := context.Background()

	t.Log("Given the need to talk to a peer.")
	{
		ps, err := client.RequestStatus(ctx, pr)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to request the status: %s", failed, err)
		}
		if ps.LatestBlockIndex != 7 || len(ps.KnownPeers) != 1 {
			t.Fatalf("\t%s\tShould get back the status: %+v", failed, ps)
		}
		t.Logf("\t%s\tShould be able to request the status.", success)

		blocks, err := client.RequestBlocks(ctx, pr, 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to request the blocks: %s", failed, err)
		}
		if len(blocks) != 2 || blocks[1].Hash() != "0x02" {
			t.Fatalf("\t%s\tShould get back the blocks with their hash: %v", failed, blocks)
		}
		t.Logf("\t%s\tShould be able to request the blocks.", success)

		txs, err := client.RequestMempool(ctx, pr)
		if err != nil || len(txs) != 1 || txs[0].ID != "0xaa" {
			t.Fatalf("\t%s\tShould be able to request the mempool: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to request the mempool.", success)

		block := database.ToBlock(database.BlockData{Hash: "0x03", Header: database.BlockHeader{Index: 2}})
		if err := client.SendBlock(ctx, pr, block); err != nil {
			t.Fatalf("\t%s\tShould be able to send a block: %s", failed, err)
		}
		if proposed.Hash != "0x03" || proposed.Header.Index != 2 {
			t.Fatalf("\t%s\tShould deliver the block: %+v", failed, proposed)
		}
		t.Logf("\t%s\tShould be able to send a block.", success)

		err = client.SendTx(ctx, pr, database.Tx{ID: "0xbb"})
		if err == nil || !strings.Contains(err.Error(), "double-spend") {
			t.Fatalf("\t%s\tShould get back the error of the peer: %v", failed, err)
		}
		if submitted.ID != "0xbb" {
			t.Fatalf("\t%s\tShould deliver the transaction: %+v", failed, submitted)
		}
		t.Logf("\t%s\tShould get back the error of the peer.", success)
	}
}
