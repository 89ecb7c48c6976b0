// Package network provides the client a node uses to talk to the private
// API of its peers.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// Client sends blocks and transactions to peers and asks them for their
// state.
type Client struct {
	http      *http.Client
	evHandler func(v string, args ...any)
}

// New constructs a client. Requests time out after the duration.
func New(timeout time.Duration, evHandler func(v string, args ...any)) *Client {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		evHandler: ev,
	}
}

// SendBlock proposes the block to the peer.
func (c *Client) SendBlock(ctx context.Context, pr peer.Peer, block database.Block) error {
	c.evHandler("network: SendBlock: peer[%s]: blk[%s]", pr, block)

	url := fmt.Sprintf("%s/block/propose", fmt.Sprintf(baseURL, pr.Host))
	return c.send(ctx, http.MethodPost, url, database.NewBlockData(block), nil)
}

// SendTx submits the transaction to the peer.
func (c *Client) SendTx(ctx context.Context, pr peer.Peer, tx database.Tx) error {
	c.evHandler("network: SendTx: peer[%s]: tx[%s]", pr, tx)

	url := fmt.Sprintf("%s/tx/submit", fmt.Sprintf(baseURL, pr.Host))
	return c.send(ctx, http.MethodPost, url, tx, nil)
}

// RequestStatus asks the peer for its latest block and the peers it knows.
func (c *Client) RequestStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := c.send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	c.evHandler("network: RequestStatus: peer[%s]: latest-blk[%d]: peers[%v]", pr, ps.LatestBlockIndex, ps.KnownPeers)

	return ps, nil
}

// RequestBlocks asks the peer for its blocks starting with the index. Asking
// from zero returns the full chain including the genesis block.
func (c *Client) RequestBlocks(ctx context.Context, pr peer.Peer, from uint64) ([]database.Block, error) {
	url := fmt.Sprintf("%s/block/list/%d/latest", fmt.Sprintf(baseURL, pr.Host), from)

	var blocksData []database.BlockData
	if err := c.send(ctx, http.MethodGet, url, nil, &blocksData); err != nil {
		return nil, err
	}

	c.evHandler("network: RequestBlocks: peer[%s]: from[%d]: found[%d]", pr, from, len(blocksData))

	blocks := make([]database.Block, len(blocksData))
	for i, blockData := range blocksData {
		blocks[i] = database.ToBlock(blockData)
	}

	return blocks, nil
}

// RequestMempool asks the peer for its pending transactions.
func (c *Client) RequestMempool(ctx context.Context, pr peer.Peer) ([]database.Tx, error) {
	url := fmt.Sprintf("%s/tx/list", fmt.Sprintf(baseURL, pr.Host))

	var txs []database.Tx
	if err := c.send(ctx, http.MethodGet, url, nil, &txs); err != nil {
		return nil, err
	}

	c.evHandler("network: RequestMempool: peer[%s]: found[%d]", pr, len(txs))

	return txs, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func (c *Client) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("%s: %d: %w", url, resp.StatusCode, errors.New(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
