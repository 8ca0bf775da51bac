package network

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/alicenetorg/libwallet-go/tx"
)

var _ LedgerService = (*RPCClient)(nil)

type chainIDResult struct {
	ChainID uint32 `json:"ChainID"`
}

type heightResult struct {
	BlockHeight uint32 `json:"BlockHeight"`
}

type epochResult struct {
	Epoch uint32 `json:"Epoch"`
}

type feesResult struct {
	MinTxFee      string `json:"MinTxFee"`
	ValueStoreFee string `json:"ValueStoreFee"`
	DataStoreFee  string `json:"DataStoreFee"`
}

type utxoRequest struct {
	UTXOIDs []string `json:"UTXOIDs"`
}

type utxoResult struct {
	UTXOs []utxo `json:"UTXOs"`
}

type valueForOwnerRequest struct {
	CurveSpec       uint8  `json:"CurveSpec"`
	Account         string `json:"Account"`
	Minvalue        string `json:"Minvalue"`
	PaginationToken string `json:"PaginationToken"`
}

type valueForOwnerResult struct {
	UTXOIDs         []string `json:"UTXOIDs"`
	TotalValue      string   `json:"TotalValue"`
	PaginationToken string   `json:"PaginationToken"`
}

type nameSpaceRequest struct {
	CurveSpec  uint8  `json:"CurveSpec"`
	Account    string `json:"Account"`
	Number     int    `json:"Number"`
	StartIndex string `json:"StartIndex"`
}

type nameSpaceEntry struct {
	UTXOID string `json:"UTXOID"`
	Index  string `json:"Index"`
}

type nameSpaceResult struct {
	Results []nameSpaceEntry `json:"Results"`
}

type dataRequest struct {
	Account   string `json:"Account"`
	CurveSpec uint8  `json:"CurveSpec"`
	Index     string `json:"Index"`
}

type dataResult struct {
	Rawdata string `json:"Rawdata"`
}

type sendRequest struct {
	Tx wireTx `json:"Tx"`
}

type txHashRequest struct {
	TxHash   string `json:"TxHash"`
	ReturnTx bool   `json:"ReturnTx,omitempty"`
}

type txHashResult struct {
	TxHash string `json:"TxHash"`
}

type txResult struct {
	Tx *wireTx `json:"Tx"`
}

type statusResult struct {
	IsMined bool `json:"IsMined"`
}

// GetChainID returns the chain id served by the node.
func (c *RPCClient) GetChainID(ctx context.Context) (uint32, error) {
	var r chainIDResult
	if err := c.Call(ctx, "get-chain-id", nil, &r); err != nil {
		return 0, fmt.Errorf("get chain id: %w", err)
	}
	if r.ChainID == 0 {
		return 0, fmt.Errorf("get chain id: %w: chain id not found", ErrInvalidResponse)
	}
	return r.ChainID, nil
}

// GetCurrentHeight implements LedgerService.
func (c *RPCClient) GetCurrentHeight(ctx context.Context) (uint32, error) {
	var r heightResult
	if err := c.Call(ctx, "get-block-number", nil, &r); err != nil {
		return 0, fmt.Errorf("get block number: %w", err)
	}
	if r.BlockHeight == 0 {
		return 0, fmt.Errorf("get block number: %w: block height not found", ErrInvalidResponse)
	}
	return r.BlockHeight, nil
}

// GetCurrentEpoch implements LedgerService.
func (c *RPCClient) GetCurrentEpoch(ctx context.Context) (uint32, error) {
	var r epochResult
	if err := c.Call(ctx, "get-epoch-number", nil, &r); err != nil {
		return 0, fmt.Errorf("get epoch: %w", err)
	}
	if r.Epoch == 0 {
		return 0, fmt.Errorf("get epoch: %w: epoch not found", ErrInvalidResponse)
	}
	return r.Epoch, nil
}

// GetFeeSchedule implements LedgerService.
func (c *RPCClient) GetFeeSchedule(ctx context.Context) (*tx.FeeSchedule, error) {
	var r feesResult
	if err := c.Call(ctx, "get-fees", nil, &r); err != nil {
		return nil, fmt.Errorf("get fees: %w", err)
	}
	if r.MinTxFee == "" {
		return nil, fmt.Errorf("get fees: %w: could not get fees", ErrInvalidResponse)
	}
	var fs tx.FeeSchedule
	var err error
	if fs.MinTxFee, err = tx.ParseValue(r.MinTxFee); err != nil {
		return nil, fmt.Errorf("get fees: min tx fee: %w", err)
	}
	if fs.ValueStoreFee, err = tx.ParseValue(r.ValueStoreFee); err != nil {
		return nil, fmt.Errorf("get fees: value store fee: %w", err)
	}
	if fs.DataStoreFee, err = tx.ParseValue(r.DataStoreFee); err != nil {
		return nil, fmt.Errorf("get fees: data store fee: %w", err)
	}
	return &fs, nil
}

// GetUnitsByIDs implements LedgerService. Ids are requested in batches of
// tx.MaxUTXOs.
func (c *RPCClient) GetUnitsByIDs(ctx context.Context, ids []tx.Hash) ([]*tx.StorageUnit, []*tx.ValueUnit, error) {
	var storage []*tx.StorageUnit
	var value []*tx.ValueUnit
	for start := 0; start < len(ids); start += tx.MaxUTXOs {
		end := min(start+tx.MaxUTXOs, len(ids))
		req := utxoRequest{UTXOIDs: make([]string, 0, end-start)}
		for _, id := range ids[start:end] {
			req.UTXOIDs = append(req.UTXOIDs, id.String())
		}
		var r utxoResult
		if err := c.Call(ctx, "get-utxo", req, &r); err != nil {
			return nil, nil, fmt.Errorf("get utxos by ids: %w", err)
		}
		for i, u := range r.UTXOs {
			switch {
			case u.DataStore != nil:
				s, err := decodeDataStore(u.DataStore)
				if err != nil {
					return nil, nil, fmt.Errorf("get utxos by ids: %w: utxo %d: %w", ErrInvalidResponse, i, err)
				}
				storage = append(storage, s)
			case u.ValueStore != nil:
				v, err := decodeValueStore(u.ValueStore)
				if err != nil {
					return nil, nil, fmt.Errorf("get utxos by ids: %w: utxo %d: %w", ErrInvalidResponse, i, err)
				}
				value = append(value, v)
			}
		}
	}
	return storage, value, nil
}

// GetUnspentValueUnits implements LedgerService. Pages are followed until
// the node stops returning a pagination token.
func (c *RPCClient) GetUnspentValueUnits(ctx context.Context, addr tx.Address, curve tx.Curve, minValue *uint256.Int) ([]tx.Hash, *uint256.Int, error) {
	if minValue == nil || minValue.IsZero() {
		minValue = tx.MaxValue
	}
	req := valueForOwnerRequest{
		CurveSpec: uint8(curve),
		Account:   addr.String(),
		Minvalue:  tx.FormatValue(minValue),
	}
	var ids []tx.Hash
	total := new(uint256.Int)
	for {
		var r valueForOwnerResult
		if err := c.Call(ctx, "get-value-for-owner", req, &r); err != nil {
			return nil, nil, fmt.Errorf("get value for owner: %w", err)
		}
		if len(r.UTXOIDs) == 0 || r.TotalValue == "" {
			break
		}
		for _, s := range r.UTXOIDs {
			id, err := tx.ParseHash(s)
			if err != nil {
				return nil, nil, fmt.Errorf("get value for owner: %w: %w", ErrInvalidResponse, err)
			}
			ids = append(ids, id)
		}
		pageTotal, err := tx.ParseValue(r.TotalValue)
		if err != nil {
			return nil, nil, fmt.Errorf("get value for owner: %w: %w", ErrInvalidResponse, err)
		}
		if _, overflow := total.AddOverflow(total, pageTotal); overflow {
			return nil, nil, fmt.Errorf("get value for owner: %w", tx.ErrValueOverflow)
		}
		if r.PaginationToken == "" {
			break
		}
		req.PaginationToken = r.PaginationToken
	}
	return ids, total, nil
}

// iterateNameSpace lists storage entries of addr starting at start. With
// all set it pages until the node runs out of entries.
func (c *RPCClient) iterateNameSpace(ctx context.Context, addr tx.Address, curve tx.Curve, limit int, start string, all bool) ([]nameSpaceEntry, error) {
	if limit <= 0 || limit > tx.MaxUTXOs {
		limit = tx.MaxUTXOs
	}
	var out []nameSpaceEntry
	for {
		req := nameSpaceRequest{CurveSpec: uint8(curve), Account: addr.String(), Number: limit, StartIndex: start}
		var r nameSpaceResult
		if err := c.Call(ctx, "iterate-name-space", req, &r); err != nil {
			return nil, fmt.Errorf("iterate name space: %w", err)
		}
		if len(r.Results) == 0 {
			break
		}
		out = append(out, r.Results...)
		if !all || len(r.Results) < limit {
			break
		}
		next := r.Results[len(r.Results)-1].Index
		if next == start {
			break
		}
		start = next
	}
	return out, nil
}

// GetUnspentStorageUnits implements LedgerService.
func (c *RPCClient) GetUnspentStorageUnits(ctx context.Context, addr tx.Address, curve tx.Curve) ([]tx.Hash, error) {
	entries, err := c.iterateNameSpace(ctx, addr, curve, tx.MaxUTXOs, "", true)
	if err != nil {
		return nil, err
	}
	seen := make(map[tx.Hash]bool, len(entries))
	var ids []tx.Hash
	for _, e := range entries {
		id, err := tx.ParseHash(e.UTXOID)
		if err != nil {
			return nil, fmt.Errorf("iterate name space: %w: %w", ErrInvalidResponse, err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetStorageUnitByIndex implements LedgerService.
func (c *RPCClient) GetStorageUnitByIndex(ctx context.Context, addr tx.Address, curve tx.Curve, index tx.Index) (*tx.StorageUnit, error) {
	entries, err := c.iterateNameSpace(ctx, addr, curve, 1, index.String(), false)
	if err != nil {
		return nil, fmt.Errorf("get data store by index: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	id, err := tx.ParseHash(entries[0].UTXOID)
	if err != nil {
		return nil, fmt.Errorf("get data store by index: %w: %w", ErrInvalidResponse, err)
	}
	storage, _, err := c.GetUnitsByIDs(ctx, []tx.Hash{id})
	if err != nil {
		return nil, fmt.Errorf("get data store by index: %w", err)
	}
	if len(storage) == 0 {
		return nil, nil
	}
	return storage[0], nil
}

// GetData returns the raw payload stored at index.
func (c *RPCClient) GetData(ctx context.Context, addr tx.Address, curve tx.Curve, index tx.Index) ([]byte, error) {
	req := dataRequest{Account: addr.String(), CurveSpec: uint8(curve), Index: index.String()}
	var r dataResult
	if err := c.Call(ctx, "get-data", req, &r); err != nil {
		return nil, fmt.Errorf("get data: %w", err)
	}
	if r.Rawdata == "" {
		return nil, fmt.Errorf("get data: %w: %s", ErrNotFound, index)
	}
	data, err := tx.DecodeHex(r.Rawdata)
	if err != nil {
		return nil, fmt.Errorf("get data: %w: %w", ErrInvalidResponse, err)
	}
	return data, nil
}

// Broadcast implements LedgerService.
func (c *RPCClient) Broadcast(ctx context.Context, d *tx.Draft) (tx.Hash, error) {
	var r txHashResult
	if err := c.Call(ctx, "send-transaction", sendRequest{Tx: encodeTx(d)}, &r); err != nil {
		return tx.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	if r.TxHash == "" {
		return tx.Hash{}, fmt.Errorf("send transaction: %w", ErrBroadcastRejected)
	}
	h, err := tx.ParseHash(r.TxHash)
	if err != nil {
		return tx.Hash{}, fmt.Errorf("send transaction: %w: %w", ErrInvalidResponse, err)
	}
	return h, nil
}

func (c *RPCClient) getTransaction(ctx context.Context, route string, hash tx.Hash) (*tx.Draft, error) {
	var r txResult
	if err := c.Call(ctx, route, txHashRequest{TxHash: hash.String()}, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", route, err)
	}
	if r.Tx == nil {
		return nil, fmt.Errorf("%s: %w: %s", route, ErrTxNotFound, hash)
	}
	d, err := decodeTx(*r.Tx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", route, ErrInvalidResponse, err)
	}
	return d, nil
}

// GetMinedTransaction returns a transaction included in a block.
func (c *RPCClient) GetMinedTransaction(ctx context.Context, hash tx.Hash) (*tx.Draft, error) {
	return c.getTransaction(ctx, "get-mined-transaction", hash)
}

// GetPendingTransaction returns a transaction still in the node's pool.
func (c *RPCClient) GetPendingTransaction(ctx context.Context, hash tx.Hash) (*tx.Draft, error) {
	return c.getTransaction(ctx, "get-pending-transaction", hash)
}

// GetTxBlockHeight returns the height a transaction was mined at.
func (c *RPCClient) GetTxBlockHeight(ctx context.Context, hash tx.Hash) (uint32, error) {
	var r heightResult
	if err := c.Call(ctx, "get-tx-block-number", txHashRequest{TxHash: hash.String()}, &r); err != nil {
		return 0, fmt.Errorf("get tx block height: %w", err)
	}
	if r.BlockHeight == 0 {
		return 0, fmt.Errorf("get tx block height: %w: %s", ErrTxNotFound, hash)
	}
	return r.BlockHeight, nil
}

// GetTxStatus implements LedgerService.
func (c *RPCClient) GetTxStatus(ctx context.Context, hash tx.Hash) (*TxStatus, error) {
	var r statusResult
	if err := c.Call(ctx, "get-transaction-status", txHashRequest{TxHash: hash.String()}, &r); err != nil {
		return nil, fmt.Errorf("get tx status: %w", err)
	}
	status := &TxStatus{Mined: r.IsMined}
	if r.IsMined {
		h, err := c.GetTxBlockHeight(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("get tx status: %w", err)
		}
		status.Height = h
	}
	return status, nil
}
