package network

import (
	"fmt"

	"github.com/alicenetorg/libwallet-go/tx"
)

// JSON shapes exchanged with the node. All byte strings and values are
// unprefixed hex.

type vsPreImage struct {
	ChainID  uint32 `json:"ChainID"`
	Value    string `json:"Value"`
	TXOutIdx uint32 `json:"TXOutIdx"`
	Owner    string `json:"Owner"`
	Fee      string `json:"Fee"`
}

type valueStore struct {
	VSPreImage vsPreImage `json:"VSPreImage"`
	TxHash     string     `json:"TxHash"`
}

type dsPreImage struct {
	ChainID  uint32 `json:"ChainID"`
	Index    string `json:"Index"`
	IssuedAt uint32 `json:"IssuedAt"`
	Deposit  string `json:"Deposit"`
	RawData  string `json:"RawData"`
	TXOutIdx uint32 `json:"TXOutIdx"`
	Owner    string `json:"Owner"`
	Fee      string `json:"Fee"`
}

type dsLinker struct {
	DSPreImage dsPreImage `json:"DSPreImage"`
	TxHash     string     `json:"TxHash"`
}

type dataStore struct {
	DSLinker  dsLinker `json:"DSLinker"`
	Signature string   `json:"Signature"`
}

type utxo struct {
	ValueStore *valueStore `json:"ValueStore,omitempty"`
	DataStore  *dataStore  `json:"DataStore,omitempty"`
}

type txInPreImage struct {
	ChainID        uint32 `json:"ChainID"`
	ConsumedTxIdx  uint32 `json:"ConsumedTxIdx"`
	ConsumedTxHash string `json:"ConsumedTxHash"`
}

type txInLinker struct {
	TXInPreImage txInPreImage `json:"TXInPreImage"`
	TxHash       string       `json:"TxHash"`
}

type txIn struct {
	TXInLinker txInLinker `json:"TXInLinker"`
	Signature  string     `json:"Signature"`
}

type wireTx struct {
	Vin  []txIn `json:"Vin"`
	Vout []utxo `json:"Vout"`
	Fee  string `json:"Fee"`
}

func encodeTx(d *tx.Draft) wireTx {
	w := wireTx{Fee: tx.FormatValue(d.Fee)}
	for _, in := range d.Inputs {
		w.Vin = append(w.Vin, txIn{
			TXInLinker: txInLinker{
				TXInPreImage: txInPreImage{
					ChainID:        in.ChainID,
					ConsumedTxIdx:  in.Consumed.OutIdx,
					ConsumedTxHash: in.Consumed.TxHash.String(),
				},
				TxHash: in.TxHash.String(),
			},
			Signature: tx.EncodeHex(in.Signature),
		})
	}
	for _, o := range d.Outputs {
		switch {
		case o.Value != nil:
			v := o.Value
			w.Vout = append(w.Vout, utxo{ValueStore: &valueStore{
				VSPreImage: vsPreImage{
					ChainID:  v.ChainID,
					Value:    tx.FormatValue(v.Value),
					TXOutIdx: v.OutIdx,
					Owner:    tx.EncodeHex(v.Owner),
					Fee:      tx.FormatValue(v.Fee),
				},
				TxHash: v.TxHash.String(),
			}})
		case o.Storage != nil:
			s := o.Storage
			w.Vout = append(w.Vout, utxo{DataStore: &dataStore{
				DSLinker: dsLinker{
					DSPreImage: dsPreImage{
						ChainID:  s.ChainID,
						Index:    s.Index.String(),
						IssuedAt: s.IssuedAt,
						Deposit:  tx.FormatValue(s.Deposit),
						RawData:  tx.EncodeHex(s.RawData),
						TXOutIdx: s.OutIdx,
						Owner:    tx.EncodeHex(s.Owner),
						Fee:      tx.FormatValue(s.Fee),
					},
					TxHash: s.TxHash.String(),
				},
				Signature: tx.EncodeHex(s.Signature),
			}})
		}
	}
	return w
}

func decodeTx(w wireTx) (*tx.Draft, error) {
	d := tx.NewDraft()
	fee, err := tx.ParseValue(w.Fee)
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	d.Fee = fee
	for i, in := range w.Vin {
		consumed, err := tx.ParseHash(in.TXInLinker.TXInPreImage.ConsumedTxHash)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		txHash, err := parseOptionalHash(in.TXInLinker.TxHash)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		sig, err := tx.DecodeHex(in.Signature)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		d.Inputs = append(d.Inputs, &tx.Input{
			ChainID:   in.TXInLinker.TXInPreImage.ChainID,
			Consumed:  tx.Outpoint{TxHash: consumed, OutIdx: in.TXInLinker.TXInPreImage.ConsumedTxIdx},
			Signature: sig,
			TxHash:    txHash,
		})
	}
	for i, o := range w.Vout {
		switch {
		case o.ValueStore != nil:
			u, err := decodeValueStore(o.ValueStore)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			d.Outputs = append(d.Outputs, tx.Output{Value: &tx.ValueOutput{
				ChainID: u.ChainID, Value: u.Value, OutIdx: u.OutIdx, Owner: u.Owner, Fee: u.Fee, TxHash: u.TxHash,
			}})
		case o.DataStore != nil:
			u, err := decodeDataStore(o.DataStore)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			d.Outputs = append(d.Outputs, tx.Output{Storage: &tx.StorageOutput{
				ChainID: u.ChainID, Index: u.Index, IssuedAt: u.IssuedAt, Deposit: u.Deposit, RawData: u.RawData,
				OutIdx: u.OutIdx, Owner: u.Owner, Fee: u.Fee, Signature: u.Signature, TxHash: u.TxHash,
			}})
		default:
			return nil, fmt.Errorf("output %d: %w: empty output", i, ErrInvalidResponse)
		}
	}
	return d, nil
}

func decodeValueStore(v *valueStore) (*tx.ValueUnit, error) {
	p := v.VSPreImage
	value, err := tx.ParseValue(p.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	fee, err := tx.ParseValue(p.Fee)
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	owner, err := tx.DecodeHex(p.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	txHash, err := parseOptionalHash(v.TxHash)
	if err != nil {
		return nil, err
	}
	return &tx.ValueUnit{
		ChainID: p.ChainID,
		TxHash:  txHash,
		OutIdx:  p.TXOutIdx,
		Value:   value,
		Owner:   owner,
		Fee:     fee,
	}, nil
}

func decodeDataStore(d *dataStore) (*tx.StorageUnit, error) {
	p := d.DSLinker.DSPreImage
	rawIdx, err := tx.DecodeHex(p.Index)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	index, err := tx.IndexFromBytes(rawIdx)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	deposit, err := tx.ParseValue(p.Deposit)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	fee, err := tx.ParseValue(p.Fee)
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	raw, err := tx.DecodeHex(p.RawData)
	if err != nil {
		return nil, fmt.Errorf("raw data: %w", err)
	}
	owner, err := tx.DecodeHex(p.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	sig, err := tx.DecodeHex(d.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	txHash, err := parseOptionalHash(d.DSLinker.TxHash)
	if err != nil {
		return nil, err
	}
	return &tx.StorageUnit{
		ChainID:   p.ChainID,
		TxHash:    txHash,
		OutIdx:    p.TXOutIdx,
		Index:     index,
		IssuedAt:  p.IssuedAt,
		Deposit:   deposit,
		RawData:   raw,
		Owner:     owner,
		Fee:       fee,
		Signature: sig,
	}, nil
}

// parseOptionalHash accepts an empty string as the zero hash; unfilled
// drafts carry no transaction hash yet.
func parseOptionalHash(s string) (tx.Hash, error) {
	if s == "" {
		return tx.Hash{}, nil
	}
	return tx.ParseHash(s)
}
