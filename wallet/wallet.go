// Package wallet binds an account registry, a ledger connection and a
// transaction journal into a single handle, and derives account keys from
// BIP39 mnemonics.
package wallet

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alicenetorg/libwallet-go/account"
	"github.com/alicenetorg/libwallet-go/canon"
	"github.com/alicenetorg/libwallet-go/config"
	"github.com/alicenetorg/libwallet-go/network"
	"github.com/alicenetorg/libwallet-go/store"
	"github.com/alicenetorg/libwallet-go/tx"
	"github.com/alicenetorg/libwallet-go/txbuilder"
)

// Wallet is the entry point of the library.
type Wallet struct {
	cfg      config.Config
	ledger   network.LedgerService
	accounts *account.Registry
	encoder  *canon.Encoder
	journal  *store.TxJournal
	log      zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithLogger sets the logger passed down to builders and the RPC client.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Wallet) { w.log = l }
}

// WithJournal uses j instead of opening the journal in the data directory.
func WithJournal(j *store.TxJournal) Option {
	return func(w *Wallet) { w.journal = j }
}

// New validates cfg and opens a wallet. A nil ledger connects to the node
// named by cfg and the LIBWALLET_* environment.
func New(cfg config.Config, ledger network.LedgerService, opts ...Option) (*Wallet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = config.DefaultPollInterval
	}
	if cfg.Poll.Timeout <= 0 {
		cfg.Poll.Timeout = config.DefaultPollTimeout
	}
	w := &Wallet{
		cfg:      cfg,
		ledger:   ledger,
		accounts: account.NewRegistry(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.ledger == nil {
		rc, err := cfg.ResolveRPC(environ())
		if err != nil {
			return nil, err
		}
		w.ledger = network.NewRPCClient(*rc, network.WithLogger(w.log))
	}

	enc, err := canon.New()
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	w.encoder = enc

	if w.journal == nil {
		j, err := store.Open(cfg.JournalPath())
		if err != nil {
			return nil, fmt.Errorf("wallet: %w", err)
		}
		w.journal = j
	}
	return w, nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "LIBWALLET_") {
			env[k] = v
		}
	}
	return env
}

// Config returns the configuration the wallet was opened with.
func (w *Wallet) Config() config.Config { return w.cfg }

// Accounts returns the account registry.
func (w *Wallet) Accounts() *account.Registry { return w.accounts }

// Ledger returns the ledger connection.
func (w *Wallet) Ledger() network.LedgerService { return w.ledger }

// Journal returns the transaction journal.
func (w *Wallet) Journal() *store.TxJournal { return w.journal }

// AddAccount registers privKey on curve.
func (w *Wallet) AddAccount(privKey []byte, curve tx.Curve) (*account.Account, error) {
	return w.accounts.AddAccount(privKey, curve)
}

// AddHDAccount derives the secp256k1 key at index of account from seed and
// registers it.
func (w *Wallet) AddHDAccount(seed []byte, acct, index uint32) (*account.Account, error) {
	key, err := DeriveAccountKey(seed, acct, index)
	if err != nil {
		return nil, err
	}
	a, err := w.accounts.AddAccount(key, tx.CurveSecp256k1)
	if err != nil {
		return nil, err
	}
	w.log.Debug().Str("address", a.Address.String()).Str("path", DerivationPath(acct, index)).
		Msg("added hd account")
	return a, nil
}

// NewTransaction returns a builder for one transaction against the wallet's
// accounts and ledger.
func (w *Wallet) NewTransaction(opts ...txbuilder.Option) *txbuilder.Builder {
	opts = append([]txbuilder.Option{txbuilder.WithLogger(w.log)}, opts...)
	return txbuilder.New(w.ledger, w.accounts, w.encoder, w.cfg.ChainID, opts...)
}

// Send funds, signs and broadcasts b, then journals the transaction.
func (w *Wallet) Send(ctx context.Context, b *txbuilder.Builder, f txbuilder.Funding) (*PendingTx, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	receipt, err := b.Assemble(ctx, f)
	if err != nil {
		return nil, err
	}
	return w.record(receipt)
}

// SendSigned broadcasts a prepared builder whose signatures were injected,
// then journals the transaction.
func (w *Wallet) SendSigned(ctx context.Context, b *txbuilder.Builder) (*PendingTx, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	receipt, err := b.SendSigned(ctx)
	if err != nil {
		return nil, err
	}
	return w.record(receipt)
}

func (w *Wallet) record(r *txbuilder.Receipt) (*PendingTx, error) {
	if err := w.journal.Put(r.Hash, r.Draft); err != nil {
		// The transaction is already on the wire; the caller still gets a
		// handle to wait on.
		w.log.Error().Err(err).Str("hash", r.Hash.String()).Msg("journal broadcast transaction")
		return &PendingTx{Hash: r.Hash, w: w}, fmt.Errorf("wallet: journal %s: %w", r.Hash, err)
	}
	w.log.Info().Str("hash", r.Hash.String()).Int("inputs", len(r.Draft.Inputs)).
		Int("outputs", len(r.Draft.Outputs)).Msg("transaction broadcast")
	return &PendingTx{Hash: r.Hash, w: w}, nil
}

// Refresh refills the unit cache of the account at addr with its unspent
// value units and storage records as the ledger reports them now.
func (w *Wallet) Refresh(ctx context.Context, addr tx.Address) (*account.Account, error) {
	acct, err := w.accounts.Account(addr)
	if err != nil {
		return nil, err
	}
	valueIDs, _, err := w.ledger.GetUnspentValueUnits(ctx, acct.Address, acct.Curve, nil)
	if err != nil {
		return nil, fmt.Errorf("wallet: refresh %s: %w", addr, err)
	}
	storageIDs, err := w.ledger.GetUnspentStorageUnits(ctx, acct.Address, acct.Curve)
	if err != nil {
		return nil, fmt.Errorf("wallet: refresh %s: %w", addr, err)
	}

	acct.Units.Clear()
	ids := append(append([]tx.Hash(nil), valueIDs...), storageIDs...)
	if len(ids) == 0 {
		return acct, nil
	}
	storage, values, err := w.ledger.GetUnitsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("wallet: refresh %s: %w", addr, err)
	}
	acct.Units.SetValueUnits(ownedBy(acct, values), nil)
	acct.Units.SetStorageUnits(storage)
	w.log.Debug().Str("address", addr.String()).Int("value_units", len(values)).
		Int("storage_units", len(storage)).Str("total", acct.Units.Total().Dec()).Msg("refreshed account")
	return acct, nil
}

func ownedBy(acct *account.Account, units []*tx.ValueUnit) []*tx.ValueUnit {
	var out []*tx.ValueUnit
	for _, u := range units {
		if owner, err := tx.ExtractOwner(u.Owner); err == nil && owner.Address == acct.Address {
			out = append(out, u)
		}
	}
	return out
}

// PendingTransactions returns handles for every journaled transaction not
// yet seen mined, for example after a restart.
func (w *Wallet) PendingTransactions() ([]*PendingTx, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	hashes, err := w.journal.Pending()
	if err != nil {
		return nil, err
	}
	out := make([]*PendingTx, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, &PendingTx{Hash: h, w: w})
	}
	return out, nil
}

func (w *Wallet) checkOpen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return nil
}

// Close closes the journal.
func (w *Wallet) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.journal.Close()
}
