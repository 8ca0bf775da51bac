package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alicenetorg/libwallet-go/network"
	"github.com/alicenetorg/libwallet-go/store"
	"github.com/alicenetorg/libwallet-go/tx"
)

var errNotMined = errors.New("not mined")

// PendingTx is a broadcast transaction that may not be mined yet.
type PendingTx struct {
	Hash tx.Hash
	w    *Wallet
}

// Wait polls the ledger until the transaction is mined, then marks it mined
// in the journal. It gives up with ErrTxTimeout after the configured poll
// timeout.
func (p *PendingTx) Wait(ctx context.Context) (*network.TxStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, p.w.cfg.Poll.Timeout)
	defer cancel()

	var status *network.TxStatus
	op := func() error {
		s, err := p.w.ledger.GetTxStatus(ctx, p.Hash)
		switch {
		case errors.Is(err, network.ErrTxNotFound), errors.Is(err, network.ErrConnectionFailed):
			return err
		case err != nil:
			return backoff.Permanent(err)
		case !s.Mined:
			return errNotMined
		}
		status = s
		return nil
	}
	notify := func(err error, wait time.Duration) {
		p.w.log.Debug().Err(err).Str("hash", p.Hash.String()).Dur("wait", wait).Msg("waiting for transaction")
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(p.w.cfg.Poll.Interval), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTxTimeout, p.Hash)
		}
		return nil, fmt.Errorf("wallet: wait %s: %w", p.Hash, err)
	}

	if err := p.w.journal.MarkMined(p.Hash, status.Height); err != nil && !errors.Is(err, store.ErrTxNotFound) {
		return status, fmt.Errorf("wallet: wait %s: %w", p.Hash, err)
	}
	p.w.log.Info().Str("hash", p.Hash.String()).Uint32("height", status.Height).Msg("transaction mined")
	return status, nil
}
