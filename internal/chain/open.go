package chain

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

func jsonMarshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

// Open resumes a chain from opts.Store and opts.Journal: it loads the latest
// snapshot and receipts, then replays journal entries past the snapshot.
func Open(opts Options) (*Chain, error) {
	c := New(opts)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		data, err := c.store.LoadState()
		if err != nil {
			return nil, fmt.Errorf("loading state: %w", err)
		}
		if data != nil {
			st, err := decodeState(data, c.chainID)
			if err != nil {
				return nil, err
			}
			c.st = st
		}
		err = c.store.Receipts(func(_ uint64, raw []byte) error {
			r := new(Receipt)
			if err := json.Unmarshal(raw, r); err != nil {
				return fmt.Errorf("decoding receipt: %w", err)
			}
			if r.BlockNumber > c.st.height {
				return nil
			}
			c.receipts[r.TxHash] = r
			c.order = append(c.order, r)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if c.journal == nil {
		return c, nil
	}
	replayed, err := c.replay()
	if err != nil {
		return nil, err
	}
	c.log.Info("chain opened",
		zap.Uint64("height", c.st.height),
		zap.Int("replayed", replayed),
		zap.String("chain_id", c.chainID.String()))
	return c, nil
}

// replay re-applies journal entries the snapshot does not cover. Callers
// hold c.mu.
func (c *Chain) replay() (int, error) {
	journal := c.journal
	c.journal = nil
	defer func() { c.journal = journal }()

	replayed := 0
	err := journal.Replay(func(_ string, payload []byte) error {
		e, err := decodeEntry(payload)
		if err != nil {
			return fmt.Errorf("decoding journal entry: %w", err)
		}
		switch {
		case e.Height <= c.st.height:
			return nil
		case e.Height != c.st.height+1:
			return fmt.Errorf("journal gap: have block %d, next entry is %d", c.st.height, e.Height)
		}

		switch e.Kind {
		case EntryFaucet:
			if err := c.faucet(e.To, e.Amount, e.Time); err != nil {
				return fmt.Errorf("replaying block %d: %w", e.Height, err)
			}
		case EntryTx:
			tx := new(types.Transaction)
			if err := tx.UnmarshalBinary(e.Raw); err != nil {
				return fmt.Errorf("replaying block %d: %w", e.Height, err)
			}
			from, err := types.Sender(c.signer, tx)
			if err != nil {
				return fmt.Errorf("replaying block %d: %w", e.Height, err)
			}
			if _, err := c.apply(tx, e.Raw, from, e.Time); err != nil {
				return fmt.Errorf("replaying block %d: %w", e.Height, err)
			}
		default:
			return fmt.Errorf("replaying block %d: unknown entry kind %q", e.Height, e.Kind)
		}
		replayed++
		return nil
	})
	return replayed, err
}
