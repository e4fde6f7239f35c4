// Package chain is w3sale's local execution environment: an in-process,
// EVM-flavoured chain hosting token ledgers and crowdsales. It accepts
// signed EIP-1559 transactions, applies each one atomically and in a total
// order, and records the events of committed transactions in receipts.
package chain

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/event"
	"github.com/Mohsinsiddi/w3sale/internal/token"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// DefaultChainID matches the usual local development network.
const DefaultChainID = 31337

// Options configure a Chain. Every field is optional.
type Options struct {
	ChainID   *big.Int
	Clock     func() time.Time
	Logger    *zap.Logger
	Store     Store
	Journal   Journal
	Observers []Observer
}

// Chain is safe for concurrent use; all operations are serialized.
type Chain struct {
	mu       sync.Mutex
	chainID  *big.Int
	signer   types.Signer
	clock    func() time.Time
	log      *zap.Logger
	store    Store
	journal  Journal
	watchers []Observer

	st       *state
	receipts map[common.Hash]*Receipt
	order    []*Receipt
}

// New creates an empty chain. Use Open to resume from a Store and Journal.
func New(opts Options) *Chain {
	if opts.ChainID == nil {
		opts.ChainID = big.NewInt(DefaultChainID)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Chain{
		chainID:  new(big.Int).Set(opts.ChainID),
		signer:   types.LatestSignerForChainID(opts.ChainID),
		clock:    opts.Clock,
		log:      opts.Logger,
		store:    opts.Store,
		journal:  opts.Journal,
		watchers: opts.Observers,
		st:       newState(),
		receipts: make(map[common.Hash]*Receipt),
	}
}

// Observe registers another observer.
func (c *Chain) Observe(o Observer) {
	c.mu.Lock()
	c.watchers = append(c.watchers, o)
	c.mu.Unlock()
}

// ChainID returns the chain id transactions must be signed for.
func (c *Chain) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// SendTransaction applies a signed transaction. On error nothing changes:
// no balance, nonce, ledger, sale or receipt.
func (c *Chain) SendTransaction(raw []byte) (*Receipt, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTx, err)
	}
	if tx.ChainId().Cmp(c.chainID) != 0 {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongChain, tx.ChainId(), c.chainID)
	}
	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.apply(tx, raw, from, c.blockTime())
	if err != nil {
		c.log.Info("transaction rejected",
			zap.String("tx", tx.Hash().Hex()),
			zap.String("from", from.Hex()),
			zap.String("code", Code(err)),
			zap.Error(err))
		for _, w := range c.watchers {
			w.Rejected(from, err)
		}
		return nil, err
	}
	return r, nil
}

// blockTime never goes backwards.
func (c *Chain) blockTime() uint64 {
	now := c.clock().Unix()
	if now < 0 || uint64(now) < c.st.time {
		return c.st.time
	}
	return uint64(now)
}

// apply executes and commits tx at block time ts. Callers hold c.mu.
func (c *Chain) apply(tx *types.Transaction, raw []byte, from common.Address, ts uint64) (*Receipt, error) {
	want := c.st.nonces[from]
	switch {
	case tx.Nonce() < want:
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNonceTooLow, tx.Nonce(), want)
	case tx.Nonce() > want:
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNonceTooHigh, tx.Nonce(), want)
	}
	value := tx.Value()
	if (bank{c.st}).BalanceOf(from).Cmp(value) < 0 {
		return nil, fmt.Errorf("%w: %s has %s, sends %s", ErrInsufficientFunds, from.Hex(),
			units.Format((bank{c.st}).BalanceOf(from)), units.Format(value))
	}

	prev := c.st
	c.st = prev.clone()
	x := &call{
		s:      c.st,
		now:    time.Unix(int64(ts), 0),
		from:   from,
		nonce:  tx.Nonce(),
		value:  value,
		events: event.NewRecorder(),
	}

	r := &Receipt{
		TxHash: tx.Hash(),
		From:   from,
		To:     tx.To(),
		Nonce:  tx.Nonce(),
		Value:  value,
		Status: types.ReceiptStatusSuccessful,
	}
	if err := c.execute(x, tx, r); err != nil {
		c.st = prev
		return nil, err
	}

	c.st.nonces[from]++
	if err := c.commit(r, x.events, ts, Entry{Kind: EntryTx, Raw: raw}); err != nil {
		c.st = prev
		return nil, err
	}
	return r, nil
}

func (c *Chain) execute(x *call, tx *types.Transaction, r *Receipt) error {
	to := tx.To()
	if to == nil {
		addr, method, err := x.deploy(tx.Data())
		if err != nil {
			return err
		}
		r.ContractAddress = &addr
		r.Method = method
		return nil
	}

	if err := (bank{x.s}).Transfer(x.from, *to, x.value); err != nil {
		return err
	}
	if !x.s.hasCode(*to) {
		if len(tx.Data()) > 0 {
			return fmt.Errorf("%w: %s", ErrNoContract, to.Hex())
		}
		r.Method = "transfer"
		return nil
	}
	_, method, err := x.invoke(*to, tx.Data())
	r.Method = method
	return err
}

// commit seals the current state as the next block. Callers hold c.mu and
// restore the previous state if commit fails.
func (c *Chain) commit(r *Receipt, events *event.Recorder, ts uint64, entry Entry) error {
	c.st.height++
	c.st.time = ts
	entry.Height = c.st.height
	entry.Time = ts

	if r != nil {
		r.BlockNumber = c.st.height
		r.BlockTime = ts
		for i, rec := range events.Records() {
			l, err := contract.EncodeEvent(rec.Source, rec.Event)
			if err != nil {
				return err
			}
			r.Logs = append(r.Logs, &Log{
				Address:     l.Address,
				Topics:      l.Topics,
				Data:        l.Data,
				BlockNumber: r.BlockNumber,
				TxHash:      r.TxHash,
				Index:       uint(i),
			})
		}
	}

	if c.journal != nil {
		payload, err := entry.encode()
		if err != nil {
			return err
		}
		if err := c.journal.Append(entry.Kind, payload); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	if err := c.persist(r); err != nil {
		// The journal already holds the entry; it is replayed on the next Open.
		c.log.Warn("snapshot write failed", zap.Uint64("height", c.st.height), zap.Error(err))
	}

	if r != nil {
		c.receipts[r.TxHash] = r
		c.order = append(c.order, r)
		c.log.Debug("transaction applied",
			zap.String("tx", r.TxHash.Hex()),
			zap.String("from", r.From.Hex()),
			zap.String("method", r.Method),
			zap.Uint64("block", r.BlockNumber),
			zap.Int("logs", len(r.Logs)))
		for _, w := range c.watchers {
			w.Committed(r)
		}
	}
	return nil
}

func (c *Chain) persist(r *Receipt) error {
	if c.store == nil {
		return nil
	}
	snap, err := c.st.encode(c.chainID)
	if err != nil {
		return err
	}
	var (
		hash    common.Hash
		receipt []byte
	)
	if r != nil {
		hash = r.TxHash
		if receipt, err = jsonMarshal(r); err != nil {
			return err
		}
	}
	return c.store.Commit(c.st.height, snap, hash, receipt)
}

// Faucet credits amount of native currency to to. It is a development aid
// and is journaled like a transaction.
func (c *Chain) Faucet(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: faucet amount must be positive", units.ErrInvalidAmount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.faucet(to, amount, c.blockTime())
}

func (c *Chain) faucet(to common.Address, amount *big.Int, ts uint64) error {
	prev := c.st
	c.st = prev.clone()
	(bank{c.st}).credit(to, amount)
	entry := Entry{Kind: EntryFaucet, To: to, Amount: new(big.Int).Set(amount)}
	if err := c.commit(nil, nil, ts, entry); err != nil {
		c.st = prev
		return err
	}
	c.log.Info("faucet", zap.String("to", to.Hex()), zap.String("amount", units.Format(amount)))
	return nil
}

// Call executes data against the contract at to without committing
// anything and returns the ABI-encoded result.
func (c *Chain) Call(from, to common.Address, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	x := &call{
		s:      c.st.clone(),
		now:    time.Unix(int64(c.blockTime()), 0),
		from:   from,
		nonce:  c.st.nonces[from],
		value:  new(big.Int),
		events: event.NewRecorder(),
	}
	out, _, err := x.invoke(to, data)
	return out, err
}

// Height returns the number of committed blocks.
func (c *Chain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.height
}

// Time returns the time of the latest block.
func (c *Chain) Time() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(int64(c.st.time), 0)
}

// Balance returns the native currency balance of addr.
func (c *Chain) Balance(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (bank{c.st}).BalanceOf(addr)
}

// Nonce returns the next nonce addr must use.
func (c *Chain) Nonce(addr common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.nonces[addr]
}

// Token returns a copy of the ledger at addr.
func (c *Chain) Token(addr common.Address) (*token.Ledger, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.st.tokens[addr]
	if !ok {
		return nil, fmt.Errorf("%w: token %s", ErrNoContract, addr.Hex())
	}
	return l.Clone(), nil
}

// Sale returns a copy of the crowdsale at addr.
func (c *Chain) Sale(addr common.Address) (*crowdsale.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.st.sales[addr]
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrNoContract, addr.Hex())
	}
	return e.Clone(), nil
}

// Contracts lists deployed contracts by kind ("token" or "crowdsale").
func (c *Chain) Contracts() map[common.Address]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[common.Address]string, len(c.st.tokens)+len(c.st.sales))
	for a := range c.st.tokens {
		out[a] = contract.TokenID
	}
	for a := range c.st.sales {
		out[a] = contract.CrowdsaleID
	}
	return out
}

// Receipt returns the receipt of a committed transaction.
func (c *Chain) Receipt(hash common.Hash) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, hash.Hex())
	}
	return r, nil
}

// Logs returns committed logs matching q, oldest first. A positive Limit
// keeps the most recent matches.
func (c *Chain) Logs(q LogQuery) ([]*Log, error) {
	topics, err := eventTopics(q.Event)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Log
	for _, r := range c.order {
		if r.BlockNumber < q.FromBlock {
			continue
		}
		for _, l := range r.Logs {
			if q.Address != nil && l.Address != *q.Address {
				continue
			}
			if topics != nil && !topics[l.Topics[0]] {
				continue
			}
			out = append(out, l)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

// eventTopics resolves an event name to the topics it may carry.
func eventTopics(name string) (map[common.Hash]bool, error) {
	if name == "" {
		return nil, nil
	}
	topics := map[common.Hash]bool{}
	for _, b := range contract.AllBuiltins() {
		if ev, ok := b.ABI.Events[name]; ok {
			topics[ev.ID] = true
		}
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: %s", contract.ErrUnknownEvent, name)
	}
	return topics, nil
}

// Accounts lists every account with a balance or a nonce, sorted.
func (c *Chain) Accounts() []common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := map[common.Address]bool{}
	for a := range c.st.balances {
		seen[a] = true
	}
	for a := range c.st.nonces {
		seen[a] = true
	}
	out := make([]common.Address, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out
}
