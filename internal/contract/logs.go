package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
	"github.com/Mohsinsiddi/w3sale/internal/event"
	"github.com/Mohsinsiddi/w3sale/internal/token"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrUnknownEvent is returned for an event or log no built-in declares.
var ErrUnknownEvent = errors.New("unknown event")

// EncodeEvent turns an event emitted by a ledger or a sale into the log
// entry a receipt carries.
func EncodeEvent(source common.Address, ev event.Event) (*types.Log, error) {
	var (
		kind    string
		indexed []common.Hash
		values  []interface{}
	)
	switch e := ev.(type) {
	case token.Transfer:
		kind = TokenID
		indexed = []common.Hash{
			common.BytesToHash(e.From.Bytes()),
			common.BytesToHash(e.To.Bytes()),
		}
		values = []interface{}{e.Value}
	case crowdsale.Buy:
		kind = CrowdsaleID
		values = []interface{}{e.Amount, e.Buyer}
	case crowdsale.Finalize:
		kind = CrowdsaleID
		values = []interface{}{e.TokensSold, e.EthRaised}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.EventName())
	}

	def, ok := MustBuiltin(kind).ABI.Events[ev.EventName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.EventName())
	}
	data, err := def.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", def.Name, err)
	}
	return &types.Log{
		Address: source,
		Topics:  append([]common.Hash{def.ID}, indexed...),
		Data:    data,
	}, nil
}

// Decoded is a log entry resolved against the built-in ABIs.
type Decoded struct {
	Contract string
	Name     string
	Fields   map[string]interface{}
	Order    []string
}

// DecodeLog matches l's first topic against every built-in event.
func DecodeLog(l *types.Log) (*Decoded, error) {
	if l == nil || len(l.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrUnknownEvent)
	}
	for _, b := range AllBuiltins() {
		def, err := b.ABI.EventByID(l.Topics[0])
		if err != nil {
			continue
		}
		return decodeWith(b, def, l)
	}
	return nil, fmt.Errorf("%w: topic %s", ErrUnknownEvent, l.Topics[0].Hex())
}

func decodeWith(b BuiltinKind, def *abi.Event, l *types.Log) (*Decoded, error) {
	fields := map[string]interface{}{}
	if len(l.Data) > 0 {
		if err := b.ABI.UnpackIntoMap(fields, def.Name, l.Data); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", def.Name, err)
		}
	}
	var indexed abi.Arguments
	for _, in := range def.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
		return nil, fmt.Errorf("decoding %s topics: %w", def.Name, err)
	}
	order := make([]string, len(def.Inputs))
	for i, in := range def.Inputs {
		order[i] = in.Name
	}
	return &Decoded{Contract: b.ID, Name: def.Name, Fields: fields, Order: order}, nil
}

// String renders the event as Name(field=value, ...) with amounts in whole units.
func (d *Decoded) String() string {
	parts := make([]string, len(d.Order))
	for i, name := range d.Order {
		parts[i] = name + "=" + FormatValue(d.Fields[name])
	}
	return d.Name + "(" + strings.Join(parts, ", ") + ")"
}

// FormatValue renders one ABI value for display. Integers are taken to be
// 18-decimal amounts.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *big.Int:
		return units.Format(x)
	case common.Address:
		return x.Hex()
	case []common.Address:
		s := make([]string, len(x))
		for i, a := range x {
			s[i] = a.Hex()
		}
		return "[" + strings.Join(s, ", ") + "]"
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}
