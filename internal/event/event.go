// Package event carries contract events from the token ledger and the sale
// engine to whoever is recording them (the chain's receipt, a test, ...).
package event

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Event is anything a contract can emit.
type Event interface {
	EventName() string
}

// Emitter receives events.
type Emitter interface {
	Emit(ev Event)
}

// Func adapts a plain function to an Emitter.
type Func func(ev Event)

// Emit calls f(ev).
func (f Func) Emit(ev Event) { f(ev) }

// Discard drops every event.
var Discard Emitter = Func(func(Event) {})

// Record is one emitted event together with the contract that emitted it.
type Record struct {
	Source common.Address
	Event  Event
}

// Recorder collects events in emission order.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// For returns an Emitter that stamps every event with source.
func (r *Recorder) For(source common.Address) Emitter {
	return Func(func(ev Event) {
		r.mu.Lock()
		r.records = append(r.records, Record{Source: source, Event: ev})
		r.mu.Unlock()
	})
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Events returns just the events, in order.
func (r *Recorder) Events() []Event {
	recs := r.Records()
	out := make([]Event, len(recs))
	for i, rec := range recs {
		out[i] = rec.Event
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}
