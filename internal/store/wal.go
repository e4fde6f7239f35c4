package store

import (
	"os"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	walSegmentThreshold = 1000
	// The journal is the chain's history; old segments are never dropped.
	walMaxSegments = 1 << 20
)

// WALJournal is the append-only journal of committed entries.
type WALJournal struct {
	wal *gowal.Wal
}

// OpenWAL opens (creating if needed) the journal under dir.
func OpenWAL(dir string) (*WALJournal, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure WAL directory %s", dir)
	}
	w, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error init wal")
	}
	return &WALJournal{wal: w}, nil
}

// Append writes payload under the next index.
func (j *WALJournal) Append(kind string, payload []byte) error {
	return errors.Wrap(j.wal.Write(j.wal.CurrentIndex()+1, kind, payload), "journal append")
}

// Replay calls fn for every entry in append order.
func (j *WALJournal) Replay(fn func(kind string, payload []byte) error) error {
	for m := range j.wal.Iterator() {
		if err := fn(m.Key, m.Value); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of entries written.
func (j *WALJournal) Len() uint64 {
	return j.wal.CurrentIndex()
}

// Close flushes and closes the journal.
func (j *WALJournal) Close() error {
	return j.wal.Close()
}
