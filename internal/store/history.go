package store

import (
	"encoding/binary"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"manetperf/internal/model"
)

const runsBucket = "runs"

// Run is one recorded experiment.
type Run struct {
	Seq        uint64          `cbor:"1,keyasint"`
	RecordedAt time.Time       `cbor:"2,keyasint"`
	Backend    string          `cbor:"3,keyasint"`
	Seed       int64           `cbor:"4,keyasint"`
	Duration   time.Duration   `cbor:"5,keyasint"`
	Row        model.ResultRow `cbor:"6,keyasint"`
}

// History persists every recorded run in a bbolt database.
type History struct {
	db *bolt.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*History, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open run history")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not initialize run history")
	}
	return &History{db: db}, nil
}

// Close releases the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Put appends run and returns it with its assigned sequence number.
func (h *History) Put(run Run) (Run, error) {
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now().UTC()
	}
	err := h.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(runsBucket))
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}
		run.Seq = seq

		raw, err := cbor.Marshal(&run)
		if err != nil {
			return err
		}
		return bkt.Put(seqKey(seq), raw)
	})
	if err != nil {
		return Run{}, errors.Wrap(err, "could not store run")
	}
	return run, nil
}

// List returns every run in insertion order.
func (h *History) List() ([]Run, error) {
	var runs []Run
	err := h.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).ForEach(func(k, v []byte) error {
			var run Run
			if err := cbor.Unmarshal(v, &run); err != nil {
				return errors.Wrapf(err, "run %d", binary.BigEndian.Uint64(k))
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Rows returns the result rows of every stored run.
func (h *History) Rows() ([]model.ResultRow, error) {
	runs, err := h.List()
	if err != nil {
		return nil, err
	}
	rows := make([]model.ResultRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, r.Row)
	}
	return rows, nil
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}
