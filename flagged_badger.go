package osmlinks

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	flaggedKeyPrefix = "flagged/"
	// Number of attempts for transaction which failed because of concurrent writer
	badgerConflictRetries = 16
)

// flaggedRecord is stored as value for every marked key
type flaggedRecord struct {
	RunID    string    `msgpack:"run_id"`
	MarkedAt time.Time `msgpack:"marked_at"`
}

// BadgerFlaggedSet keeps keys in BadgerDB, so interrupted run could be resumed without re-flagging ways
type BadgerFlaggedSet struct {
	db    *badger.DB
	runID uuid.UUID
}

// OpenBadgerFlaggedSet opens (or creates) registry in the directory. Empty directory means in-memory registry
func OpenBadgerFlaggedSet(dir string, runID uuid.UUID) (*BadgerFlaggedSet, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open flagged registry")
	}
	return &BadgerFlaggedSet{db: db, runID: runID}, nil
}

func (set *BadgerFlaggedSet) MarkIfAbsent(ctx context.Context, key FlaggedKey) (bool, error) {
	data, err := msgpack.Marshal(&flaggedRecord{RunID: set.runID.String(), MarkedAt: time.Now().UTC()})
	if err != nil {
		return false, errors.Wrap(err, "Can't encode flagged record")
	}
	dbKey := badgerFlaggedKey(key)
	for attempt := 0; attempt < badgerConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		marked := false
		err = set.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(dbKey)
			if err == nil {
				return nil
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Set(dbKey, data); err != nil {
				return err
			}
			marked = true
			return nil
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return false, errors.Wrapf(err, "Can't mark '%s'", key)
		}
		return marked, nil
	}
	return false, errors.Wrapf(badger.ErrConflict, "Can't mark '%s' after %d attempts", key, badgerConflictRetries)
}

// Unmark removes the key if it has been marked by this run. Keys of other runs are kept
func (set *BadgerFlaggedSet) Unmark(ctx context.Context, key FlaggedKey) error {
	dbKey := badgerFlaggedKey(key)
	runID := set.runID.String()
	for attempt := 0; attempt < badgerConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := set.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(dbKey)
			if err == badger.ErrKeyNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			var record flaggedRecord
			err = item.Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			if record.RunID != runID {
				return nil
			}
			return txn.Delete(dbKey)
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "Can't unmark '%s'", key)
		}
		return nil
	}
	return errors.Wrapf(badger.ErrConflict, "Can't unmark '%s' after %d attempts", key, badgerConflictRetries)
}

func (set *BadgerFlaggedSet) Contains(ctx context.Context, key FlaggedKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := set.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerFlaggedKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "Can't look up '%s'", key)
	}
	return found, nil
}

// MarkedBy returns identifier of run which marked the key
func (set *BadgerFlaggedSet) MarkedBy(key FlaggedKey) (uuid.UUID, bool, error) {
	var record flaggedRecord
	found := false
	err := set.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerFlaggedKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return uuid.Nil, false, errors.Wrapf(err, "Can't read '%s'", key)
	}
	if !found {
		return uuid.Nil, false, nil
	}
	runID, err := uuid.Parse(record.RunID)
	if err != nil {
		return uuid.Nil, true, errors.Wrapf(err, "Bad run identifier for '%s'", key)
	}
	return runID, true, nil
}

func (set *BadgerFlaggedSet) Close() error {
	return set.db.Close()
}

func badgerFlaggedKey(key FlaggedKey) []byte {
	return []byte(flaggedKeyPrefix + key.String())
}
