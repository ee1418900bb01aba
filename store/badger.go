package store

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog/log"
)

type BadgerStore struct {
	db *badger.DB
}

func OpenBadger(ctx context.Context, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			lsm, vlog := db.Size()
			log.Debug().Int64("lsm", lsm).Int64("vlog", vlog).Msg("badger size")
			if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
				err := db.RunValueLogGC(0.5)
				log.Debug().Err(err).Msg("badger RunValueLogGC")
			}
			time.Sleep(5 * time.Minute)
		}
	}()

	return &BadgerStore{
		db: db,
	}, nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func (bs *BadgerStore) Badger() *badger.DB {
	return bs.db
}

// Txn scopes a group of component, ledger and event writes to a single
// badger transaction. Any error returned from the closure discards every
// write in the group.
type Txn struct {
	txn *badger.Txn
}

func (bs *BadgerStore) Update(fn func(txn *Txn) error) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return fn(&Txn{txn: txn})
	})
}

func (bs *BadgerStore) View(fn func(txn *Txn) error) error {
	return bs.db.View(func(txn *badger.Txn) error {
		return fn(&Txn{txn: txn})
	})
}

func (bs *BadgerStore) WriteProperty(key, val []byte) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (bs *BadgerStore) ReadProperty(key []byte) ([]byte, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
