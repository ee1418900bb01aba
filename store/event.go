package store

import (
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/gofrs/uuid"
)

const (
	prefixEventPayload = "EVENT:PAYLOAD:"
	prefixEventTimed   = "EVENT:TIMED:"
)

// Event is an append-only audit record written by the entry points, in the
// same transaction as the state change it describes.
type Event struct {
	Id        string
	Module    string
	Action    string
	Identity  string
	OldSchema string
	NewSchema string
	CreatedAt time.Time
}

func (txn *Txn) WriteEvent(evt *Event) error {
	if evt.Id == "" {
		evt.Id = uuid.Must(uuid.NewV4()).String()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now()
	}
	key := []byte(prefixEventPayload + evt.Id)
	err := txn.txn.Set(key, MsgpackMarshalPanic(evt))
	if err != nil {
		return err
	}
	key = append([]byte(prefixEventTimed), tsToBytes(evt.CreatedAt)...)
	key = append(key, []byte(evt.Id)...)
	return txn.txn.Set(key, []byte{1})
}

func (bs *BadgerStore) ListEvents(limit int) ([]*Event, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefixEventTimed)
	it := txn.NewIterator(opts)
	defer it.Close()

	var evts []*Event
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := string(key[len(opts.Prefix)+8:])
		item, err := txn.Get([]byte(prefixEventPayload + id))
		if err != nil {
			return nil, err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var evt Event
		err = MsgpackUnmarshal(val, &evt)
		if err != nil {
			return nil, err
		}
		evts = append(evts, &evt)
		if len(evts) == limit {
			break
		}
	}
	return evts, nil
}
