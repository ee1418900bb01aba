package store

import (
	"github.com/dgraph-io/badger/v3"
)

const prefixComponentPayload = "COMPONENT:PAYLOAD:"

func componentKey(identity, typeTag string) []byte {
	key := []byte(prefixComponentPayload + typeTag + ":")
	return append(key, []byte(identity)...)
}

// AttachComponent stores val as the single component of type typeTag on
// identity. At most one component of each type may exist per identity.
func (txn *Txn) AttachComponent(identity, typeTag string, val interface{}) error {
	key := componentKey(identity, typeTag)
	_, err := txn.txn.Get(key)
	if err == nil {
		return ErrAlreadyExists
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	return txn.txn.Set(key, MsgpackMarshalPanic(val))
}

// WriteComponent overwrites an attached component in place, whether or not
// one is present. Mutating entry points read, modify and write back under
// the same transaction.
func (txn *Txn) WriteComponent(identity, typeTag string, val interface{}) error {
	return txn.txn.Set(componentKey(identity, typeTag), MsgpackMarshalPanic(val))
}

func (txn *Txn) ReadComponent(identity, typeTag string, val interface{}) error {
	item, err := txn.txn.Get(componentKey(identity, typeTag))
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	return MsgpackUnmarshal(raw, val)
}

func (txn *Txn) HasComponent(identity, typeTag string) (bool, error) {
	_, err := txn.txn.Get(componentKey(identity, typeTag))
	if err == badger.ErrKeyNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// DetachComponent removes the component and decodes its final value into
// val. The removal and whatever is attached in its place commit or abort
// together with the enclosing transaction.
func (txn *Txn) DetachComponent(identity, typeTag string, val interface{}) error {
	key := componentKey(identity, typeTag)
	item, err := txn.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	err = txn.txn.Delete(key)
	if err != nil {
		return err
	}
	return MsgpackUnmarshal(raw, val)
}
