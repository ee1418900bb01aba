package store

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v3"
)

const prefixLedgerBalance = "LEDGER:BALANCE:"

func ledgerKey(identity string) []byte {
	return []byte(prefixLedgerBalance + identity)
}

func (txn *Txn) Balance(identity string) (uint64, error) {
	item, err := txn.txn.Get(ledgerKey(identity))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(val), nil
}

func (txn *Txn) setBalance(identity string, amount uint64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, amount)
	return txn.txn.Set(ledgerKey(identity), val)
}

// Deposit credits identity, creating the balance record if absent.
func (txn *Txn) Deposit(identity string, amount uint64) error {
	balance, err := txn.Balance(identity)
	if err != nil {
		return err
	}
	return txn.setBalance(identity, balance+amount)
}

// TransferFunds moves exactly amount between two identities.
func (txn *Txn) TransferFunds(from, to string, amount uint64) error {
	balance, err := txn.Balance(from)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	err = txn.setBalance(from, balance-amount)
	if err != nil {
		return err
	}
	return txn.Deposit(to, amount)
}
