package minter

import (
	"github.com/minterhq/minterd/store"
)

// Guard is an admission check attached to a collection and enforced before
// a mint proceeds. Guards run in the fixed order of mintGuards; there is no
// dynamic registry, so the order stays deterministic and auditable.
type Guard interface {
	Name() string
	IsEnabled(txn *store.Txn, identity string) (bool, error)
	// Charge maps a mint of amount units to the amount this guard debits:
	// the whitelist debits quota units, the coin payment its fee per unit.
	Charge(txn *store.Txn, identity string, amount uint64) (uint64, error)
	Execute(txn *store.Txn, identity, caller string, amount uint64) error
	Remove(txn *store.Txn, identity string) error
}

// Whitelist runs before coin payment: quota exhaustion must reject before
// any fee is charged.
var mintGuards = []Guard{
	whitelistGuard{},
	coinPaymentGuard{},
}

// Guards selects which admission checks an init call attaches.
type Guards struct {
	Whitelist *WhitelistConfig
	Payment   *PaymentConfig
}

type WhitelistConfig struct {
	Addresses []string
	MaxMints  []uint64
}

type PaymentConfig struct {
	Amount      uint64
	Destination string
}
