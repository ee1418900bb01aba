package minter

import (
	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
)

const TypeWhitelist = "minter:whitelist"

// Whitelist is the remaining allowed mint count per minter identity.
type Whitelist struct {
	Minters map[string]uint64
}

// InitWhitelist attaches an empty quota ledger under the identity the
// authority proves.
func InitWhitelist(txn *store.Txn, authority object.AuthorityProof) error {
	wl := &Whitelist{Minters: make(map[string]uint64)}
	return txn.AttachComponent(authority.Identity(), TypeWhitelist, wl)
}

// AddToWhitelist upserts quotas for a batch of minters. Each address's
// quota is overwritten with the provided value, never summed with a
// previous one. Only the collection owner may call this.
func AddToWhitelist(txn *store.Txn, caller, col string, addresses []string, maxMints []uint64) error {
	err := object.RequireOwner(txn, col, caller)
	if err != nil {
		return err
	}
	if len(addresses) != len(maxMints) {
		return ErrArgumentMismatch
	}
	var wl Whitelist
	err = txn.ReadComponent(col, TypeWhitelist, &wl)
	if err == store.ErrNotFound {
		return ErrGuardDoesNotExist
	} else if err != nil {
		return err
	}
	if wl.Minters == nil {
		wl.Minters = make(map[string]uint64)
	}
	for i, addr := range addresses {
		wl.Minters[addr] = maxMints[i]
	}
	return txn.WriteComponent(col, TypeWhitelist, &wl)
}

// WhitelistedQuota returns the remaining quota for a minter, ErrNoEntry if
// the minter was never added.
func WhitelistedQuota(txn *store.Txn, col, minter string) (uint64, error) {
	var wl Whitelist
	err := txn.ReadComponent(col, TypeWhitelist, &wl)
	if err == store.ErrNotFound {
		return 0, ErrGuardDoesNotExist
	} else if err != nil {
		return 0, err
	}
	quota, found := wl.Minters[minter]
	if !found {
		return 0, ErrNoEntry
	}
	return quota, nil
}

// RemoveWhitelistGuard detaches the whitelist and discards its quotas.
// Guards are not archived.
func RemoveWhitelistGuard(txn *store.Txn, caller, col string) error {
	err := object.RequireOwner(txn, col, caller)
	if err != nil {
		return err
	}
	return whitelistGuard{}.Remove(txn, col)
}

type whitelistGuard struct{}

func (whitelistGuard) Name() string {
	return "whitelist"
}

func (whitelistGuard) IsEnabled(txn *store.Txn, identity string) (bool, error) {
	return txn.HasComponent(identity, TypeWhitelist)
}

func (whitelistGuard) Charge(txn *store.Txn, identity string, amount uint64) (uint64, error) {
	return amount, nil
}

// Execute decrements the caller's remaining quota. The entry stays in the
// map at zero; only an explicit owner upsert can raise it again.
func (whitelistGuard) Execute(txn *store.Txn, identity, caller string, amount uint64) error {
	var wl Whitelist
	err := txn.ReadComponent(identity, TypeWhitelist, &wl)
	if err != nil {
		return err
	}
	remaining, found := wl.Minters[caller]
	if !found {
		return ErrNoEntry
	}
	if remaining < amount {
		return ErrQuotaExceeded
	}
	wl.Minters[caller] = remaining - amount
	return txn.WriteComponent(identity, TypeWhitelist, &wl)
}

func (whitelistGuard) Remove(txn *store.Txn, identity string) error {
	var wl Whitelist
	err := txn.DetachComponent(identity, TypeWhitelist, &wl)
	if err == store.ErrNotFound {
		return ErrGuardDoesNotExist
	}
	return err
}
