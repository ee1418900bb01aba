package minter

import "github.com/minterhq/minterd/store"

var (
	ErrNotCollectionOwner = store.NewError("minter", 1, "caller is not the collection owner")
	ErrNotTokenOwner      = store.NewError("minter", 2, "caller is not the token owner")
	ErrPaused             = store.NewError("minter", 3, "minting is paused")
	ErrPropertiesNotFound = store.NewError("minter", 4, "properties not configured")
	ErrNotBurnable        = store.NewError("minter", 5, "tokens are not burnable by the creator")
	ErrSoulbound          = store.NewError("minter", 6, "token is soulbound")
	ErrFieldImmutable     = store.NewError("minter", 7, "field is not mutable")
	ErrNotFreezable       = store.NewError("minter", 8, "token transfers are not freezable")
	ErrFrozen             = store.NewError("minter", 9, "token transfers are frozen")

	ErrNoEntry          = store.NewError("whitelist", 1, "minter is not whitelisted")
	ErrQuotaExceeded    = store.NewError("whitelist", 2, "whitelist quota exceeded")
	ErrArgumentMismatch = store.NewError("whitelist", 3, "addresses and quotas differ in length")

	ErrInsufficientPayment = store.NewError("coin_payment", 1, "configured fee below requested amount")

	ErrGuardDoesNotExist = store.NewError("guard", 1, "guard is not attached")

	ErrNotMigrationAuthority = store.NewError("migration", 1, "caller is not the migration authority")
)
