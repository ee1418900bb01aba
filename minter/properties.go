package minter

import (
	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
)

const (
	TypePropertiesV1 = "minter:properties:v1"
	TypePropertiesV2 = "minter:properties:v2"
)

// Properties records which mutations the creator may perform on the
// collection and on its minted tokens. Fields are pointers so a value
// explicitly set to false stays distinguishable from one never set, and
// migration carries that distinction across schemas.
type Properties struct {
	MutableDescription       *bool
	MutableURI               *bool
	MutableTokenDescription  *bool
	MutableTokenName         *bool
	MutableTokenProperties   *bool
	MutableTokenURI          *bool
	TokensBurnableByCreator  *bool
	TokensFreezableByCreator *bool
	Soulbound                *bool
}

func Bool(v bool) *bool {
	return &v
}

func flagSet(b *bool) bool {
	return b != nil && *b
}

// CreateProperties attaches the flags under the identity the authority
// proves, in the current schema.
func CreateProperties(txn *store.Txn, authority object.AuthorityProof, props *Properties) error {
	return txn.AttachComponent(authority.Identity(), TypePropertiesV1, props)
}

// ReadProperties distinguishes a collection that was never configured from
// one whose flags are all false.
func ReadProperties(txn *store.Txn, identity string) (*Properties, error) {
	props, _, err := readPropertiesTagged(txn, identity)
	return props, err
}

func readPropertiesTagged(txn *store.Txn, identity string) (*Properties, string, error) {
	var props Properties
	err := txn.ReadComponent(identity, TypePropertiesV2, &props)
	if err == nil {
		return &props, TypePropertiesV2, nil
	}
	if err != store.ErrNotFound {
		return nil, "", err
	}
	err = txn.ReadComponent(identity, TypePropertiesV1, &props)
	if err == store.ErrNotFound {
		return nil, "", ErrPropertiesNotFound
	} else if err != nil {
		return nil, "", err
	}
	return &props, TypePropertiesV1, nil
}

func SetMutableDescription(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.MutableDescription = Bool(value) })
}

func SetMutableURI(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.MutableURI = Bool(value) })
}

func SetMutableTokenDescription(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.MutableTokenDescription = Bool(value) })
}

func SetMutableTokenName(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.MutableTokenName = Bool(value) })
}

func SetMutableTokenProperties(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.MutableTokenProperties = Bool(value) })
}

func SetMutableTokenURI(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.MutableTokenURI = Bool(value) })
}

func SetTokensBurnableByCreator(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.TokensBurnableByCreator = Bool(value) })
}

func SetTokensFreezableByCreator(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.TokensFreezableByCreator = Bool(value) })
}

func SetSoulbound(txn *store.Txn, caller, col string, value bool) error {
	return setProperty(txn, caller, col, func(p *Properties) { p.Soulbound = Bool(value) })
}

// setProperty mutates one flag in place; the change is visible to any mint
// or migration later in the same transaction and to all subsequent ones.
func setProperty(txn *store.Txn, caller, col string, set func(*Properties)) error {
	err := requireCollectionOwner(txn, col, caller)
	if err != nil {
		return err
	}
	props, tag, err := readPropertiesTagged(txn, col)
	if err != nil {
		return err
	}
	set(props)
	return txn.WriteComponent(col, tag, props)
}

func requireCollectionOwner(txn *store.Txn, col, caller string) error {
	owner, err := object.Owner(txn, col)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotCollectionOwner
	}
	return nil
}
