package object

import (
	"github.com/gofrs/uuid"
	"github.com/minterhq/minterd/store"
)

const TypeObject = "object:core"

var (
	ErrNotOwner           = store.NewError("object", 1, "caller is not the object owner")
	ErrCapabilityConsumed = store.NewError("object", 2, "capability already consumed")
)

// Object wraps an identity with an owner. Typed components attach to the
// identity; the object record is just one more component, so an identity
// whose last component is detached is orphaned, not destroyed.
type Object struct {
	Identity string
	Owner    string
}

func NewIdentity() string {
	return uuid.Must(uuid.NewV4()).String()
}

// DeriveIdentity maps a fixed seed to the same identity on every call,
// used for singleton objects addressed by convention.
func DeriveIdentity(seed string) string {
	return uuid.NewV5(uuid.NamespaceURL, "minterd://"+seed).String()
}

// Create allocates a fresh identity owned by owner and returns the sole
// extend capability for it.
func Create(txn *store.Txn, owner string) (string, *ExtendCapability, error) {
	return createAt(txn, NewIdentity(), owner)
}

// CreateNamed allocates the object at the deterministic identity for seed.
// A second call with the same seed fails with ErrAlreadyExists.
func CreateNamed(txn *store.Txn, owner, seed string) (string, *ExtendCapability, error) {
	return createAt(txn, DeriveIdentity(seed), owner)
}

func createAt(txn *store.Txn, identity, owner string) (string, *ExtendCapability, error) {
	obj := &Object{Identity: identity, Owner: owner}
	err := txn.AttachComponent(identity, TypeObject, obj)
	if err != nil {
		return "", nil, err
	}
	return identity, &ExtendCapability{Identity: identity}, nil
}

func Read(txn *store.Txn, identity string) (*Object, error) {
	var obj Object
	err := txn.ReadComponent(identity, TypeObject, &obj)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func Owner(txn *store.Txn, identity string) (string, error) {
	obj, err := Read(txn, identity)
	if err != nil {
		return "", err
	}
	return obj.Owner, nil
}

// RequireOwner fails with ErrNotOwner unless caller matches the recorded
// owner. Every mutation of an owned identity is gated on this check before
// the mutation, never after.
func RequireOwner(txn *store.Txn, identity, caller string) error {
	owner, err := Owner(txn, identity)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotOwner
	}
	return nil
}

func Transfer(txn *store.Txn, identity, caller, newOwner string) error {
	obj, err := Read(txn, identity)
	if err != nil {
		return err
	}
	if obj.Owner != caller {
		return ErrNotOwner
	}
	obj.Owner = newOwner
	return txn.WriteComponent(identity, TypeObject, obj)
}

// Destroy detaches the object record. Remaining components keep the
// identity addressable; callers detach those first.
func Destroy(txn *store.Txn, identity string) error {
	var obj Object
	return txn.DetachComponent(identity, TypeObject, &obj)
}
