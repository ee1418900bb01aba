package minter

import (
	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
)

const (
	TypeMigration = "minter:migration"

	migrationSeed = "minter:migration:authority"
)

// Migration holds the extend capability of the dedicated migration
// authority, the only identity allowed to detach capability components
// from the v1 schema and attach the rebuilt values under v2. It is a
// trusted relay for these entry points only, never a general-purpose way
// to launder privileges.
type Migration struct {
	Extend *object.ExtendCapability
}

// MigrationIdentity is deterministic: derived from a fixed seed, so every
// caller addresses the same singleton.
func MigrationIdentity() string {
	return object.DeriveIdentity(migrationSeed)
}

// InitMigration creates the migration authority object once. A second call
// fails with ErrAlreadyExists.
func InitMigration(txn *store.Txn, admin string) (string, error) {
	identity, cap, err := object.CreateNamed(txn, admin, migrationSeed)
	if err != nil {
		return "", err
	}
	err = txn.AttachComponent(identity, TypeMigration, &Migration{Extend: cap})
	if err != nil {
		return "", err
	}
	return identity, nil
}

func migrationAuthority(txn *store.Txn) (object.AuthorityProof, error) {
	var m Migration
	err := txn.ReadComponent(MigrationIdentity(), TypeMigration, &m)
	if err == store.ErrNotFound {
		return object.AuthorityProof{}, ErrNotMigrationAuthority
	} else if err != nil {
		return object.AuthorityProof{}, err
	}
	proof := object.DeriveAuthority(m.Extend)
	if proof.Identity() != MigrationIdentity() {
		return object.AuthorityProof{}, ErrNotMigrationAuthority
	}
	return proof, nil
}

// MigrateCollection relocates the collection's capability tokens and
// property flags from the v1 component types to v2. The detach and the
// attach share one store transaction: at no point does a committed state
// hold the capabilities in neither schema, and no intermediate party ever
// holds them. Repeating the call fails with NotFound on the empty source.
func MigrateCollection(txn *store.Txn, caller, col string) error {
	owner, err := object.Owner(txn, col)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotCollectionOwner
	}
	_, err = migrationAuthority(txn)
	if err != nil {
		return err
	}

	var refs CollectionRefs
	err = txn.DetachComponent(col, TypeCollectionRefsV1, &refs)
	if err != nil {
		return err
	}
	next := &CollectionRefs{
		Extend:            refs.Extend,
		MutateDescription: refs.MutateDescription,
		MutateURI:         refs.MutateURI,
	}
	err = txn.AttachComponent(col, TypeCollectionRefsV2, next)
	if err != nil {
		return err
	}

	var props Properties
	err = txn.DetachComponent(col, TypePropertiesV1, &props)
	if err == nil {
		// nil fields stay nil: a flag never set is carried as unset, not
		// defaulted to false.
		nextProps := &Properties{
			MutableDescription:       props.MutableDescription,
			MutableURI:               props.MutableURI,
			MutableTokenDescription:  props.MutableTokenDescription,
			MutableTokenName:         props.MutableTokenName,
			MutableTokenProperties:   props.MutableTokenProperties,
			MutableTokenURI:          props.MutableTokenURI,
			TokensBurnableByCreator:  props.TokensBurnableByCreator,
			TokensFreezableByCreator: props.TokensFreezableByCreator,
			Soulbound:                props.Soulbound,
		}
		err = txn.AttachComponent(col, TypePropertiesV2, nextProps)
		if err != nil {
			return err
		}
	} else if err != store.ErrNotFound {
		return err
	}

	tm, err := ReadTokenMinter(txn, col)
	if err != nil {
		return err
	}
	tm.Version = SchemaVersionV2
	err = txn.WriteComponent(col, TypeTokenMinter, tm)
	if err != nil {
		return err
	}

	return txn.WriteEvent(&store.Event{
		Module:    "migration",
		Action:    "migrate_collection",
		Identity:  col,
		OldSchema: TypeCollectionRefsV1,
		NewSchema: TypeCollectionRefsV2,
	})
}

// MigrateToken relocates a minted token's capability tokens from v1 to v2,
// field by field, under the same atomicity rule as MigrateCollection.
func MigrateToken(txn *store.Txn, caller, token string) error {
	owner, err := object.Owner(txn, token)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotTokenOwner
	}
	_, err = migrationAuthority(txn)
	if err != nil {
		return err
	}

	var refs TokenRefs
	err = txn.DetachComponent(token, TypeTokenRefsV1, &refs)
	if err != nil {
		return err
	}
	next := &TokenRefs{
		Burn:              refs.Burn,
		Transfer:          refs.Transfer,
		MutateDescription: refs.MutateDescription,
		MutateName:        refs.MutateName,
		MutateURI:         refs.MutateURI,
		MutateProperties:  refs.MutateProperties,
		Frozen:            refs.Frozen,
	}
	err = txn.AttachComponent(token, TypeTokenRefsV2, next)
	if err != nil {
		return err
	}

	return txn.WriteEvent(&store.Event{
		Module:    "migration",
		Action:    "migrate_token",
		Identity:  token,
		OldSchema: TypeTokenRefsV1,
		NewSchema: TypeTokenRefsV2,
	})
}
