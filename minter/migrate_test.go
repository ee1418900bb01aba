package minter

import (
	"testing"

	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
	"github.com/stretchr/testify/require"
)

func TestMigrateCollection(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	admin := object.NewIdentity()

	col := initCollection(t, bs, creator, &InitParams{
		Name:  "Versioned",
		Flags: Flags{MutableURI: true, MutableTokenURI: true},
	})

	// nothing migrates before the migration authority exists
	err := bs.Update(func(txn *store.Txn) error {
		return MigrateCollection(txn, creator, col)
	})
	require.ErrorIs(err, ErrNotMigrationAuthority)

	err = bs.Update(func(txn *store.Txn) error {
		_, err := InitMigration(txn, admin)
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		_, err := InitMigration(txn, admin)
		return err
	})
	require.ErrorIs(err, store.ErrAlreadyExists)

	err = bs.Update(func(txn *store.Txn) error {
		return MigrateCollection(txn, object.NewIdentity(), col)
	})
	require.ErrorIs(err, ErrNotCollectionOwner)

	var before *CollectionRefs
	err = bs.View(func(txn *store.Txn) error {
		var err error
		before, _, err = readCollectionRefs(txn, col)
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return MigrateCollection(txn, creator, col)
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		refs, tag, err := readCollectionRefs(txn, col)
		if err != nil {
			return err
		}
		require.Equal(TypeCollectionRefsV2, tag)
		require.Equal(before.Extend, refs.Extend)
		require.Nil(refs.MutateDescription)
		require.Equal(before.MutateURI, refs.MutateURI)

		found, err := txn.HasComponent(col, TypeCollectionRefsV1)
		if err != nil {
			return err
		}
		require.False(found)

		props, tag, err := readPropertiesTagged(txn, col)
		if err != nil {
			return err
		}
		require.Equal(TypePropertiesV2, tag)
		require.True(flagSet(props.MutableURI))
		require.NotNil(props.Soulbound)
		require.False(*props.Soulbound)

		tm, err := ReadTokenMinter(txn, col)
		if err != nil {
			return err
		}
		require.Equal(uint64(SchemaVersionV2), tm.Version)
		return nil
	})
	require.Nil(err)

	// the v1 source is gone, a repeat finds nothing to move
	err = bs.Update(func(txn *store.Txn) error {
		return MigrateCollection(txn, creator, col)
	})
	require.ErrorIs(err, store.ErrNotFound)

	// mints after migration write token refs in the new schema
	var token string
	err = bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: col, Name: "v2", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		refs, tag, err := readTokenRefs(txn, token)
		if err != nil {
			return err
		}
		require.Equal(TypeTokenRefsV2, tag)
		require.NotNil(refs.MutateURI)
		return nil
	})
	require.Nil(err)
}

func TestMigrateToken(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	alice := object.NewIdentity()
	admin := object.NewIdentity()

	col := initCollection(t, bs, creator, &InitParams{
		Name:  "TokenVersioned",
		Flags: Flags{TokensBurnableByCreator: true, TokensFreezableByCreator: true},
	})
	var token string
	err := bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: col, Recipient: alice, Name: "t1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return MigrateToken(txn, alice, token)
	})
	require.ErrorIs(err, ErrNotMigrationAuthority)

	err = bs.Update(func(txn *store.Txn) error {
		_, err := InitMigration(txn, admin)
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return MigrateToken(txn, creator, token)
	})
	require.ErrorIs(err, ErrNotTokenOwner)

	var before *TokenRefs
	err = bs.View(func(txn *store.Txn) error {
		var err error
		before, _, err = readTokenRefs(txn, token)
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return MigrateToken(txn, alice, token)
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		refs, tag, err := readTokenRefs(txn, token)
		if err != nil {
			return err
		}
		require.Equal(TypeTokenRefsV2, tag)
		require.Equal(before.Burn, refs.Burn)
		require.Equal(before.Transfer, refs.Transfer)
		require.Nil(refs.MutateURI)
		require.Equal(before.Frozen, refs.Frozen)

		found, err := txn.HasComponent(token, TypeTokenRefsV1)
		if err != nil {
			return err
		}
		require.False(found)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return MigrateToken(txn, alice, token)
	})
	require.ErrorIs(err, store.ErrNotFound)

	// capabilities survive the move: the creator can still burn
	err = bs.Update(func(txn *store.Txn) error {
		return Burn(txn, creator, col, token)
	})
	require.Nil(err)
}
