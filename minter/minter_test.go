package minter

import (
	"context"
	"math"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/minterhq/minterd/collection"
	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
	"github.com/stretchr/testify/require"
)

func TestInitStartsPaused(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()

	var col string
	err := bs.Update(func(txn *store.Txn) error {
		tm, err := Init(txn, creator, &InitParams{
			Name:        "Test Collection",
			Description: "collection description",
			URI:         "https://example.test/collection",
			MaxSupply:   10,
		})
		if err != nil {
			return err
		}
		col = tm.CollectionIdentity
		require.True(tm.Paused)
		require.Equal(uint64(SchemaVersionV1), tm.Version)
		require.Equal(creator, tm.Creator)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		_, err := Mint(txn, creator, &MintParams{Collection: col, Name: "t", Amount: 1})
		return err
	})
	require.ErrorIs(err, ErrPaused)

	err = bs.Update(func(txn *store.Txn) error {
		return SetMintingStatus(txn, object.NewIdentity(), col, true)
	})
	require.ErrorIs(err, object.ErrNotOwner)

	err = bs.Update(func(txn *store.Txn) error {
		return SetMintingStatus(txn, creator, col, true)
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		_, err := Mint(txn, creator, &MintParams{Collection: col, Name: "t", Amount: 1})
		return err
	})
	require.Nil(err)
}

// The guarded mint walkthrough: fixed supply of one, a single whitelisted
// minter with quota one, and a fixed fee paid to the creator.
func TestGuardedMintScenario(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	minterA := object.NewIdentity()

	col := initCollection(t, bs, creator, &InitParams{
		Name:      "Guarded",
		MaxSupply: 1,
		Guards: Guards{
			Whitelist: &WhitelistConfig{Addresses: []string{minterA}, MaxMints: []uint64{1}},
			Payment:   &PaymentConfig{Amount: 100, Destination: creator},
		},
	})
	err := bs.Update(func(txn *store.Txn) error {
		return txn.Deposit(minterA, 100)
	})
	require.Nil(err)

	var token string
	err = bs.Update(func(txn *store.Txn) error {
		token, err = Mint(txn, minterA, &MintParams{Collection: col, Name: "g1", Amount: 1})
		return err
	})
	require.Nil(err)
	require.NotEmpty(token)

	err = bs.View(func(txn *store.Txn) error {
		quota, err := WhitelistedQuota(txn, col, minterA)
		if err != nil {
			return err
		}
		require.Equal(uint64(0), quota)
		balance, err := txn.Balance(minterA)
		if err != nil {
			return err
		}
		require.Equal(uint64(0), balance)
		balance, err = txn.Balance(creator)
		if err != nil {
			return err
		}
		require.Equal(uint64(100), balance)
		owner, err := object.Owner(txn, token)
		if err != nil {
			return err
		}
		require.Equal(minterA, owner)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		_, err := Mint(txn, minterA, &MintParams{Collection: col, Name: "g2", Amount: 1})
		return err
	})
	require.ErrorIs(err, ErrQuotaExceeded)

	err = bs.View(func(txn *store.Txn) error {
		balance, err := txn.Balance(minterA)
		if err != nil {
			return err
		}
		require.Equal(uint64(0), balance)
		return nil
	})
	require.Nil(err)
}

// A later guard failure must roll back an earlier guard's debit.
func TestGuardAtomicity(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	minterB := object.NewIdentity()

	col := initCollection(t, bs, creator, &InitParams{
		Name: "Atomic",
		Guards: Guards{
			Whitelist: &WhitelistConfig{Addresses: []string{minterB}, MaxMints: []uint64{5}},
			Payment:   &PaymentConfig{Amount: 100, Destination: creator},
		},
	})

	// minterB has quota but no funds: whitelist debits, payment aborts
	err := bs.Update(func(txn *store.Txn) error {
		_, err := Mint(txn, minterB, &MintParams{Collection: col, Name: "a1", Amount: 1})
		return err
	})
	require.ErrorIs(err, store.ErrInsufficientFunds)

	err = bs.View(func(txn *store.Txn) error {
		quota, err := WhitelistedQuota(txn, col, minterB)
		if err != nil {
			return err
		}
		require.Equal(uint64(5), quota)
		return nil
	})
	require.Nil(err)
}

func TestPausedMintLeavesStoreUntouched(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	minterA := object.NewIdentity()

	col := initCollection(t, bs, creator, &InitParams{
		Name: "Pausable",
		Guards: Guards{
			Whitelist: &WhitelistConfig{Addresses: []string{minterA}, MaxMints: []uint64{3}},
		},
	})
	err := bs.Update(func(txn *store.Txn) error {
		return SetMintingStatus(txn, creator, col, false)
	})
	require.Nil(err)

	before := snapshotStore(t, bs)
	err = bs.Update(func(txn *store.Txn) error {
		_, err := Mint(txn, minterA, &MintParams{Collection: col, Name: "p1", Amount: 1})
		return err
	})
	require.ErrorIs(err, ErrPaused)
	require.Equal(before, snapshotStore(t, bs))
}

func TestMintCapabilitiesFollowFlags(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()

	locked := initCollection(t, bs, creator, &InitParams{
		Name: "Locked",
		Flags: Flags{
			MutableTokenURI:         false,
			TokensBurnableByCreator: false,
		},
	})
	var token string
	err := bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: locked, Name: "l1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		refs, tag, err := readTokenRefs(txn, token)
		if err != nil {
			return err
		}
		require.Equal(TypeTokenRefsV1, tag)
		require.Nil(refs.MutateURI)
		require.Nil(refs.Burn)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return SetTokenURI(txn, creator, locked, token, "https://example.test/new")
	})
	require.ErrorIs(err, ErrFieldImmutable)

	err = bs.Update(func(txn *store.Txn) error {
		return Burn(txn, creator, locked, token)
	})
	require.ErrorIs(err, ErrNotBurnable)

	open := initCollection(t, bs, creator, &InitParams{
		Name: "Open",
		Flags: Flags{
			MutableTokenURI:         true,
			TokensBurnableByCreator: true,
		},
	})
	err = bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: open, Name: "o1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return SetTokenURI(txn, creator, open, token, "https://example.test/new")
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		art, err := collection.ReadArtifact(txn, token)
		if err != nil {
			return err
		}
		require.Equal("https://example.test/new", art.URI)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return Burn(txn, creator, open, token)
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		_, err := collection.ReadArtifact(txn, token)
		return err
	})
	require.ErrorIs(err, store.ErrNotFound)
}

func TestMintToRecipient(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	recipient := object.NewIdentity()

	col := initCollection(t, bs, creator, &InitParams{
		Name: "Numbered",
		MintConfig: &MintConfig{
			NamePrefix:       "test token #",
			TokenDescription: "test token description",
			TokenURIs:        []string{"https://example.test/1", "https://example.test/2"},
			URIWeights:       []uint64{10, 1},
		},
	})

	var token string
	err := bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = MintToRecipient(txn, creator, col, recipient)
		return err
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		art, err := collection.ReadArtifact(txn, token)
		if err != nil {
			return err
		}
		require.Equal("test token #1", art.Name)
		require.Contains([]string{"https://example.test/1", "https://example.test/2"}, art.URI)
		owner, err := object.Owner(txn, token)
		if err != nil {
			return err
		}
		require.Equal(recipient, owner)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		token, err = MintToRecipient(txn, creator, col, recipient)
		return err
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		art, err := collection.ReadArtifact(txn, token)
		if err != nil {
			return err
		}
		require.Equal("test token #2", art.Name)
		return nil
	})
	require.Nil(err)
}

func TestTransferAndFreeze(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	alice := object.NewIdentity()
	bob := object.NewIdentity()

	soulbound := initCollection(t, bs, creator, &InitParams{
		Name:  "Bound",
		Flags: Flags{Soulbound: true},
	})
	var token string
	err := bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: soulbound, Recipient: alice, Name: "b1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return TransferToken(txn, alice, token, bob)
	})
	require.ErrorIs(err, ErrSoulbound)

	freezable := initCollection(t, bs, creator, &InitParams{
		Name:  "Freezable",
		Flags: Flags{TokensFreezableByCreator: true},
	})
	err = bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: freezable, Recipient: alice, Name: "f1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return FreezeToken(txn, creator, freezable, token, true)
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return TransferToken(txn, alice, token, bob)
	})
	require.ErrorIs(err, ErrFrozen)

	err = bs.Update(func(txn *store.Txn) error {
		return FreezeToken(txn, creator, freezable, token, false)
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return TransferToken(txn, alice, token, bob)
	})
	require.Nil(err)

	err = bs.View(func(txn *store.Txn) error {
		owner, err := object.Owner(txn, token)
		if err != nil {
			return err
		}
		require.Equal(bob, owner)
		return nil
	})
	require.Nil(err)

	plain := initCollection(t, bs, creator, &InitParams{Name: "Plain"})
	err = bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: plain, Recipient: alice, Name: "p1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return FreezeToken(txn, creator, plain, token, true)
	})
	require.ErrorIs(err, ErrNotFreezable)
}

// Token admin entry points must resolve authority from the collection the
// token was minted into, not from whichever collection the caller names.
func TestTokenCollectionAuthority(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creatorA := object.NewIdentity()
	creatorB := object.NewIdentity()
	alice := object.NewIdentity()

	flags := Flags{
		MutableTokenURI:          true,
		TokensBurnableByCreator:  true,
		TokensFreezableByCreator: true,
	}
	colA := initCollection(t, bs, creatorA, &InitParams{Name: "Held", Flags: flags})
	colB := initCollection(t, bs, creatorB, &InitParams{Name: "Foreign", Flags: flags})

	var token string
	err := bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creatorA, &MintParams{Collection: colA, Recipient: alice, Name: "h1", Amount: 1})
		return err
	})
	require.Nil(err)

	// creatorB owns colB but holds no authority over colA's token
	err = bs.Update(func(txn *store.Txn) error {
		return Burn(txn, creatorB, colB, token)
	})
	require.ErrorIs(err, ErrNotCollectionOwner)

	err = bs.Update(func(txn *store.Txn) error {
		return FreezeToken(txn, creatorB, colB, token, true)
	})
	require.ErrorIs(err, ErrNotCollectionOwner)

	err = bs.Update(func(txn *store.Txn) error {
		return SetTokenURI(txn, creatorB, colB, token, "https://example.test/hijacked")
	})
	require.ErrorIs(err, ErrNotCollectionOwner)

	err = bs.View(func(txn *store.Txn) error {
		owner, err := object.Owner(txn, token)
		if err != nil {
			return err
		}
		require.Equal(alice, owner)
		art, err := collection.ReadArtifact(txn, token)
		if err != nil {
			return err
		}
		require.Equal(colA, art.Collection)
		return nil
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return Burn(txn, creatorA, colA, token)
	})
	require.Nil(err)
}

func TestSoulboundGateFollowsTokenCollection(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)
	creator := object.NewIdentity()
	alice := object.NewIdentity()
	bob := object.NewIdentity()

	bound := initCollection(t, bs, creator, &InitParams{
		Name:  "Bound",
		Flags: Flags{Soulbound: true},
	})
	// another unbound collection of the same creator buys no way around it
	initCollection(t, bs, creator, &InitParams{Name: "Unbound"})

	var token string
	err := bs.Update(func(txn *store.Txn) error {
		var err error
		token, err = Mint(txn, creator, &MintParams{Collection: bound, Recipient: alice, Name: "b1", Amount: 1})
		return err
	})
	require.Nil(err)

	err = bs.Update(func(txn *store.Txn) error {
		return TransferToken(txn, alice, token, bob)
	})
	require.ErrorIs(err, ErrSoulbound)

	err = bs.View(func(txn *store.Txn) error {
		owner, err := object.Owner(txn, token)
		if err != nil {
			return err
		}
		require.Equal(alice, owner)
		return nil
	})
	require.Nil(err)
}

func TestPickWeightedBounds(t *testing.T) {
	require := require.New(t)

	_, err := pickWeighted(nil, nil)
	require.ErrorIs(err, ErrArgumentMismatch)

	_, err = pickWeighted([]string{"a", "b"}, []uint64{1})
	require.ErrorIs(err, ErrArgumentMismatch)

	_, err = pickWeighted([]string{"a"}, []uint64{0})
	require.ErrorIs(err, ErrArgumentMismatch)

	_, err = pickWeighted([]string{"a", "b"}, []uint64{math.MaxUint64, 1})
	require.ErrorIs(err, ErrArgumentMismatch)

	_, err = pickWeighted([]string{"a", "b"}, []uint64{math.MaxInt64, 1})
	require.ErrorIs(err, ErrArgumentMismatch)

	uri, err := pickWeighted([]string{"a"}, []uint64{math.MaxInt64})
	require.Nil(err)
	require.Equal("a", uri)

	uri, err = pickWeighted([]string{"a", "b"}, []uint64{0, 7})
	require.Nil(err)
	require.Equal("b", uri)
}

func initCollection(t *testing.T, bs *store.BadgerStore, creator string, p *InitParams) string {
	var col string
	err := bs.Update(func(txn *store.Txn) error {
		tm, err := Init(txn, creator, p)
		if err != nil {
			return err
		}
		col = tm.CollectionIdentity
		return SetMintingStatus(txn, creator, col, true)
	})
	require.Nil(t, err)
	return col
}

func snapshotStore(t *testing.T, bs *store.BadgerStore) map[string]string {
	snap := make(map[string]string)
	err := bs.Badger().View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			snap[string(it.Item().KeyCopy(nil))] = string(val)
		}
		return nil
	})
	require.Nil(t, err)
	return snap
}

func testStore(t *testing.T) *store.BadgerStore {
	bs, err := store.OpenBadger(context.Background(), t.TempDir())
	require.Nil(t, err)
	t.Cleanup(func() {
		bs.Close()
	})
	return bs
}
