package minter

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/minterhq/minterd/collection"
	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
)

const (
	TypeTokenMinter = "minter:token_minter"
	TypeMintConfig  = "minter:mint_config"

	TypeCollectionRefsV1 = "minter:collection_refs:v1"
	TypeCollectionRefsV2 = "minter:collection_refs:v2"
	TypeTokenRefsV1      = "minter:token_refs:v1"
	TypeTokenRefsV2      = "minter:token_refs:v2"

	SchemaVersionV1 = 1
	SchemaVersionV2 = 2
)

// TokenMinter is attached once to the collection identity and drives the
// mint state machine: Active and Paused, creator-toggled, nothing else.
type TokenMinter struct {
	Version            uint64
	CollectionIdentity string
	Creator            string
	Paused             bool
	Soulbound          bool
}

// CollectionRefs holds the collection's capability tokens. Mutators exist
// only for the fields the flags declared mutable at init.
type CollectionRefs struct {
	Extend            *object.ExtendCapability
	MutateDescription *object.MutateCapability
	MutateURI         *object.MutateCapability
}

// TokenRefs holds a minted token's capability tokens. A nil slot means the
// privilege was never granted; without migration it can never appear later.
type TokenRefs struct {
	Burn              *object.BurnCapability
	Transfer          *object.TransferCapability
	MutateDescription *object.MutateCapability
	MutateName        *object.MutateCapability
	MutateURI         *object.MutateCapability
	MutateProperties  *object.MutateCapability
	Frozen            bool
}

// MintConfig drives recipient mints: numbered names from a prefix and a
// weighted random choice among the configured URIs.
type MintConfig struct {
	NamePrefix       string
	TokenDescription string
	TokenURIs        []string
	URIWeights       []uint64
}

// Flags are the nine creation-time policy booleans. All of them are
// recorded as explicitly set.
type Flags struct {
	MutableDescription       bool
	MutableURI               bool
	MutableTokenDescription  bool
	MutableTokenName         bool
	MutableTokenProperties   bool
	MutableTokenURI          bool
	TokensBurnableByCreator  bool
	TokensFreezableByCreator bool
	Soulbound                bool
}

func (f Flags) properties() *Properties {
	return &Properties{
		MutableDescription:       Bool(f.MutableDescription),
		MutableURI:               Bool(f.MutableURI),
		MutableTokenDescription:  Bool(f.MutableTokenDescription),
		MutableTokenName:         Bool(f.MutableTokenName),
		MutableTokenProperties:   Bool(f.MutableTokenProperties),
		MutableTokenURI:          Bool(f.MutableTokenURI),
		TokensBurnableByCreator:  Bool(f.TokensBurnableByCreator),
		TokensFreezableByCreator: Bool(f.TokensFreezableByCreator),
		Soulbound:                Bool(f.Soulbound),
	}
}

type InitParams struct {
	Name        string
	Description string
	URI         string
	MaxSupply   uint64
	Royalty     *collection.Royalty
	Flags       Flags
	MintConfig  *MintConfig
	Guards      Guards
}

// Init creates the extensible object for the collection, attaches the base
// collection record, the property flags and any requested guards, and
// returns the minter paused. The creator starts minting explicitly with
// SetMintingStatus.
func Init(txn *store.Txn, creator string, p *InitParams) (*TokenMinter, error) {
	col, cap, err := object.Create(txn, creator)
	if err != nil {
		return nil, err
	}
	authority := object.DeriveAuthority(cap)

	if p.MaxSupply > 0 {
		err = collection.CreateFixedCollection(txn, authority, p.Description, p.MaxSupply, p.Name, p.Royalty, p.URI)
	} else {
		err = collection.CreateUnlimitedCollection(txn, authority, p.Description, p.Name, p.Royalty, p.URI)
	}
	if err != nil {
		return nil, err
	}

	tm := &TokenMinter{
		Version:            SchemaVersionV1,
		CollectionIdentity: col,
		Creator:            creator,
		Paused:             true,
		Soulbound:          p.Flags.Soulbound,
	}
	err = txn.AttachComponent(col, TypeTokenMinter, tm)
	if err != nil {
		return nil, err
	}

	refs := &CollectionRefs{Extend: cap}
	if p.Flags.MutableDescription {
		refs.MutateDescription = object.NewMutateCapability(cap, object.FieldDescription)
	}
	if p.Flags.MutableURI {
		refs.MutateURI = object.NewMutateCapability(cap, object.FieldURI)
	}
	err = txn.AttachComponent(col, TypeCollectionRefsV1, refs)
	if err != nil {
		return nil, err
	}

	err = CreateProperties(txn, authority, p.Flags.properties())
	if err != nil {
		return nil, err
	}

	if p.MintConfig != nil {
		if len(p.MintConfig.TokenURIs) != len(p.MintConfig.URIWeights) {
			return nil, ErrArgumentMismatch
		}
		err = txn.AttachComponent(col, TypeMintConfig, p.MintConfig)
		if err != nil {
			return nil, err
		}
	}

	if wc := p.Guards.Whitelist; wc != nil {
		err = InitWhitelist(txn, authority)
		if err != nil {
			return nil, err
		}
		err = AddToWhitelist(txn, creator, col, wc.Addresses, wc.MaxMints)
		if err != nil {
			return nil, err
		}
	}
	if pc := p.Guards.Payment; pc != nil {
		err = InitCoinPayment(txn, authority, pc.Amount, pc.Destination)
		if err != nil {
			return nil, err
		}
	}

	err = txn.WriteEvent(&store.Event{
		Module:   "minter",
		Action:   "init",
		Identity: col,
	})
	if err != nil {
		return nil, err
	}
	return tm, nil
}

func ReadTokenMinter(txn *store.Txn, col string) (*TokenMinter, error) {
	var tm TokenMinter
	err := txn.ReadComponent(col, TypeTokenMinter, &tm)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

// SetMintingStatus toggles between Active and Paused. Creator only.
func SetMintingStatus(txn *store.Txn, caller, col string, ready bool) error {
	err := object.RequireOwner(txn, col, caller)
	if err != nil {
		return err
	}
	tm, err := ReadTokenMinter(txn, col)
	if err != nil {
		return err
	}
	tm.Paused = !ready
	return txn.WriteComponent(col, TypeTokenMinter, tm)
}

type MintParams struct {
	Collection  string
	Recipient   string
	Name        string
	Description string
	URI         string
	Amount      uint64
	Properties  map[string]string
}

// Mint runs every enabled guard in deployment order, then creates the
// artifact object and derives its capability tokens from the property
// flags. The caller wraps this in a single store transaction, so a guard
// failure after another guard's debit rolls both back.
func Mint(txn *store.Txn, caller string, p *MintParams) (string, error) {
	tm, err := ReadTokenMinter(txn, p.Collection)
	if err != nil {
		return "", err
	}
	if tm.Paused {
		return "", ErrPaused
	}

	for _, g := range mintGuards {
		enabled, err := g.IsEnabled(txn, p.Collection)
		if err != nil {
			return "", err
		}
		if !enabled {
			continue
		}
		charge, err := g.Charge(txn, p.Collection, p.Amount)
		if err != nil {
			return "", err
		}
		err = g.Execute(txn, p.Collection, caller, charge)
		if err != nil {
			return "", err
		}
	}

	refs, _, err := readCollectionRefs(txn, p.Collection)
	if err != nil {
		return "", err
	}
	authority := object.DeriveAuthority(refs.Extend)

	props, err := ReadProperties(txn, p.Collection)
	if err != nil {
		return "", err
	}

	recipient := p.Recipient
	if recipient == "" {
		recipient = caller
	}
	col, err := collection.Read(txn, p.Collection)
	if err != nil {
		return "", err
	}
	token, cap, err := collection.CreateArtifact(txn, authority, recipient, p.Description, p.Name, col.Royalty, p.URI)
	if err != nil {
		return "", err
	}
	if len(p.Properties) > 0 {
		err = collection.AttachPropertyMap(txn, token, p.Properties)
		if err != nil {
			return "", err
		}
	}

	tokenRefs := &TokenRefs{}
	if flagSet(props.TokensBurnableByCreator) {
		tokenRefs.Burn = object.NewBurnCapability(cap)
	}
	if flagSet(props.TokensFreezableByCreator) {
		tokenRefs.Transfer = object.NewTransferCapability(cap)
	}
	if flagSet(props.MutableTokenDescription) {
		tokenRefs.MutateDescription = object.NewMutateCapability(cap, object.FieldDescription)
	}
	if flagSet(props.MutableTokenName) {
		tokenRefs.MutateName = object.NewMutateCapability(cap, object.FieldName)
	}
	if flagSet(props.MutableTokenURI) {
		tokenRefs.MutateURI = object.NewMutateCapability(cap, object.FieldURI)
	}
	if flagSet(props.MutableTokenProperties) {
		tokenRefs.MutateProperties = object.NewMutateCapability(cap, object.FieldProperties)
	}
	err = txn.AttachComponent(token, tokenRefsTag(tm.Version), tokenRefs)
	if err != nil {
		return "", err
	}

	err = txn.WriteEvent(&store.Event{
		Module:   "minter",
		Action:   "mint",
		Identity: token,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// MintToRecipient mints one token named from the configured prefix and the
// next artifact index, with a weighted random URI.
func MintToRecipient(txn *store.Txn, caller, col, recipient string) (string, error) {
	var cfg MintConfig
	err := txn.ReadComponent(col, TypeMintConfig, &cfg)
	if err != nil {
		return "", err
	}
	base, err := collection.Read(txn, col)
	if err != nil {
		return "", err
	}
	uri, err := pickWeighted(cfg.TokenURIs, cfg.URIWeights)
	if err != nil {
		return "", err
	}
	return Mint(txn, caller, &MintParams{
		Collection:  col,
		Recipient:   recipient,
		Name:        fmt.Sprintf("%s%d", cfg.NamePrefix, base.Supply+1),
		Description: cfg.TokenDescription,
		URI:         uri,
		Amount:      1,
	})
}

func pickWeighted(uris []string, weights []uint64) (string, error) {
	if len(uris) == 0 || len(uris) != len(weights) {
		return "", ErrArgumentMismatch
	}
	// the total must stay addressable by Int63n
	var total uint64
	for _, w := range weights {
		if w > math.MaxInt64-total {
			return "", ErrArgumentMismatch
		}
		total += w
	}
	if total == 0 {
		return "", ErrArgumentMismatch
	}
	n := uint64(rand.Int63n(int64(total)))
	for i, w := range weights {
		if n < w {
			return uris[i], nil
		}
		n -= w
	}
	panic(total)
}

// Burn consumes the token's burn capability and detaches every component
// from the token identity. Creator only; the capability must have been
// granted at mint.
func Burn(txn *store.Txn, caller, col, token string) error {
	err := requireCollectionOwner(txn, col, caller)
	if err != nil {
		return err
	}
	_, err = tokenArtifact(txn, col, token)
	if err != nil {
		return err
	}
	refs, tag, err := readTokenRefs(txn, token)
	if err != nil {
		return err
	}
	if refs.Burn == nil {
		return ErrNotBurnable
	}
	err = refs.Burn.Use()
	if err != nil {
		return err
	}
	err = txn.DetachComponent(token, tag, &TokenRefs{})
	if err != nil {
		return err
	}
	err = collection.RemoveArtifact(txn, token)
	if err != nil {
		return err
	}
	err = object.Destroy(txn, token)
	if err != nil {
		return err
	}
	return txn.WriteEvent(&store.Event{
		Module:   "minter",
		Action:   "burn",
		Identity: token,
	})
}

// TransferToken moves ownership of a minted token. Soulbound collections
// never transfer; frozen tokens wait for the creator to unfreeze. The
// gates are resolved from the token's recorded collection.
func TransferToken(txn *store.Txn, caller, token, newOwner string) error {
	art, err := collection.ReadArtifact(txn, token)
	if err != nil {
		return err
	}
	tm, err := ReadTokenMinter(txn, art.Collection)
	if err != nil {
		return err
	}
	if tm.Soulbound {
		return ErrSoulbound
	}
	refs, _, err := readTokenRefs(txn, token)
	if err != nil {
		return err
	}
	if refs.Frozen {
		return ErrFrozen
	}
	return object.Transfer(txn, token, caller, newOwner)
}

// FreezeToken and UnfreezeToken require the transfer capability granted by
// TokensFreezableByCreator.
func FreezeToken(txn *store.Txn, caller, col, token string, frozen bool) error {
	err := requireCollectionOwner(txn, col, caller)
	if err != nil {
		return err
	}
	_, err = tokenArtifact(txn, col, token)
	if err != nil {
		return err
	}
	refs, tag, err := readTokenRefs(txn, token)
	if err != nil {
		return err
	}
	if refs.Transfer == nil {
		return ErrNotFreezable
	}
	refs.Frozen = frozen
	return txn.WriteComponent(token, tag, refs)
}

// SetTokenURI requires the mutate capability granted by MutableTokenURI.
func SetTokenURI(txn *store.Txn, caller, col, token, uri string) error {
	return mutateToken(txn, caller, col, token, func(refs *TokenRefs, art *collection.Artifact) error {
		if refs.MutateURI == nil {
			return ErrFieldImmutable
		}
		art.URI = uri
		return nil
	})
}

func SetTokenDescription(txn *store.Txn, caller, col, token, description string) error {
	return mutateToken(txn, caller, col, token, func(refs *TokenRefs, art *collection.Artifact) error {
		if refs.MutateDescription == nil {
			return ErrFieldImmutable
		}
		art.Description = description
		return nil
	})
}

func SetTokenName(txn *store.Txn, caller, col, token, name string) error {
	return mutateToken(txn, caller, col, token, func(refs *TokenRefs, art *collection.Artifact) error {
		if refs.MutateName == nil {
			return ErrFieldImmutable
		}
		art.Name = name
		return nil
	})
}

func mutateToken(txn *store.Txn, caller, col, token string, mutate func(*TokenRefs, *collection.Artifact) error) error {
	err := requireCollectionOwner(txn, col, caller)
	if err != nil {
		return err
	}
	art, err := tokenArtifact(txn, col, token)
	if err != nil {
		return err
	}
	refs, _, err := readTokenRefs(txn, token)
	if err != nil {
		return err
	}
	err = mutate(refs, art)
	if err != nil {
		return err
	}
	return collection.WriteArtifact(txn, art)
}

// tokenArtifact loads the token's artifact record and verifies it was
// minted into col. Owning some other collection grants no authority here.
func tokenArtifact(txn *store.Txn, col, token string) (*collection.Artifact, error) {
	art, err := collection.ReadArtifact(txn, token)
	if err != nil {
		return nil, err
	}
	if art.Collection != col {
		return nil, ErrNotCollectionOwner
	}
	return art, nil
}

func readCollectionRefs(txn *store.Txn, col string) (*CollectionRefs, string, error) {
	var refs CollectionRefs
	err := txn.ReadComponent(col, TypeCollectionRefsV2, &refs)
	if err == nil {
		return &refs, TypeCollectionRefsV2, nil
	}
	if err != store.ErrNotFound {
		return nil, "", err
	}
	err = txn.ReadComponent(col, TypeCollectionRefsV1, &refs)
	if err != nil {
		return nil, "", err
	}
	return &refs, TypeCollectionRefsV1, nil
}

func readTokenRefs(txn *store.Txn, token string) (*TokenRefs, string, error) {
	var refs TokenRefs
	err := txn.ReadComponent(token, TypeTokenRefsV2, &refs)
	if err == nil {
		return &refs, TypeTokenRefsV2, nil
	}
	if err != store.ErrNotFound {
		return nil, "", err
	}
	err = txn.ReadComponent(token, TypeTokenRefsV1, &refs)
	if err != nil {
		return nil, "", err
	}
	return &refs, TypeTokenRefsV1, nil
}

func tokenRefsTag(version uint64) string {
	switch version {
	case SchemaVersionV1:
		return TypeTokenRefsV1
	case SchemaVersionV2:
		return TypeTokenRefsV2
	}
	panic(version)
}
