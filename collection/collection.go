package collection

import (
	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
	"github.com/shopspring/decimal"
)

const (
	TypeCollection  = "collection:core"
	TypeArtifact    = "collection:artifact"
	TypePropertyMap = "collection:property_map"
)

var ErrSupplyExceeded = store.NewError("collection", 1, "collection max supply exceeded")

type Royalty struct {
	Numerator   uint64
	Denominator uint64
	Payee       string
}

func (r *Royalty) Rate() decimal.Decimal {
	if r == nil || r.Denominator == 0 {
		return decimal.Zero
	}
	n := decimal.New(int64(r.Numerator), 0)
	d := decimal.New(int64(r.Denominator), 0)
	return n.Div(d)
}

// Collection is the base record attached to a collection identity.
// MaxSupply of zero means unlimited. Supply counts artifacts ever created
// and doubles as the next artifact index.
type Collection struct {
	Identity    string
	Name        string
	Description string
	URI         string
	MaxSupply   uint64
	Supply      uint64
	Royalty     *Royalty
}

// Artifact is the base record attached to a minted token identity.
type Artifact struct {
	Identity    string
	Collection  string
	Name        string
	Description string
	URI         string
	Index       uint64
	Royalty     *Royalty
}

// CreateFixedCollection attaches a supply-capped collection record under
// the authority's identity.
func CreateFixedCollection(txn *store.Txn, authority object.AuthorityProof, description string, maxSupply uint64, name string, royalty *Royalty, uri string) error {
	return create(txn, authority, description, maxSupply, name, royalty, uri)
}

func CreateUnlimitedCollection(txn *store.Txn, authority object.AuthorityProof, description, name string, royalty *Royalty, uri string) error {
	return create(txn, authority, description, 0, name, royalty, uri)
}

func create(txn *store.Txn, authority object.AuthorityProof, description string, maxSupply uint64, name string, royalty *Royalty, uri string) error {
	col := &Collection{
		Identity:    authority.Identity(),
		Name:        name,
		Description: description,
		URI:         uri,
		MaxSupply:   maxSupply,
		Royalty:     royalty,
	}
	return txn.AttachComponent(col.Identity, TypeCollection, col)
}

func Read(txn *store.Txn, identity string) (*Collection, error) {
	var col Collection
	err := txn.ReadComponent(identity, TypeCollection, &col)
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// CreateArtifact allocates a fresh extensible object owned by owner,
// attaches the base artifact record and counts it against the collection
// supply. The returned extend capability is the only way to derive further
// capabilities for the artifact.
func CreateArtifact(txn *store.Txn, authority object.AuthorityProof, owner, description, name string, royalty *Royalty, uri string) (string, *object.ExtendCapability, error) {
	col, err := Read(txn, authority.Identity())
	if err != nil {
		return "", nil, err
	}
	col.Supply += 1
	if col.MaxSupply > 0 && col.Supply > col.MaxSupply {
		return "", nil, ErrSupplyExceeded
	}
	err = txn.WriteComponent(col.Identity, TypeCollection, col)
	if err != nil {
		return "", nil, err
	}

	identity, cap, err := object.Create(txn, owner)
	if err != nil {
		return "", nil, err
	}
	art := &Artifact{
		Identity:    identity,
		Collection:  col.Identity,
		Name:        name,
		Description: description,
		URI:         uri,
		Index:       col.Supply,
		Royalty:     royalty,
	}
	err = txn.AttachComponent(identity, TypeArtifact, art)
	if err != nil {
		return "", nil, err
	}
	return identity, cap, nil
}

func ReadArtifact(txn *store.Txn, identity string) (*Artifact, error) {
	var art Artifact
	err := txn.ReadComponent(identity, TypeArtifact, &art)
	if err != nil {
		return nil, err
	}
	return &art, nil
}

func WriteArtifact(txn *store.Txn, art *Artifact) error {
	return txn.WriteComponent(art.Identity, TypeArtifact, art)
}

// RemoveArtifact detaches the base record and the property map, if any.
// The collection supply is not decremented; Index stays monotonic.
func RemoveArtifact(txn *store.Txn, identity string) error {
	var art Artifact
	err := txn.DetachComponent(identity, TypeArtifact, &art)
	if err != nil {
		return err
	}
	var props map[string]string
	err = txn.DetachComponent(identity, TypePropertyMap, &props)
	if err == store.ErrNotFound {
		return nil
	}
	return err
}

func AttachPropertyMap(txn *store.Txn, identity string, props map[string]string) error {
	return txn.AttachComponent(identity, TypePropertyMap, props)
}

func ReadPropertyMap(txn *store.Txn, identity string) (map[string]string, error) {
	var props map[string]string
	err := txn.ReadComponent(identity, TypePropertyMap, &props)
	if err != nil {
		return nil, err
	}
	return props, nil
}
