package object

// Capability tokens are single-holder privilege handles for one identity,
// produced at object creation or derived from the extend capability. Their
// fields are exported for msgpack encoding, so the type system alone does
// not stop a hand-built value; the trust boundary is the process owning
// the store, which only reads capabilities out of components the minting
// entry points wrote.

const (
	FieldDescription = "description"
	FieldName        = "name"
	FieldURI         = "uri"
	FieldProperties  = "properties"
)

// ExtendCapability lets its holder act with the identity's authority.
// Exactly one exists per object, returned once by Create.
type ExtendCapability struct {
	Identity string
}

// MutateCapability authorizes mutation of a single named field.
type MutateCapability struct {
	Identity string
	Field    string
}

// BurnCapability authorizes exactly one burn. Consumed marks the slot
// cleared so the same capability is never exercised twice.
type BurnCapability struct {
	Identity string
	Consumed bool
}

type TransferCapability struct {
	Identity string
}

// AuthorityProof is evidence of authority over an identity. It has no
// exported fields and no serialized form, so it cannot be forged or
// smuggled through the store; it must be derived from a capability.
type AuthorityProof struct {
	identity string
}

func (p AuthorityProof) Identity() string {
	return p.identity
}

func DeriveAuthority(cap *ExtendCapability) AuthorityProof {
	if cap == nil || cap.Identity == "" {
		panic("empty extend capability")
	}
	return AuthorityProof{identity: cap.Identity}
}

func NewMutateCapability(cap *ExtendCapability, field string) *MutateCapability {
	return &MutateCapability{Identity: cap.Identity, Field: field}
}

func NewBurnCapability(cap *ExtendCapability) *BurnCapability {
	return &BurnCapability{Identity: cap.Identity}
}

func NewTransferCapability(cap *ExtendCapability) *TransferCapability {
	return &TransferCapability{Identity: cap.Identity}
}

func (c *BurnCapability) Use() error {
	if c.Consumed {
		return ErrCapabilityConsumed
	}
	c.Consumed = true
	return nil
}
