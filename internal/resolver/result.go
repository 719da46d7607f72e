package resolver

import (
	"fmt"
	"math/big"

	"smartassembly/internal/assembly"
	"smartassembly/internal/store"
	"smartassembly/internal/tables"
)

// OwnerStatus tracks the remote owner lookup for the current entity.
type OwnerStatus uint8

const (
	OwnerPending OwnerStatus = iota
	OwnerResolved
	// OwnerUnavailable is terminal for an entity id; the lookup is not retried.
	OwnerUnavailable
)

func (s OwnerStatus) String() string {
	switch s {
	case OwnerPending:
		return "pending"
	case OwnerResolved:
		return "resolved"
	case OwnerUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("OwnerStatus(%d)", uint8(s))
	}
}

func (s OwnerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type owner struct {
	status  OwnerStatus
	address string // EIP-55, set only when resolved
}

type ownerResult struct {
	generation uint64
	id         *big.Int
	address    string
	err        error
}

// Result is one resolution pass. Base is nil until the owner, the owner's
// character metadata, and the deployable state are all known; Variant is nil
// unless Base is set and the assembly type is known.
type Result struct {
	SmartObjectID string                  `json:"smartObjectId"`
	OwnerStatus   OwnerStatus             `json:"ownerStatus"`
	Base          *assembly.SmartAssembly `json:"base,omitempty"`
	Variant       assembly.Variant        `json:"variant,omitempty"`
}

// trackingReader records every ref read during a pass.
type trackingReader struct {
	store.Reader
	refs []store.Ref
	seen map[store.Ref]struct{}
}

func newTrackingReader(rd store.Reader) *trackingReader {
	return &trackingReader{Reader: rd, seen: make(map[store.Ref]struct{})}
}

func (t *trackingReader) Get(ref store.Ref) (any, bool) {
	if _, ok := t.seen[ref]; !ok {
		t.seen[ref] = struct{}{}
		t.refs = append(t.refs, ref)
	}
	return t.Reader.Get(ref)
}

type variantRecords struct {
	rd  store.Reader
	key string
}

func (v variantRecords) Inventory() (tables.Inventory, bool) {
	return tables.InventoryTable.Get(v.rd, v.key)
}

func (v variantRecords) GateLink() (tables.GateLink, bool) {
	return tables.GateLinkTable.Get(v.rd, v.key)
}

// resolve reads every record for entity and composes the result. The owner's
// character lookup is keyed by a placeholder until the owner resolves, and
// the character metadata by id "0" until the character is known; neither
// placeholder ever matches a record.
func resolve(rd store.Reader, chainID uint64, entity *big.Int, o owner) Result {
	key := tables.IDKey(entity)
	res := Result{SmartObjectID: key, OwnerStatus: o.status}

	recs := assembly.Records{ChainID: chainID, Owner: o.address}
	if rec, ok := tables.DeployableStateTable.Get(rd, key); ok {
		recs.DeployableState = &rec
	}
	if rec, ok := tables.LocationTable.Get(rd, key); ok {
		recs.Location = &rec
	}
	if rec, ok := tables.EntityRecordOffchainTable.Get(rd, key); ok {
		recs.Offchain = &rec
	}
	if rec, ok := tables.EntityRecordTable.Get(rd, key); ok {
		recs.Entity = &rec
	}
	if rec, ok := tables.FuelBalanceTable.Get(rd, key); ok {
		recs.Fuel = &rec
	}
	var discriminant *tables.SmartAssembly
	if rec, ok := tables.SmartAssemblyTable.Get(rd, key); ok {
		discriminant = &rec
	}

	characterKey := tables.PlaceholderAddressKey
	if o.status == OwnerResolved {
		characterKey = tables.AddressKey(o.address)
	}
	characterID := tables.IDKey(nil)
	if rec, ok := tables.CharactersByAddressTable.Get(rd, characterKey); ok {
		characterID = tables.IDKey(rec.CharacterID)
	}
	if rec, ok := tables.EntityRecordOffchainTable.Get(rd, characterID); ok {
		recs.OwnerCharacter = &rec
	}

	base, ok := assembly.ComposeBase(recs)
	if !ok {
		return res
	}
	res.Base = &base
	res.Variant = assembly.SelectVariant(base, discriminant, variantRecords{rd: rd, key: key})
	return res
}
