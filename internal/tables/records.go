package tables

import "math/big"

type DeployableState struct {
	SmartObjectID      *big.Int
	CreatedAt          *big.Int
	PreviousState      uint64
	CurrentState       uint64
	IsValid            bool
	AnchoredAt         *big.Int
	UpdatedBlockNumber *big.Int
	UpdatedBlockTime   *big.Int
}

// SmartAssembly holds the assembly type discriminant.
type SmartAssembly struct {
	SmartObjectID     *big.Int
	SmartAssemblyType uint64
}

type Location struct {
	SmartObjectID *big.Int
	SolarSystemID *big.Int
	X             *big.Int
	Y             *big.Int
	Z             *big.Int
}

type EntityRecordOffchain struct {
	EntityID    *big.Int
	Name        string
	DappURL     string
	Description string
}

type EntityRecord struct {
	EntityID *big.Int
	ItemID   *big.Int
	TypeID   *big.Int
	Volume   *big.Int
}

type FuelBalance struct {
	SmartObjectID            *big.Int
	FuelUnitVolume           *big.Int
	FuelConsumptionPerMinute *big.Int
	FuelMaxCapacity          *big.Int
	FuelAmount               *big.Int
	LastUpdatedAt            *big.Int
}

type CharacterByAddress struct {
	CharacterAddress string
	CharacterID      *big.Int
}

type GateLink struct {
	SourceGateID      *big.Int
	DestinationGateID *big.Int
	IsLinked          bool
}

type Inventory struct {
	SmartObjectID *big.Int
	Capacity      *big.Int
	UsedCapacity  *big.Int
}

var DeployableStateTable = &Table[DeployableState]{
	name:    "DeployableState",
	sqlName: "deployable_state",
	columns: []Column{
		{"smart_object_id", KindUint256},
		{"created_at", KindUint256},
		{"previous_state", KindUint},
		{"current_state", KindUint},
		{"is_valid", KindBool},
		{"anchored_at", KindUint256},
		{"updated_block_number", KindUint256},
		{"updated_block_time", KindUint256},
	},
	decode: func(r *rowReader) (string, DeployableState) {
		rec := DeployableState{
			SmartObjectID:      r.uint256(),
			CreatedAt:          r.uint256(),
			PreviousState:      r.number(),
			CurrentState:       r.number(),
			IsValid:            r.flag(),
			AnchoredAt:         r.uint256(),
			UpdatedBlockNumber: r.uint256(),
			UpdatedBlockTime:   r.uint256(),
		}
		return IDKey(rec.SmartObjectID), rec
	},
}

var SmartAssemblyTable = &Table[SmartAssembly]{
	name:    "SmartAssemblyTable",
	sqlName: "smart_assembly",
	columns: []Column{
		{"smart_object_id", KindUint256},
		{"smart_assembly_type", KindUint},
	},
	decode: func(r *rowReader) (string, SmartAssembly) {
		rec := SmartAssembly{
			SmartObjectID:     r.uint256(),
			SmartAssemblyType: r.number(),
		}
		return IDKey(rec.SmartObjectID), rec
	},
}

var LocationTable = &Table[Location]{
	name:    "LocationTable",
	sqlName: "location",
	columns: []Column{
		{"smart_object_id", KindUint256},
		{"solar_system_id", KindUint256},
		{"x", KindUint256},
		{"y", KindUint256},
		{"z", KindUint256},
	},
	decode: func(r *rowReader) (string, Location) {
		rec := Location{
			SmartObjectID: r.uint256(),
			SolarSystemID: r.uint256(),
			X:             r.uint256(),
			Y:             r.uint256(),
			Z:             r.uint256(),
		}
		return IDKey(rec.SmartObjectID), rec
	},
}

var EntityRecordOffchainTable = &Table[EntityRecordOffchain]{
	name:    "EntityRecordOffchainTable",
	sqlName: "entity_record_offchain",
	columns: []Column{
		{"entity_id", KindUint256},
		{"name", KindText},
		{"dapp_url", KindText},
		{"description", KindText},
	},
	decode: func(r *rowReader) (string, EntityRecordOffchain) {
		rec := EntityRecordOffchain{
			EntityID:    r.uint256(),
			Name:        r.text(),
			DappURL:     r.text(),
			Description: r.text(),
		}
		return IDKey(rec.EntityID), rec
	},
}

var EntityRecordTable = &Table[EntityRecord]{
	name:    "EntityRecordTable",
	sqlName: "entity_record",
	columns: []Column{
		{"entity_id", KindUint256},
		{"item_id", KindUint256},
		{"type_id", KindUint256},
		{"volume", KindUint256},
	},
	decode: func(r *rowReader) (string, EntityRecord) {
		rec := EntityRecord{
			EntityID: r.uint256(),
			ItemID:   r.uint256(),
			TypeID:   r.uint256(),
			Volume:   r.uint256(),
		}
		return IDKey(rec.EntityID), rec
	},
}

var FuelBalanceTable = &Table[FuelBalance]{
	name:    "DeployableFuelBalance",
	sqlName: "deployable_fuel_balance",
	columns: []Column{
		{"smart_object_id", KindUint256},
		{"fuel_unit_volume", KindUint256},
		{"fuel_consumption_per_minute", KindUint256},
		{"fuel_max_capacity", KindUint256},
		{"fuel_amount", KindUint256},
		{"last_updated_at", KindUint256},
	},
	decode: func(r *rowReader) (string, FuelBalance) {
		rec := FuelBalance{
			SmartObjectID:            r.uint256(),
			FuelUnitVolume:           r.uint256(),
			FuelConsumptionPerMinute: r.uint256(),
			FuelMaxCapacity:          r.uint256(),
			FuelAmount:               r.uint256(),
			LastUpdatedAt:            r.uint256(),
		}
		return IDKey(rec.SmartObjectID), rec
	},
}

var CharactersByAddressTable = &Table[CharacterByAddress]{
	name:    "CharactersByAddressTable",
	sqlName: "characters_by_address",
	columns: []Column{
		{"character_address", KindText},
		{"character_id", KindUint256},
	},
	decode: func(r *rowReader) (string, CharacterByAddress) {
		rec := CharacterByAddress{
			CharacterAddress: r.text(),
			CharacterID:      r.uint256(),
		}
		return AddressKey(rec.CharacterAddress), rec
	},
}

var GateLinkTable = &Table[GateLink]{
	name:    "SmartGateLinkTable",
	sqlName: "smart_gate_link",
	columns: []Column{
		{"source_gate_id", KindUint256},
		{"destination_gate_id", KindUint256},
		{"is_linked", KindBool},
	},
	decode: func(r *rowReader) (string, GateLink) {
		rec := GateLink{
			SourceGateID:      r.uint256(),
			DestinationGateID: r.uint256(),
			IsLinked:          r.flag(),
		}
		return IDKey(rec.SourceGateID), rec
	},
}

var InventoryTable = &Table[Inventory]{
	name:    "InventoryTable",
	sqlName: "inventory",
	columns: []Column{
		{"smart_object_id", KindUint256},
		{"capacity", KindUint256},
		{"used_capacity", KindUint256},
	},
	decode: func(r *rowReader) (string, Inventory) {
		rec := Inventory{
			SmartObjectID: r.uint256(),
			Capacity:      r.uint256(),
			UsedCapacity:  r.uint256(),
		}
		return IDKey(rec.SmartObjectID), rec
	},
}

// All lists every table the backends create and load, in DDL order.
var All = []Def{
	DeployableStateTable,
	SmartAssemblyTable,
	LocationTable,
	EntityRecordOffchainTable,
	EntityRecordTable,
	FuelBalanceTable,
	CharactersByAddressTable,
	GateLinkTable,
	InventoryTable,
}
