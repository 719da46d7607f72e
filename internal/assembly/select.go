package assembly

import "smartassembly/internal/tables"

// VariantRecords supplies variant-specific records on demand so that only
// the records of the selected variant are read.
type VariantRecords interface {
	Inventory() (tables.Inventory, bool)
	GateLink() (tables.GateLink, bool)
}

// SelectVariant extends base into the variant named by the discriminant
// record. An absent or unknown discriminant selects nothing.
func SelectVariant(base SmartAssembly, discriminant *tables.SmartAssembly, recs VariantRecords) Variant {
	if discriminant == nil {
		return nil
	}

	switch discriminant.SmartAssemblyType {
	case DiscriminantStorageUnit:
		return newStorageUnit(base, recs)
	case DiscriminantTurret:
		return newTurret(base)
	case DiscriminantGate:
		return newGate(base, recs)
	default:
		return nil
	}
}

func newStorageUnit(base SmartAssembly, recs VariantRecords) *StorageUnit {
	inv, _ := recs.Inventory()
	return &StorageUnit{
		SmartAssembly: base,
		AssemblyType:  TypeStorageUnit,
		Inventory: Inventory{
			StorageCapacity: bigOr(inv.Capacity, FieldStorageCapacity),
			UsedCapacity:    bigOr(inv.UsedCapacity, FieldUsedCapacity),
			// Item listings are not resolved yet.
			StorageItems:           []InventoryItem{},
			EphemeralInventoryList: []EphemeralInventory{},
		},
	}
}

func newTurret(base SmartAssembly) *Turret {
	return &Turret{
		SmartAssembly: base,
		AssemblyType:  TypeTurret,
	}
}

func newGate(base SmartAssembly, recs VariantRecords) *Gate {
	link, ok := recs.GateLink()
	destination := fallback[string](FieldDestinationGate)
	if ok {
		destination = decimalOr(link.DestinationGateID, FieldDestinationGate)
	}
	return &Gate{
		SmartAssembly: base,
		AssemblyType:  TypeGate,
		GateLink: GateLink{
			// Gates in range are not resolved yet.
			GatesInRange:    []string{},
			IsLinked:        flagOr(link.IsLinked, FieldGateIsLinked),
			DestinationGate: destination,
		},
	}
}
