package assembly

import "smartassembly/internal/tables"

// Records is the input to ComposeBase. Every record pointer is nil when the
// record is absent; Owner is empty until the owner lookup has resolved.
type Records struct {
	ChainID         uint64
	Owner           string
	DeployableState *tables.DeployableState
	Location        *tables.Location
	Offchain        *tables.EntityRecordOffchain
	Entity          *tables.EntityRecord
	Fuel            *tables.FuelBalance
	OwnerCharacter  *tables.EntityRecordOffchain
}

// Complete reports whether enough is known to compose a SmartAssembly: a
// resolved owner, the owner's character metadata, and a deployable state
// with a non-zero object id.
func (r Records) Complete() bool {
	return r.Owner != "" &&
		r.OwnerCharacter != nil &&
		r.DeployableState != nil &&
		r.DeployableState.SmartObjectID != nil &&
		r.DeployableState.SmartObjectID.Sign() != 0
}

// ComposeBase merges the records into a SmartAssembly, or returns false if
// Records.Complete does not hold. Partial results are never returned.
func ComposeBase(r Records) (SmartAssembly, bool) {
	if !r.Complete() {
		return SmartAssembly{}, false
	}

	state := r.DeployableState
	location := r.Location
	if location == nil {
		location = &tables.Location{}
	}
	offchain := r.Offchain
	if offchain == nil {
		offchain = &tables.EntityRecordOffchain{}
	}
	entity := r.Entity
	if entity == nil {
		entity = &tables.EntityRecord{}
	}
	fuel := r.Fuel
	if fuel == nil {
		fuel = &tables.FuelBalance{}
	}

	current := stateOr(state.CurrentState, FieldState)
	solarSystem := decimalOr(location.SolarSystemID, FieldSolarSystemRef)

	return SmartAssembly{
		ID:             state.SmartObjectID.String(),
		ItemID:         uintOr(entity.ItemID, FieldItemID),
		OwnerID:        r.Owner,
		OwnerName:      textOr(r.OwnerCharacter.Name, FieldOwnerName),
		ChainID:        r.ChainID,
		Name:           textOr(offchain.Name, FieldName),
		Description:    textOr(offchain.Description, FieldDescription),
		DappURL:        textOr(offchain.DappURL, FieldDappURL),
		Image:          fallback[string](FieldImage),
		IsValid:        flagOr(state.IsValid, FieldIsValid),
		IsOnline:       current == StateOnline,
		StateID:        uint8(current),
		State:          current,
		AnchoredAtTime: decimalOr(state.AnchoredAt, FieldAnchoredAtTime),
		SolarSystemID:  uintOr(location.SolarSystemID, FieldSolarSystemID),
		SolarSystem: SolarSystem{
			SolarSystemID:     solarSystem,
			SolarSystemName:   solarSystem,
			SolarSystemNameID: solarSystem,
		},
		TypeID: uintOr(entity.TypeID, FieldTypeID),
		// Region lookup is not implemented yet.
		Region:    fallback[string](FieldRegion),
		LocationX: decimalOr(location.X, FieldLocation),
		LocationY: decimalOr(location.Y, FieldLocation),
		LocationZ: decimalOr(location.Z, FieldLocation),
		Fuel: Fuel{
			FuelAmount:            bigOr(fuel.FuelAmount, FieldFuelAmount),
			FuelConsumptionPerMin: bigOr(fuel.FuelConsumptionPerMinute, FieldFuelConsumptionPerMin),
			FuelMaxCapacity:       bigOr(fuel.FuelMaxCapacity, FieldFuelMaxCapacity),
			FuelUnitVolume:        bigOr(fuel.FuelUnitVolume, FieldFuelUnitVolume),
		},
	}, true
}
