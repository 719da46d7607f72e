package assembly

import "math/big"

// Field names a composed field that has a fallback value.
type Field string

const (
	FieldItemID                Field = "itemId"
	FieldTypeID                Field = "typeId"
	FieldOwnerName             Field = "ownerName"
	FieldName                  Field = "name"
	FieldDescription           Field = "description"
	FieldDappURL               Field = "dappUrl"
	FieldImage                 Field = "image"
	FieldIsValid               Field = "isValid"
	FieldState                 Field = "state"
	FieldAnchoredAtTime        Field = "anchoredAtTime"
	FieldSolarSystemID         Field = "solarSystemId"
	FieldSolarSystemRef        Field = "solarSystem.*"
	FieldRegion                Field = "region"
	FieldLocation              Field = "location.*"
	FieldFuelAmount            Field = "fuel.fuelAmount"
	FieldFuelConsumptionPerMin Field = "fuel.fuelConsumptionPerMin"
	FieldFuelMaxCapacity       Field = "fuel.fuelMaxCapacity"
	FieldFuelUnitVolume        Field = "fuel.fuelUnitVolume"
	FieldStorageCapacity       Field = "inventory.storageCapacity"
	FieldUsedCapacity          Field = "inventory.usedCapacity"
	FieldGateIsLinked          Field = "gateLink.isLinked"
	FieldDestinationGate       Field = "gateLink.destinationGate"
)

// fallbacks is the value each field takes when its record, or the field
// within the record, is absent or zero. Big integers are stored as int64 and
// copied out on use.
var fallbacks = map[Field]any{
	FieldItemID:                uint64(0),
	FieldTypeID:                uint64(0),
	FieldOwnerName:             "",
	FieldName:                  "",
	FieldDescription:           "",
	FieldDappURL:               "",
	FieldImage:                 "",
	FieldIsValid:               false,
	FieldState:                 StateNull,
	FieldAnchoredAtTime:        "",
	FieldSolarSystemID:         uint64(0),
	FieldSolarSystemRef:        "",
	FieldRegion:                "",
	FieldLocation:              "",
	FieldFuelAmount:            int64(0),
	FieldFuelConsumptionPerMin: int64(0),
	FieldFuelMaxCapacity:       int64(0),
	FieldFuelUnitVolume:        int64(10),
	FieldStorageCapacity:       int64(0),
	FieldUsedCapacity:          int64(0),
	FieldGateIsLinked:          false,
	FieldDestinationGate:       "",
}

func fallback[T any](f Field) T {
	v, _ := fallbacks[f].(T)
	return v
}

func textOr(v string, f Field) string {
	if v == "" {
		return fallback[string](f)
	}
	return v
}

func flagOr(v bool, f Field) bool {
	if !v {
		return fallback[bool](f)
	}
	return v
}

func bigOr(v *big.Int, f Field) *big.Int {
	if v == nil || v.Sign() == 0 {
		return big.NewInt(fallback[int64](f))
	}
	return new(big.Int).Set(v)
}

// uintOr narrows a uint256 to uint64; values that do not fit fall back.
func uintOr(v *big.Int, f Field) uint64 {
	if v == nil || v.Sign() == 0 || !v.IsUint64() {
		return fallback[uint64](f)
	}
	return v.Uint64()
}

// decimalOr renders a uint256 as decimal text; zero renders as "0".
func decimalOr(v *big.Int, f Field) string {
	if v == nil {
		return fallback[string](f)
	}
	return v.String()
}

func stateOr(v uint64, f Field) State {
	if v == 0 || v > 255 {
		return fallback[State](f)
	}
	return State(v)
}
