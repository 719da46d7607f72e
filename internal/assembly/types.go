package assembly

import (
	"fmt"
	"math/big"
)

// State is the deployable lifecycle state.
type State uint8

const (
	StateNull State = iota
	StateUnanchored
	StateAnchored
	StateOnline
	StateDestroyed
)

var stateNames = [...]string{"NULL", "UNANCHORED", "ANCHORED", "ONLINE", "DESTROYED"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type SolarSystem struct {
	SolarSystemID     string `json:"solarSystemId"`
	SolarSystemName   string `json:"solarSystemName"`
	SolarSystemNameID string `json:"solarSystemNameId"`
}

type Fuel struct {
	FuelAmount            *big.Int `json:"fuelAmount"`
	FuelConsumptionPerMin *big.Int `json:"fuelConsumptionPerMin"`
	FuelMaxCapacity       *big.Int `json:"fuelMaxCapacity"`
	FuelUnitVolume        *big.Int `json:"fuelUnitVolume"`
}

// SmartAssembly is the type-independent projection shared by every variant.
type SmartAssembly struct {
	ID             string      `json:"id"`
	ItemID         uint64      `json:"itemId"`
	OwnerID        string      `json:"ownerId"`
	OwnerName      string      `json:"ownerName"`
	ChainID        uint64      `json:"chainId"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	DappURL        string      `json:"dappUrl"`
	Image          string      `json:"image"`
	IsValid        bool        `json:"isValid"`
	IsOnline       bool        `json:"isOnline"`
	StateID        uint8       `json:"stateId"`
	State          State       `json:"state"`
	AnchoredAtTime string      `json:"anchoredAtTime"`
	SolarSystemID  uint64      `json:"solarSystemId"`
	SolarSystem    SolarSystem `json:"solarSystem"`
	TypeID         uint64      `json:"typeId"`
	Region         string      `json:"region"`
	LocationX      string      `json:"locationX"`
	LocationY      string      `json:"locationY"`
	LocationZ      string      `json:"locationZ"`
	Fuel           Fuel        `json:"fuel"`
}

// Type tags a variant.
type Type string

const (
	TypeStorageUnit Type = "StorageUnit"
	TypeTurret      Type = "Turret"
	TypeGate        Type = "Gate"
)

// Assembly type discriminants as stored in the SmartAssembly table.
const (
	DiscriminantStorageUnit uint64 = 0
	DiscriminantTurret      uint64 = 1
	DiscriminantGate        uint64 = 2
)

// Variant is a SmartAssembly extended for one assembly type. The set of
// implementations is closed.
type Variant interface {
	Type() Type
	Base() SmartAssembly
	isVariant()
}

type InventoryItem struct {
	ItemID   string   `json:"itemId"`
	TypeID   uint64   `json:"typeId"`
	Name     string   `json:"name"`
	Quantity *big.Int `json:"quantity"`
}

type EphemeralInventory struct {
	OwnerID   string          `json:"ownerId"`
	OwnerName string          `json:"ownerName"`
	Items     []InventoryItem `json:"ephemeralInventoryItems"`
}

type Inventory struct {
	StorageCapacity        *big.Int             `json:"storageCapacity"`
	UsedCapacity           *big.Int             `json:"usedCapacity"`
	StorageItems           []InventoryItem      `json:"storageItems"`
	EphemeralInventoryList []EphemeralInventory `json:"ephemeralInventoryList"`
}

type StorageUnit struct {
	SmartAssembly
	AssemblyType Type      `json:"assemblyType"`
	Inventory    Inventory `json:"inventory"`
}

// Proximity is reserved for turret targeting data.
type Proximity struct{}

type Turret struct {
	SmartAssembly
	AssemblyType Type      `json:"assemblyType"`
	Proximity    Proximity `json:"proximity"`
}

type GateLink struct {
	GatesInRange    []string `json:"gatesInRange"`
	IsLinked        bool     `json:"isLinked"`
	DestinationGate string   `json:"destinationGate,omitempty"`
}

type Gate struct {
	SmartAssembly
	AssemblyType Type     `json:"assemblyType"`
	GateLink     GateLink `json:"gateLink"`
}

func (v *StorageUnit) Type() Type          { return TypeStorageUnit }
func (v *StorageUnit) Base() SmartAssembly { return v.SmartAssembly }
func (v *StorageUnit) isVariant()          {}

func (v *Turret) Type() Type          { return TypeTurret }
func (v *Turret) Base() SmartAssembly { return v.SmartAssembly }
func (v *Turret) isVariant()          {}

func (v *Gate) Type() Type          { return TypeGate }
func (v *Gate) Base() SmartAssembly { return v.SmartAssembly }
func (v *Gate) isVariant()          {}
