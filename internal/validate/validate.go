package validate

import (
	"context"
	"fmt"
	"sort"

	"smartassembly/internal/assembly"
	"smartassembly/internal/chain"
	"smartassembly/internal/store"
	"smartassembly/internal/tables"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeInvalidState        = "invalid_lifecycle_state"
	codeMissingAssemblyType = "missing_assembly_type"
	codeUnknownAssemblyType = "unknown_assembly_type"
	codeOrphanedRecord      = "orphaned_record"
	codeDanglingGateLink    = "dangling_gate_link"
	codeVariantMismatch     = "variant_record_mismatch"
	codeInvalidAddress      = "invalid_character_address"
	codeDanglingCharacter   = "dangling_character"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Table    string
	Key      string
}

type Report struct {
	Issues []Issue
}

// Run loads every record and checks that the records the resolver joins
// refer to each other.
func Run(ctx context.Context, loader store.Loader) (*Report, error) {
	if loader == nil {
		return nil, fmt.Errorf("record loader is required")
	}
	snapshot, err := loader.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return Check(snapshot), nil
}

// Check validates a snapshot. Issues are ordered by table, key, and code.
func Check(snapshot store.Snapshot) *Report {
	issues := make([]Issue, 0)
	for ref, value := range snapshot {
		switch rec := value.(type) {
		case tables.DeployableState:
			issues = append(issues, checkDeployableState(snapshot, ref, rec)...)
		case tables.SmartAssembly:
			issues = append(issues, checkSmartAssembly(snapshot, ref, rec)...)
		case tables.Location, tables.FuelBalance:
			issues = append(issues, checkDeployed(snapshot, ref)...)
		case tables.Inventory:
			issues = append(issues, checkDeployed(snapshot, ref)...)
			issues = append(issues, checkVariant(snapshot, ref, assembly.DiscriminantStorageUnit)...)
		case tables.GateLink:
			issues = append(issues, checkGateLink(snapshot, ref, rec)...)
		case tables.CharacterByAddress:
			issues = append(issues, checkCharacter(snapshot, ref, rec)...)
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Code < b.Code
	})
	return &Report{Issues: issues}
}

func checkDeployableState(snapshot store.Snapshot, ref store.Ref, rec tables.DeployableState) []Issue {
	var issues []Issue
	if rec.CurrentState > uint64(assembly.StateDestroyed) {
		issues = append(issues, issueAt(ref, SeverityError, codeInvalidState,
			fmt.Sprintf("lifecycle state %d is not defined", rec.CurrentState)))
	}
	if _, ok := tables.SmartAssemblyTable.Get(snapshot, ref.Key); !ok {
		issues = append(issues, issueAt(ref, SeverityWarn, codeMissingAssemblyType, "deployable has no assembly type"))
	}
	return issues
}

func checkSmartAssembly(snapshot store.Snapshot, ref store.Ref, rec tables.SmartAssembly) []Issue {
	issues := checkDeployed(snapshot, ref)
	switch rec.SmartAssemblyType {
	case assembly.DiscriminantStorageUnit, assembly.DiscriminantTurret, assembly.DiscriminantGate:
	default:
		issues = append(issues, issueAt(ref, SeverityWarn, codeUnknownAssemblyType,
			fmt.Sprintf("assembly type %d has no variant", rec.SmartAssemblyType)))
	}
	return issues
}

// checkDeployed reports records keyed by an object id with no deployable state.
func checkDeployed(snapshot store.Snapshot, ref store.Ref) []Issue {
	if _, ok := tables.DeployableStateTable.Get(snapshot, ref.Key); ok {
		return nil
	}
	return []Issue{issueAt(ref, SeverityWarn, codeOrphanedRecord, "no deployable state for this object")}
}

// checkVariant reports variant records attached to an assembly of another type.
func checkVariant(snapshot store.Snapshot, ref store.Ref, want uint64) []Issue {
	rec, ok := tables.SmartAssemblyTable.Get(snapshot, ref.Key)
	if !ok || rec.SmartAssemblyType == want {
		return nil
	}
	return []Issue{issueAt(ref, SeverityWarn, codeVariantMismatch,
		fmt.Sprintf("record belongs to assembly type %d, object is type %d", want, rec.SmartAssemblyType))}
}

func checkGateLink(snapshot store.Snapshot, ref store.Ref, rec tables.GateLink) []Issue {
	issues := checkDeployed(snapshot, ref)
	issues = append(issues, checkVariant(snapshot, ref, assembly.DiscriminantGate)...)
	if rec.IsLinked && rec.DestinationGateID != nil && rec.DestinationGateID.Sign() != 0 {
		if _, ok := tables.DeployableStateTable.Get(snapshot, tables.IDKey(rec.DestinationGateID)); !ok {
			issues = append(issues, issueAt(ref, SeverityError, codeDanglingGateLink,
				fmt.Sprintf("linked to unknown gate %s", rec.DestinationGateID)))
		}
	}
	return issues
}

func checkCharacter(snapshot store.Snapshot, ref store.Ref, rec tables.CharacterByAddress) []Issue {
	var issues []Issue
	if !chain.IsAddress(rec.CharacterAddress) {
		issues = append(issues, issueAt(ref, SeverityError, codeInvalidAddress,
			fmt.Sprintf("%q is not an address", rec.CharacterAddress)))
	}
	if _, ok := tables.EntityRecordOffchainTable.Get(snapshot, tables.IDKey(rec.CharacterID)); !ok {
		issues = append(issues, issueAt(ref, SeverityWarn, codeDanglingCharacter,
			fmt.Sprintf("character %s has no metadata", tables.IDKey(rec.CharacterID))))
	}
	return issues
}

func issueAt(ref store.Ref, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Table:    ref.Table,
		Key:      ref.Key,
	}
}
