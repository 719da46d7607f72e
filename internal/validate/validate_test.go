package validate

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"smartassembly/internal/assembly"
	"smartassembly/internal/store"
	"smartassembly/internal/tables"
)

const characterAddress = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

type mockLoader struct {
	snapshot store.Snapshot
	err      error
}

func (m *mockLoader) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	return m.snapshot, m.err
}

func deployed(s store.Snapshot, id int64, discriminant uint64) {
	key := tables.IDKey(big.NewInt(id))
	s[tables.DeployableStateTable.Ref(key)] = tables.DeployableState{SmartObjectID: big.NewInt(id), CurrentState: uint64(assembly.StateOnline)}
	s[tables.SmartAssemblyTable.Ref(key)] = tables.SmartAssembly{SmartObjectID: big.NewInt(id), SmartAssemblyType: discriminant}
}

func consistentSnapshot() store.Snapshot {
	s := store.Snapshot{}
	deployed(s, 1, assembly.DiscriminantStorageUnit)
	deployed(s, 2, assembly.DiscriminantGate)
	deployed(s, 3, assembly.DiscriminantGate)
	s[tables.InventoryTable.Ref("1")] = tables.Inventory{SmartObjectID: big.NewInt(1), Capacity: big.NewInt(10)}
	s[tables.GateLinkTable.Ref("2")] = tables.GateLink{SourceGateID: big.NewInt(2), DestinationGateID: big.NewInt(3), IsLinked: true}
	s[tables.LocationTable.Ref("1")] = tables.Location{SmartObjectID: big.NewInt(1)}
	s[tables.CharactersByAddressTable.Ref(characterAddress)] = tables.CharacterByAddress{CharacterAddress: characterAddress, CharacterID: big.NewInt(11)}
	s[tables.EntityRecordOffchainTable.Ref("11")] = tables.EntityRecordOffchain{EntityID: big.NewInt(11), Name: "Scetrov"}
	return s
}

func codes(report *Report) map[string]Issue {
	out := make(map[string]Issue)
	for _, issue := range report.Issues {
		out[issue.Code] = issue
	}
	return out
}

func TestRun_Consistent(t *testing.T) {
	report, err := Run(context.Background(), &mockLoader{snapshot: consistentSnapshot()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}

func TestRun_LoaderError(t *testing.T) {
	if _, err := Run(context.Background(), &mockLoader{err: errors.New("boom")}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s store.Snapshot)
		code     string
		severity Severity
		table    string
		key      string
	}{
		{
			name: "undefined lifecycle state",
			mutate: func(s store.Snapshot) {
				s[tables.DeployableStateTable.Ref("1")] = tables.DeployableState{SmartObjectID: big.NewInt(1), CurrentState: 9}
			},
			code: codeInvalidState, severity: SeverityError, table: "DeployableState", key: "1",
		},
		{
			name:   "missing assembly type",
			mutate: func(s store.Snapshot) { delete(s, tables.SmartAssemblyTable.Ref("3")) },
			code:   codeMissingAssemblyType, severity: SeverityWarn, table: "DeployableState", key: "3",
		},
		{
			name: "unknown assembly type",
			mutate: func(s store.Snapshot) {
				s[tables.SmartAssemblyTable.Ref("3")] = tables.SmartAssembly{SmartObjectID: big.NewInt(3), SmartAssemblyType: 7}
			},
			code: codeUnknownAssemblyType, severity: SeverityWarn, table: "SmartAssemblyTable", key: "3",
		},
		{
			name: "orphaned fuel",
			mutate: func(s store.Snapshot) {
				s[tables.FuelBalanceTable.Ref("99")] = tables.FuelBalance{SmartObjectID: big.NewInt(99)}
			},
			code: codeOrphanedRecord, severity: SeverityWarn, table: "DeployableFuelBalance", key: "99",
		},
		{
			name: "inventory on a gate",
			mutate: func(s store.Snapshot) {
				s[tables.InventoryTable.Ref("3")] = tables.Inventory{SmartObjectID: big.NewInt(3)}
			},
			code: codeVariantMismatch, severity: SeverityWarn, table: "InventoryTable", key: "3",
		},
		{
			name: "dangling gate link",
			mutate: func(s store.Snapshot) {
				s[tables.GateLinkTable.Ref("2")] = tables.GateLink{SourceGateID: big.NewInt(2), DestinationGateID: big.NewInt(404), IsLinked: true}
			},
			code: codeDanglingGateLink, severity: SeverityError, table: "SmartGateLinkTable", key: "2",
		},
		{
			name: "invalid character address",
			mutate: func(s store.Snapshot) {
				s[tables.CharactersByAddressTable.Ref("0x12")] = tables.CharacterByAddress{CharacterAddress: "0x12", CharacterID: big.NewInt(11)}
			},
			code: codeInvalidAddress, severity: SeverityError, table: "CharactersByAddressTable", key: "0x12",
		},
		{
			name:   "character without metadata",
			mutate: func(s store.Snapshot) { delete(s, tables.EntityRecordOffchainTable.Ref("11")) },
			code:   codeDanglingCharacter, severity: SeverityWarn, table: "CharactersByAddressTable", key: characterAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := consistentSnapshot()
			tt.mutate(s)
			report := Check(s)
			issue, ok := codes(report)[tt.code]
			if !ok {
				t.Fatalf("expected %s issue, got %+v", tt.code, report.Issues)
			}
			if issue.Severity != tt.severity || issue.Table != tt.table || issue.Key != tt.key {
				t.Fatalf("unexpected issue: %+v", issue)
			}
		})
	}
}

func TestCheck_UnlinkedGateIsNotDangling(t *testing.T) {
	s := consistentSnapshot()
	s[tables.GateLinkTable.Ref("2")] = tables.GateLink{SourceGateID: big.NewInt(2), DestinationGateID: big.NewInt(404)}
	if report := Check(s); len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}

func TestCheck_Ordering(t *testing.T) {
	s := consistentSnapshot()
	s[tables.FuelBalanceTable.Ref("98")] = tables.FuelBalance{}
	s[tables.FuelBalanceTable.Ref("97")] = tables.FuelBalance{}
	s[tables.LocationTable.Ref("96")] = tables.Location{}

	report := Check(s)
	if len(report.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %+v", report.Issues)
	}
	got := []string{report.Issues[0].Key, report.Issues[1].Key, report.Issues[2].Key}
	want := []string{"97", "98", "96"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v", got)
		}
	}
}
