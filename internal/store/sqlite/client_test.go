package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartassembly/internal/tables"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "world.db")
	client, err := New(ctx, "sqlite://"+path)
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return client
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	client := testClient(t)
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema (idempotent): %v", err)
	}
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	statements := []string{
		`INSERT INTO deployable_state (smart_object_id, current_state, is_valid, anchored_at) VALUES ('42', 3, 1, '1700000000')`,
		`INSERT INTO smart_assembly (smart_object_id, smart_assembly_type) VALUES ('42', 0)`,
		`INSERT INTO inventory (smart_object_id, capacity, used_capacity) VALUES ('42', '1000', '250')`,
		`INSERT INTO characters_by_address (character_address, character_id) VALUES ('0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266', '11')`,
	}
	for _, stmt := range statements {
		if _, err := client.db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	snapshot, err := client.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(snapshot) != 4 {
		t.Fatalf("expected 4 records, got %d", len(snapshot))
	}

	state, ok := tables.DeployableStateTable.Get(snapshot, "42")
	if !ok {
		t.Fatalf("expected deployable state")
	}
	if state.CurrentState != 3 || !state.IsValid || state.AnchoredAt.Int64() != 1700000000 {
		t.Fatalf("unexpected deployable state: %+v", state)
	}
	if state.CreatedAt != nil {
		t.Fatalf("expected NULL created_at to decode as nil")
	}

	inv, ok := tables.InventoryTable.Get(snapshot, "42")
	if !ok || inv.Capacity.Int64() != 1000 || inv.UsedCapacity.Int64() != 250 {
		t.Fatalf("unexpected inventory: %+v", inv)
	}

	character, ok := tables.CharactersByAddressTable.Get(snapshot, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	if !ok || character.CharacterID.Int64() != 11 {
		t.Fatalf("unexpected character: %+v", character)
	}
}

// openWriter opens a second handle on the client's file, standing in for the
// indexer that populates the database.
func openWriter(t *testing.T, client *Client) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", client.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("opening writer: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadSnapshotIsPointInTime(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	writer := openWriter(t, client)

	if _, err := client.db.ExecContext(ctx, `INSERT INTO deployable_state (smart_object_id, current_state) VALUES ('42', 3)`); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	client.tableLoaded = func(def tables.Def) {
		if def.Name() != tables.DeployableStateTable.Name() {
			return
		}
		stmt := `INSERT INTO characters_by_address (character_address, character_id) VALUES ('0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266', '11')`
		if _, err := writer.ExecContext(ctx, stmt); err != nil {
			t.Errorf("concurrent write: %v", err)
		}
	}

	snapshot, err := client.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if _, ok := tables.CharactersByAddressTable.Get(snapshot, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"); ok {
		t.Fatalf("snapshot includes a row committed after it started")
	}
	if _, ok := tables.DeployableStateTable.Get(snapshot, "42"); !ok {
		t.Fatalf("expected deployable state")
	}

	client.tableLoaded = nil
	snapshot, err = client.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if _, ok := tables.CharactersByAddressTable.Get(snapshot, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"); !ok {
		t.Fatalf("expected the committed row in the next snapshot")
	}
}

func TestChangesSignalsOnExternalWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := testClient(t)
	writer := openWriter(t, client)

	changes, err := client.Changes(ctx, nil)
	if err != nil {
		t.Fatalf("watching changes: %v", err)
	}

	if _, err := writer.ExecContext(ctx, `INSERT INTO inventory (smart_object_id, capacity) VALUES ('42', '1000')`); err != nil {
		t.Fatalf("writing: %v", err)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change signal after an external write")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("expected the change channel to close after cancel")
		}
	}
}

func TestChangesInMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	defer client.Close(ctx)

	changes, err := client.Changes(ctx, nil)
	if err != nil {
		t.Fatalf("watching changes: %v", err)
	}
	cancel()
	if _, ok := <-changes; ok {
		t.Fatalf("in-memory database should never signal")
	}
}

func TestRunSQL(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.db.ExecContext(ctx, `INSERT INTO entity_record_offchain (entity_id, name) VALUES ('7', 'Gate Alpha')`); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	rows, err := client.RunSQL(ctx, "SELECT name FROM entity_record_offchain WHERE entity_id = ?", map[string]any{"1": "7"})
	if err != nil {
		t.Fatalf("run sql: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Gate Alpha" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestRunSQLRejectsWrites(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.RunSQL(ctx, "DELETE FROM inventory", nil); err == nil {
		t.Fatalf("expected error for write statement")
	}
	if _, err := client.RunSQL(ctx, "WITH x AS (SELECT 1) INSERT INTO inventory (smart_object_id) SELECT '1' FROM x", nil); err == nil {
		t.Fatalf("expected query_only to reject write inside CTE")
	}
}

func TestSchemaDDL(t *testing.T) {
	ddl := schemaDDL()
	for _, def := range tables.All {
		if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+def.SQLName()+" (") {
			t.Fatalf("missing table %s in DDL", def.SQLName())
		}
	}
	count := 0
	for _, stmt := range splitStatements(ddl) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if strings.Contains(stmt, "--") {
			t.Fatalf("comment leaked into statement: %q", stmt)
		}
		count++
	}
	if count != len(tables.All) {
		t.Fatalf("expected %d statements, got %d", len(tables.All), count)
	}
}
