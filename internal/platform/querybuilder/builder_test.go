package querybuilder

import (
	"strings"
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("public_id", "name").
		From("players").
		Where(Eq("public_id", "Alice"), IsNull("deleted_at")).
		OrderBy("name").
		Limit(1).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT public_id, name FROM players WHERE public_id = $1 AND deleted_at IS NULL ORDER BY name LIMIT 1 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "Alice" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RequiresTableAndColumns(t *testing.T) {
	if _, _, err := Select().From("players").ToSQL(); err == nil {
		t.Fatalf("expected error without columns")
	}
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("picks").
		Columns("public_id", "team").
		Values("pick-1", "Arsenal FC").
		Suffix("ON CONFLICT (player_public_id, round) WHERE deleted_at IS NULL DO NOTHING RETURNING public_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO picks (public_id, team) VALUES ($1, $2) ON CONFLICT (player_public_id, round) WHERE deleted_at IS NULL DO NOTHING RETURNING public_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "pick-1" || args[1] != "Arsenal FC" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_VersionCheck(t *testing.T) {
	query, args, err := Update("players").
		Set("status", "eliminated").
		SetExpr("version", "version + 1").
		SetExpr("updated_at", "GREATEST(updated_at, ?)", "2025-10-18").
		Where(Eq("public_id", "Bob"), Eq("version", int64(3))).
		Suffix("RETURNING version").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE players SET status = $1, version = version + 1, updated_at = GREATEST(updated_at, $2) WHERE public_id = $3 AND version = $4 RETURNING version"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "eliminated" || args[1] != "2025-10-18" || args[2] != "Bob" || args[3] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		PublicID  string    `db:"public_id"`
		Round     int       `db:"round"`
		Ignored   string    `db:"-"`
		CreatedAt time.Time `db:"created_at,omitempty"`
		internal  string
	}

	query, args, err := InsertModel("picks", row{PublicID: "pick-1", Round: 9, internal: "x"}, "")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO picks (public_id, round, created_at) VALUES ($1, $2, $3)") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 3 || args[1] != 9 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("picks", (*row)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
