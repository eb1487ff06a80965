package store

import "testing"

func TestRebind(t *testing.T) {
	q := `UPDATE documents SET is_active = (document_id = ?) WHERE title = ?`
	if got := rebind(DriverSQLite, q); got != q {
		t.Fatalf("sqlite query changed: %s", got)
	}
	want := `UPDATE documents SET is_active = (document_id = $1) WHERE title = $2`
	if got := rebind(DriverPostgres, q); got != want {
		t.Fatalf("unexpected postgres query: %s", got)
	}
}

func TestCheckDriver(t *testing.T) {
	if err := checkDriver("mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if err := checkDriver(DriverPostgres); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
