package migrate

import "testing"

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("expected shipped migrations to validate, got %v", err)
	}
}

func TestValidateDirRejectsBadName(t *testing.T) {
	dir := t.TempDir()
	if _, err := CreateSQLMigration(dir, "add widget table"); err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate, got %v", err)
	}
}
