package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storelinkhq/storelink-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestStoresMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_stores.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no stores migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE stores",
		"CREATE UNIQUE INDEX idx_stores_owner_domain ON stores (owner_id, domain)",
		"CREATE UNIQUE INDEX idx_stores_owner_primary ON stores (owner_id) WHERE is_primary",
		"DROP TABLE stores",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCredentialsMigrationEnforcesOneRowPerStore(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_credentials.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no credentials migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE credentials",
		"REFERENCES stores (id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX idx_credentials_owner_store ON credentials (owner_id, store_id)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
