package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMilestonesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_milestones.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no milestones migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS milestones",
		"FOREIGN KEY (order_id) REFERENCES garment_orders(id) ON DELETE CASCADE",
		"CONSTRAINT milestones_order_stage_unique UNIQUE (order_id, stage)",
		"WHERE approval_status = 'PENDING'",
		"DROP TABLE IF EXISTS milestones",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestGarmentOrdersMigrationContainsBreakdownCheck(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_garment_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no garment_orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS garment_orders",
		"deposit_amount + fitting_amount + final_amount = total_amount",
		"CHECK (total_amount > 0)",
		"DROP TABLE IF EXISTS garment_orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
