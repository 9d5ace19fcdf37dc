package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	devDispatcherID = "11111111-1111-4111-8111-111111111111"
	devOfficerID    = "22222222-2222-4222-8222-222222222222"
	devPublicFormID = "33333333-3333-4333-8333-333333333333"
	devInspFormID   = "44444444-4444-4444-8444-444444444444"
	devReportID     = "55555555-5555-4555-8555-555555555555"
	devAssignmentID = "66666666-6666-4666-8666-666666666666"

	// Dev-only API keys, printed below. Never seed these anywhere shared.
	devDispatcherKey = "dev-dispatcher-key"
	devOfficerKey    = "dev-officer-key"
)

func keyHash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding sentinel database...")

	now := time.Now()

	fmt.Println("  Inserting users...")
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, is_staff, api_key_hash) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET api_key_hash = EXCLUDED.api_key_hash`,
		devDispatcherID, "dispatcher", "dispatcher@sentinel.test", true, keyHash(devDispatcherKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert dispatcher: %v\n", err)
		os.Exit(1)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, is_staff, api_key_hash) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET api_key_hash = EXCLUDED.api_key_hash`,
		devOfficerID, "jensen", "jensen@sentinel.test", false, keyHash(devOfficerKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert officer: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting form templates...")
	_, err = pool.Exec(ctx,
		`INSERT INTO form_templates (id, name, description, form_type, is_active, schema, map_icon, map_color, event_category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) ON CONFLICT (id) DO NOTHING`,
		devPublicFormID, "Hazard Report", "General public hazard reporting form", "public", true,
		`[{"name":"description","type":"textarea","required":true},{"name":"photo_hint","type":"text"}]`,
		"warning", "#d9534f", "hazard", now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert public form: %v\n", err)
		os.Exit(1)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO form_templates (id, name, description, form_type, is_active, schema, map_icon, map_color, event_category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) ON CONFLICT (id) DO NOTHING`,
		devInspFormID, "Gas Leak Inspection", "Officer inspection checklist for gas leaks", "officer", true,
		`[{"name":"meter_reading","type":"number","required":true},{"name":"evacuation_needed","type":"boolean"},{"name":"notes","type":"textarea"}]`,
		"flame", "#f0ad4e", "gas_leak", now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert inspection form: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting sample report...")
	trackingCode := fmt.Sprintf("INH-%s-0001", now.Format("20060102"))
	_, err = pool.Exec(ctx,
		`INSERT INTO reports (id, tracking_code, form_template_id, data, latitude, longitude, address, status, priority, reporter_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) ON CONFLICT (id) DO NOTHING`,
		devReportID, trackingCode, devPublicFormID,
		`{"description":"Strong gas smell near the pumping station"}`,
		59.3293, 18.0686, "Vasagatan 12", "assigned", "high", "A. Citizen", now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert report: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting assignment...")
	_, err = pool.Exec(ctx,
		`INSERT INTO assignments (id, report_id, officer_id, inspection_form_id, status, assigned_by, assigned_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) ON CONFLICT (id) DO NOTHING`,
		devAssignmentID, devReportID, devOfficerID, devInspFormID, "pending", devDispatcherID, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert assignment: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
	fmt.Println()
	fmt.Printf("  dispatcher (staff)  X-API-Key: %s\n", devDispatcherKey)
	fmt.Printf("  jensen (officer)    X-API-Key: %s\n", devOfficerKey)
	fmt.Printf("  sample report       %s\n", trackingCode)
}
