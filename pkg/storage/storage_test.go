package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mabino/atmo/pkg/device"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected version %d, got %d", currentSchemaVersion, version)
	}
}

func TestCredentialStore_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cfg := device.Config{Identifier: "dev-1", AllIdentifiers: []string{"dev-1", "aa:bb"}}

	store := db.Credentials()
	settings, err := store.Settings(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	settings.SetCredentials(device.ProtocolCompanion, "companion-creds")
	settings.Set(device.ProtocolAirPlay, ProtocolSettings{Credentials: "airplay-creds", Password: "secret"})
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := db.Credentials().Settings(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Get(device.ProtocolCompanion).Credentials; got != "companion-creds" {
		t.Errorf("expected companion credentials, got %q", got)
	}
	if got := reloaded.Get(device.ProtocolAirPlay); got.Password != "secret" || got.Credentials != "airplay-creds" {
		t.Errorf("unexpected AirPlay settings: %+v", got)
	}
	protocols := reloaded.Protocols()
	if len(protocols) != 2 || protocols[0] != device.ProtocolAirPlay || protocols[1] != device.ProtocolCompanion {
		t.Errorf("unexpected protocols: %v", protocols)
	}
}

func TestCredentialStore_ClearedRowsDeleted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cfg := device.Config{Identifier: "dev-1"}

	store := db.Credentials()
	settings, _ := store.Settings(ctx, cfg)
	settings.SetCredentials(device.ProtocolMRP, "mrp-creds")
	if err := store.Save(ctx); err != nil {
		t.Fatal(err)
	}

	if !settings.Clear(device.ProtocolMRP) {
		t.Fatal("expected Clear to report removal")
	}
	if err := store.Save(ctx); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_settings`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected no rows, got %d", count)
	}
}

func TestCredentialStore_FindsAlternateIdentifier(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	store := db.Credentials()
	settings, _ := store.Settings(ctx, device.Config{Identifier: "aa:bb"})
	settings.SetCredentials(device.ProtocolCompanion, "creds")
	if err := store.Save(ctx); err != nil {
		t.Fatal(err)
	}

	cfg := device.Config{Identifier: "dev-1", AllIdentifiers: []string{"dev-1", "aa:bb"}}
	found, err := db.Credentials().Settings(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if found.Get(device.ProtocolCompanion).Credentials != "creds" {
		t.Errorf("expected settings stored under alternate identifier, got %+v", found.Get(device.ProtocolCompanion))
	}
}

func TestSettings_Clear(t *testing.T) {
	tests := []struct {
		protocol     device.Protocol
		wantPassword string
	}{
		{device.ProtocolAirPlay, ""},
		{device.ProtocolRAOP, ""},
		{device.ProtocolCompanion, "pw"},
		{device.ProtocolMRP, "pw"},
		{device.ProtocolDMAP, "pw"},
	}

	for _, tt := range tests {
		t.Run(string(tt.protocol), func(t *testing.T) {
			s := NewSettings("dev-1")
			s.Set(tt.protocol, ProtocolSettings{Credentials: "creds", Password: "pw"})

			if !s.Clear(tt.protocol) {
				t.Fatal("expected removal")
			}
			got := s.Get(tt.protocol)
			if got.Credentials != "" {
				t.Errorf("expected credentials cleared, got %q", got.Credentials)
			}
			if got.Password != tt.wantPassword {
				t.Errorf("expected password %q, got %q", tt.wantPassword, got.Password)
			}
		})
	}
}

func TestSettings_ClearNothingStored(t *testing.T) {
	s := NewSettings("dev-1")
	if s.Clear(device.ProtocolCompanion) {
		t.Error("expected no-op on missing protocol")
	}

	s.Set(device.ProtocolCompanion, ProtocolSettings{Password: "pw"})
	if s.Clear(device.ProtocolCompanion) {
		t.Error("expected no-op when Companion has only a password")
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	cfg := device.Config{
		Identifier: "dev-1",
		Services: []device.Service{
			{Protocol: device.ProtocolCompanion},
			{Protocol: device.ProtocolAirPlay, Credentials: "scanned"},
		},
	}

	settings, _ := store.Settings(ctx, cfg)
	settings.SetCredentials(device.ProtocolCompanion, "stored")

	if err := Apply(ctx, store, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Services[0].Credentials != "stored" {
		t.Errorf("expected stored credentials, got %q", cfg.Services[0].Credentials)
	}
	if cfg.Services[1].Credentials != "scanned" {
		t.Errorf("expected scanned credentials kept, got %q", cfg.Services[1].Credentials)
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path+"-wal", []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	res, err := Clear(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != "cleared" || !res.Cleared || res.Path != path {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(path + "-wal"); !os.IsNotExist(err) {
		t.Errorf("expected WAL file removed, got %v", err)
	}

	res, err = Clear(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != "missing" || res.Cleared {
		t.Errorf("unexpected result: %+v", res)
	}
}
