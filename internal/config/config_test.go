package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "server.toml")
	body := `
[simulation]
tick_rate = "20ms"
workers = 8

[network]
max_players = 2
shared_secret = "s3cret"

[database]
driver = "sqlite"
dsn = "chat.db"
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.TickRate != 20*time.Millisecond || cfg.Simulation.Workers != 8 {
		t.Fatalf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Network.MaxPlayers != 2 || cfg.Network.SharedSecret != "s3cret" {
		t.Fatalf("network = %+v", cfg.Network)
	}
	if cfg.Network.BindAddress != "0.0.0.0:7777" {
		t.Fatalf("default bind address lost: %q", cfg.Network.BindAddress)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("start time not set")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	p := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(p, []byte("[database]\ndriver = \"mysql\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
