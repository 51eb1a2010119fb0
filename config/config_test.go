package config

import (
	"testing"
	"time"
)

func TestToolsConfigNormalize(t *testing.T) {
	n := ToolsConfig{}.Normalize()
	if n.CallTimeout != 10*time.Second {
		t.Errorf("call timeout = %s, want 10s", n.CallTimeout)
	}
	if n.GasPerGallon != 3.50 {
		t.Errorf("gas = %.2f, want 3.50", n.GasPerGallon)
	}
	if n.MilesPerGallon != 25.0 {
		t.Errorf("mpg = %.2f, want 25", n.MilesPerGallon)
	}

	custom := ToolsConfig{CallTimeout: time.Second, GasPerGallon: 4, MilesPerGallon: 30}.Normalize()
	if custom.CallTimeout != time.Second || custom.GasPerGallon != 4 || custom.MilesPerGallon != 30 {
		t.Errorf("explicit values overwritten: %+v", custom)
	}
}

func TestReasonerConfigured(t *testing.T) {
	if (ReasonerConfig{}).Configured() {
		t.Error("empty reasoner reported configured")
	}
	if (ReasonerConfig{BaseURL: "https://api.example.com/v1"}).Configured() {
		t.Error("reasoner without api key reported configured")
	}
	if !(ReasonerConfig{BaseURL: "https://api.example.com/v1", APIKey: "k"}).Configured() {
		t.Error("configured reasoner not recognized")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{URL: "postgres://u:p@h:5432/db"}
	dsn, err := p.DSN()
	if err != nil || dsn != p.URL {
		t.Errorf("url passthrough failed: %q, %v", dsn, err)
	}

	p = PostgresConfig{Host: "localhost", User: "u", Password: "p", DBName: "trips"}
	dsn, err = p.DSN()
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	want := "postgres://u:p@localhost:5432/trips?sslmode=disable"
	if dsn != want {
		t.Errorf("dsn = %q, want %q", dsn, want)
	}

	if _, err := (PostgresConfig{Host: "localhost"}).DSN(); err == nil {
		t.Error("missing dbname accepted")
	}
}
