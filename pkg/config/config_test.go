package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_TARGET", "sqlite")
	t.Setenv("PARTNER_NAME", "acme")
	t.Setenv("TOKEN", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DeleteURL != DefaultDeleteURL {
		t.Errorf("DeleteURL = %q, want %q", cfg.DeleteURL, DefaultDeleteURL)
	}
	if cfg.RequestsPerMinute != 900 {
		t.Errorf("RequestsPerMinute = %d, want 900", cfg.RequestsPerMinute)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.LogMaxSizeMB != 10 {
		t.Errorf("LogMaxSizeMB = %d, want 10", cfg.LogMaxSizeMB)
	}
	if cfg.Database.Target != TargetSQLite || cfg.Database.SQLite == nil {
		t.Fatalf("Database = %+v, want sqlite target", cfg.Database)
	}
	if err := cfg.ValidateDeletion(); err != nil {
		t.Errorf("ValidateDeletion() error = %v", err)
	}
}

func TestValidateDeletionRequiresCredentials(t *testing.T) {
	cfg := &Config{DeleteURL: DefaultDeleteURL}
	if err := cfg.ValidateDeletion(); err == nil {
		t.Fatal("ValidateDeletion() expected error without PARTNER_NAME")
	}

	cfg.PartnerName = "acme"
	err := cfg.ValidateDeletion()
	if err == nil || !strings.Contains(err.Error(), "TOKEN") {
		t.Fatalf("ValidateDeletion() error = %v, want TOKEN error", err)
	}
}

func TestLoadDatabaseConfig(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		want      Target
		expectErr bool
		validErr  bool
	}{
		{
			name:     "oracle default without credentials",
			env:      map[string]string{},
			want:     TargetOracle,
			validErr: true,
		},
		{
			name: "oracle with credentials",
			env: map[string]string{
				"ORACLE_USER":     "etl",
				"ORACLE_PASSWORD": "pw",
				"ORACLE_SERVICE":  "ORCLPDB1",
			},
			want: TargetOracle,
		},
		{
			name: "postgres",
			env: map[string]string{
				"DB_TARGET":     "postgres",
				"POSTGRES_USER": "etl",
				"POSTGRES_DB":   "leads",
			},
			want: TargetPostgres,
		},
		{
			name:      "unknown target",
			env:       map[string]string{"DB_TARGET": "mongo"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_TARGET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadDatabaseConfig()
			if tt.expectErr {
				if err == nil {
					t.Fatal("LoadDatabaseConfig() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadDatabaseConfig() error = %v", err)
			}
			if cfg.Target != tt.want {
				t.Errorf("Target = %q, want %q", cfg.Target, tt.want)
			}
			if err := cfg.Validate(); (err != nil) != tt.validErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.validErr)
			}
		})
	}
}

func TestPostgresConnectionString(t *testing.T) {
	c := &PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}

func TestOracleConnectionString(t *testing.T) {
	c := &OracleConfig{Host: "ora", Port: 1521, Service: "XE", User: "etl", Password: "pw"}
	got := c.ConnectionString()
	if !strings.HasPrefix(got, "oracle://") || !strings.Contains(got, "ora:1521/XE") {
		t.Errorf("ConnectionString() = %q", got)
	}
}

func TestLoadConfigEmptyAsNull(t *testing.T) {
	t.Setenv("DB_TARGET", "sqlite")
	t.Setenv("LOAD_EMPTY_AS_NULL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.EmptyAsNull {
		t.Error("EmptyAsNull should default to false")
	}

	t.Setenv("LOAD_EMPTY_AS_NULL", "true")
	if cfg, err = LoadConfig(); err != nil || !cfg.EmptyAsNull {
		t.Errorf("EmptyAsNull = %v, err = %v, want true", cfg != nil && cfg.EmptyAsNull, err)
	}
}
