package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	checks := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"TableLockTimeout", cfg.TableLockTimeout, 3 * time.Second},
		{"OrderCooldown", cfg.OrderCooldown, 60 * time.Second},
		{"ServiceCallCooldown", cfg.ServiceCallCooldown, 180 * time.Second},
		{"ServiceCallActiveWindow", cfg.ServiceCallActiveWindow, 180 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverPostgres)
	}
	if string(cfg.JWT.SecretKey) != "s3cret" {
		t.Errorf("JWT.SecretKey = %q", cfg.JWT.SecretKey)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missingSecret", env: map[string]string{"JWT_SECRET_KEY": ""}},
		{name: "badDuration", env: map[string]string{"JWT_SECRET_KEY": "x", "ORDER_COOLDOWN": "soon"}},
		{name: "negativeDuration", env: map[string]string{"JWT_SECRET_KEY": "x", "TABLE_LOCK_TIMEOUT": "-1s"}},
		{name: "badBool", env: map[string]string{"JWT_SECRET_KEY": "x", "SEED_DEMO": "maybe"}},
		{name: "unknownDriver", env: map[string]string{"JWT_SECRET_KEY": "x", "STORE_DRIVER": "sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("FromEnv() expected an error")
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := Database{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.URL = "postgres://u:p@db/n"
	if got := d.DSN(); got != d.URL {
		t.Errorf("DSN() = %q, want URL %q", got, d.URL)
	}
}
