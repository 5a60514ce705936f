package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:4221" {
		t.Errorf("Expected addr 127.0.0.1:4221, got %s", cfg.Addr())
	}
	if cfg.Directory != "." {
		t.Errorf("Expected directory ., got %s", cfg.Directory)
	}
	if cfg.MaxBodyBytes != 32<<20 {
		t.Errorf("Expected max body bytes 32 MiB, got %d", cfg.MaxBodyBytes)
	}
	if cfg.ReadTimeout != 0 || cfg.WriteTimeout != 0 || cfg.MaxConnections != 0 {
		t.Errorf("Expected timeouts and connection cap disabled, got %+v", cfg)
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{
		"--directory", "/tmp/files",
		"-port", "8080",
		"-host", "0.0.0.0",
		"-read-timeout", "5s",
		"-max-conns", "64",
		"-log-level", "debug",
		"-max-body-bytes", "1024",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Directory != "/tmp/files" {
		t.Errorf("Expected directory /tmp/files, got %s", cfg.Directory)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Expected addr 0.0.0.0:8080, got %s", cfg.Addr())
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("Expected read timeout 5s, got %v", cfg.ReadTimeout)
	}
	if cfg.MaxConnections != 64 {
		t.Errorf("Expected max conns 64, got %d", cfg.MaxConnections)
	}
	if cfg.MaxBodyBytes != 1024 {
		t.Errorf("Expected max body bytes 1024, got %d", cfg.MaxBodyBytes)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "9000")
	t.Setenv("HTTP_SERVER_WRITE_TIMEOUT", "250ms")
	t.Setenv("HTTP_SERVER_MAX_HEADER_BYTES", "4096")
	t.Setenv("HTTP_SERVER_DIRECTORY", "/srv/env")

	cfg, err := Load([]string{"-directory", "/srv/flag"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Expected port 9000 from env, got %d", cfg.Port)
	}
	if cfg.WriteTimeout != 250*time.Millisecond {
		t.Errorf("Expected write timeout 250ms from env, got %v", cfg.WriteTimeout)
	}
	if cfg.MaxHeaderBytes != 4096 {
		t.Errorf("Expected max header bytes 4096 from env, got %d", cfg.MaxHeaderBytes)
	}
	if cfg.Directory != "/srv/flag" {
		t.Errorf("Flags should override env, got directory %s", cfg.Directory)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad port flag", []string{"-port", "abc"}, nil},
		{"port out of range", []string{"-port", "70000"}, nil},
		{"negative conns", []string{"-max-conns", "-1"}, nil},
		{"negative body limit", []string{"-max-body-bytes", "-1"}, nil},
		{"empty directory", []string{"-directory", ""}, nil},
		{"bad env duration", nil, map[string]string{"HTTP_SERVER_READ_TIMEOUT": "soon"}},
		{"bad env port", nil, map[string]string{"HTTP_SERVER_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.args); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}
