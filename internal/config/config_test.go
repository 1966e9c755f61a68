package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RPC_URL", "GRPC_URL", "MYSQL", "API_PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when RPC_URL/GRPC_URL/MYSQL are unset")
	}
}

func TestLoadDefaultsAPIPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://rpc.example.com")
	t.Setenv("GRPC_URL", "grpc.example.com:443")
	t.Setenv("MYSQL", "user:pass@tcp(127.0.0.1:3306)/sandwich")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIPort != DefaultAPIPort {
		t.Errorf("APIPort = %d, want default %d", cfg.APIPort, DefaultAPIPort)
	}
}

func TestLoadCustomAPIPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://rpc.example.com")
	t.Setenv("GRPC_URL", "grpc.example.com:443")
	t.Setenv("MYSQL", "user:pass@tcp(127.0.0.1:3306)/sandwich")
	t.Setenv("API_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIPort != 9999 {
		t.Errorf("APIPort = %d, want 9999", cfg.APIPort)
	}
}

func TestLoadInvalidAPIPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://rpc.example.com")
	t.Setenv("GRPC_URL", "grpc.example.com:443")
	t.Setenv("MYSQL", "user:pass@tcp(127.0.0.1:3306)/sandwich")
	t.Setenv("API_PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric API_PORT")
	}
}
