package daemon

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Klingon-tech/sui-tokengen/config"
	"github.com/Klingon-tech/sui-tokengen/internal/rpc"
	"github.com/Klingon-tech/sui-tokengen/internal/rpcclient"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.RPC.Port = 0
	cfg.Log.Level = "error"
	cfg.Log.File = ""
	cfg.Source.WorkDir = filepath.Join(cfg.DataDir, "clones")
	return cfg
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.suitoken/clones", filepath.Join(home, ".suitoken/clones")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveGit_Missing(t *testing.T) {
	bin, err := resolveGit("/nonexistent/git-binary")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if bin != "/nonexistent/git-binary" {
		t.Errorf("bin = %q, want the configured name back", bin)
	}
}

func TestDaemon_StartStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if _, err := os.Stat(cfg.Source.WorkDir); err != nil {
		t.Errorf("work dir not created: %v", err)
	}

	client := rpcclient.New("http://" + d.RPCAddr() + "/")
	ctx := context.Background()

	created, err := client.Create(ctx, rpc.CreateParam{
		Decimals: 6, Name: "Daemon Coin", Symbol: "DMN", Environment: "mainnet",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := client.VerifyContent(ctx, created.TokenContent)
	if err != nil {
		t.Fatalf("verify_content: %v", err)
	}
	if !res.Authentic {
		t.Error("authentic = false")
	}

	resp, err := http.Get("http://" + d.RPCAddr() + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "suitoken_tokens_contracts_created_total 1") {
		t.Error("metrics missing created contract")
	}
}

func TestDaemon_VerifyModeFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Verify.Mode = "first"

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := d.Service().Mode().String(); got != "first" {
		t.Errorf("mode = %q, want first", got)
	}
}

func TestDaemon_BadVerifyMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Verify.Mode = "some"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown verify mode")
	}
}

func TestDaemon_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	resp, err := http.Get("http://" + d.RPCAddr() + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
