package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/sui-tokengen/config"
	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
	"github.com/Klingon-tech/sui-tokengen/internal/rpc"
	"github.com/Klingon-tech/sui-tokengen/internal/service"
)

type testEnv struct {
	client *Client
	server *rpc.Server
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	srv := rpc.New("127.0.0.1:0", service.New(service.Options{}))
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		client: New(fmt.Sprintf("http://%s/", srv.Addr())),
		server: srv,
	}
}

func testParam() rpc.CreateParam {
	return rpc.CreateParam{
		Decimals:    9,
		Name:        "Client Coin",
		Symbol:      "CLC",
		Description: "Made by the client test.",
		IsFrozen:    true,
		Environment: "testnet",
	}
}

func TestClient_Create(t *testing.T) {
	env := setupTestEnv(t)

	res, err := env.client.Create(context.Background(), testParam())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Slug != "ClientCoin" {
		t.Errorf("slug = %q, want ClientCoin", res.Slug)
	}
	if !strings.Contains(res.TokenContent, "transfer::public_freeze_object") {
		t.Error("frozen token should freeze metadata")
	}
	if !strings.Contains(res.MoveToml, "framework/testnet") {
		t.Errorf("move_toml = %s", res.MoveToml)
	}
}

func TestClient_CreateThenVerify(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.client.Create(ctx, testParam())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := env.client.VerifyContent(ctx, created.TokenContent)
	if err != nil {
		t.Fatalf("verify_content: %v", err)
	}
	if !res.Authentic {
		t.Error("generated content should verify")
	}
	if len(res.Files) != 1 || res.Fingerprint == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_VerifyContent_Tampered(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.client.Create(ctx, testParam())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mutated := strings.Replace(created.TokenContent, `b"CLC"`, `b"EVIL"`, 1)

	_, err = env.client.VerifyContent(ctx, mutated)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if !rpcErr.IsTampered() {
		t.Errorf("code = %d, want tampered", rpcErr.Code)
	}
	if rpcErr.Kind != "tampered" {
		t.Errorf("kind = %q, want tampered", rpcErr.Kind)
	}
}

func TestClient_Create_Validation(t *testing.T) {
	env := setupTestEnv(t)

	p := testParam()
	p.Decimals = 0
	_, err := env.client.Create(context.Background(), p)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if !rpcErr.IsValidation() || rpcErr.Kind != "validation" {
		t.Errorf("error = %+v, want validation", rpcErr)
	}
}

func TestClient_VerifyURL_Rejected(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.client.VerifyURL(context.Background(), "http://github.com/acme/token")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != rpc.CodeSource || rpcErr.Transient {
		t.Errorf("error = %+v, want permanent source error", rpcErr)
	}
}

func TestClient_ServerInfo(t *testing.T) {
	env := setupTestEnv(t)

	info, err := env.client.ServerInfo(context.Background())
	if err != nil {
		t.Fatalf("server_info: %v", err)
	}
	if info.Version != config.Version {
		t.Errorf("version = %q, want %q", info.Version, config.Version)
	}
	if info.VerifyMode != "all" {
		t.Errorf("verify_mode = %q", info.VerifyMode)
	}
}

func TestClient_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	err := env.client.Call(context.Background(), "nope", nil, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != rpc.CodeMethodNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, rpc.CodeMethodNotFound)
	}
	if rpcErr.Kind != "" {
		t.Errorf("protocol error should carry no kind, got %q", rpcErr.Kind)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer slow.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := New(slow.URL).Call(ctx, "server_info", nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_HTTPStatus(t *testing.T) {
	forbidden := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer forbidden.Close()

	err := New(forbidden.URL).Call(context.Background(), "server_info", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewWithTimeout("http://127.0.0.1:1/", time.Second)
	if _, err := c.ServerInfo(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}
