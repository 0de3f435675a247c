package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Klingon-tech/sui-tokengen/internal/service"
)

// FuzzRPCRequestUnmarshal tests that arbitrary JSON does not panic
// when parsed as a JSON-RPC 2.0 request.
func FuzzRPCRequestUnmarshal(f *testing.F) {
	f.Add([]byte(`{"jsonrpc":"2.0","method":"server_info","params":null,"id":1}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"verify_url","params":{"url":"abc"},"id":"test"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"method":"","params":[]}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"create","params":[1,2,3],"id":999}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		_ = req.Method
		_ = req.ID
	})
}

// FuzzVerifyContent feeds arbitrary module text through the full
// verify_content path; it must always produce a well-formed response.
func FuzzVerifyContent(f *testing.F) {
	f.Add("module a::a {}")
	f.Add("witness b\" b\", option::none(),")
	f.Add("coin::create_currency(witness, 9, b\"X\", b\"Y Z\", b\"\", option::none(), ctx);")

	srv := New("127.0.0.1:0", service.New(service.Options{}))
	f.Fuzz(func(t *testing.T, content string) {
		body, _ := json.Marshal(Request{
			JSONRPC: "2.0",
			Method:  "verify_content",
			Params:  VerifyContentParam{Content: content},
			ID:      1,
		})
		resp := srv.process(context.Background(), body)
		if resp.Error == nil && resp.Result == nil {
			t.Fatal("response has neither result nor error")
		}
	})
}
