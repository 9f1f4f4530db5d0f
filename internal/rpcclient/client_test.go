package rpcclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacedlabs/space-cli/internal/report"
	"github.com/spacedlabs/space-cli/internal/rpc"
)

// rpcServer is a scripted JSON-RPC endpoint recording every request.
type rpcServer struct {
	*httptest.Server
	calls   atomic.Int32
	respond func(method string, params json.RawMessage) (interface{}, *report.RemoteError)

	mu       sync.Mutex
	lastBody []byte
}

func (s *rpcServer) lastParams() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody
}

func newRPCServer(t *testing.T, respond func(method string, params json.RawMessage) (interface{}, *report.RemoteError)) *rpcServer {
	t.Helper()
	s := &rpcServer{respond: respond}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)

		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     int             `json:"id"`
		}
		body := json.NewDecoder(r.Body)
		if err := body.Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		s.mu.Lock()
		s.lastBody = req.Params
		s.mu.Unlock()

		result, callErr := s.respond(req.Method, req.Params)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if callErr != nil {
			resp["error"] = map[string]interface{}{"code": callErr.Code, "message": callErr.Message}
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(s.Close)
	return s
}

func TestCallSuccess(t *testing.T) {
	srv := newRPCServer(t, func(method string, _ json.RawMessage) (interface{}, *report.RemoteError) {
		if method != rpc.MethodEstimateBid {
			t.Errorf("method = %q, want %q", method, rpc.MethodEstimateBid)
		}
		return uint64(5000), nil
	})

	client := New(srv.URL)
	amount, err := client.EstimateBid(0)
	if err != nil {
		t.Fatalf("EstimateBid: %v", err)
	}
	if amount != 5000 {
		t.Fatalf("amount = %d, want 5000", amount)
	}
	if got := srv.calls.Load(); got != 1 {
		t.Fatalf("round trips = %d, want exactly 1", got)
	}
}

func TestCallRemoteRejection(t *testing.T) {
	srv := newRPCServer(t, func(string, json.RawMessage) (interface{}, *report.RemoteError) {
		return nil, &report.RemoteError{Code: 64, Message: "insufficient funds"}
	})

	client := New(srv.URL)
	_, err := client.WalletGetBalance("default")
	if err == nil {
		t.Fatal("expected error")
	}

	var remote *report.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error type %T, want *report.RemoteError", err)
	}
	if remote.Code != 64 || remote.Message != "insufficient funds" {
		t.Fatalf("got %+v", remote)
	}

	rep := report.Classify(err)
	if rep.Category != report.RemoteRejected {
		t.Fatalf("category = %s, want remote_rejected", rep.Category)
	}
	if rep.Code != 64 || rep.Message != "insufficient funds" {
		t.Fatalf("classified %+v", rep)
	}
}

func TestCallMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.GetServerInfo()
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.ProtocolDecode {
		t.Fatalf("category = %s, want protocol_decode", rep.Category)
	}
}

func TestCallMalformedResult(t *testing.T) {
	srv := newRPCServer(t, func(string, json.RawMessage) (interface{}, *report.RemoteError) {
		return "not a number", nil
	})

	client := New(srv.URL)
	_, err := client.EstimateBid(0)
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.ProtocolDecode {
		t.Fatalf("category = %s, want protocol_decode", rep.Category)
	}
}

func TestCallUnreachableEndpoint(t *testing.T) {
	// Reserved port with nothing listening.
	client := New("http://127.0.0.1:1")
	err := client.WalletLoad("default")
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.Transport {
		t.Fatalf("category = %s, want transport", rep.Category)
	}
}

func TestCallTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	client := NewWithTimeout(srv.URL, 50*time.Millisecond)
	err := client.WalletLoad("default")
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.RequestTimeout {
		t.Fatalf("category = %s, want request_timeout", rep.Category)
	}
}

func TestSlotLimit(t *testing.T) {
	client := New("http://127.0.0.1:1")
	client.inFlight.Add(1) // simulate an in-flight request

	err := client.WalletLoad("default")
	if !errors.Is(err, report.ErrSlotsExceeded) {
		t.Fatalf("err = %v, want slots exceeded", err)
	}
	if rep := report.Classify(err); rep.Category != report.CapacityExceeded {
		t.Fatalf("category = %s, want capacity_exceeded", rep.Category)
	}
}

func TestSendRequestParamShape(t *testing.T) {
	srv := newRPCServer(t, func(method string, _ json.RawMessage) (interface{}, *report.RemoteError) {
		if method != rpc.MethodWalletSendRequest {
			t.Errorf("method = %q, want %q", method, rpc.MethodWalletSendRequest)
		}
		return map[string]string{"txid": "abc"}, nil
	})

	client := New(srv.URL)
	feeRate := uint64(5)
	req := rpc.NewOpen("foo", 1000)
	_, err := client.WalletSendRequest("default", rpc.TxBuilder{
		Requests: []rpc.WalletRequest{req},
		FeeRate:  &feeRate,
	})
	if err != nil {
		t.Fatalf("WalletSendRequest: %v", err)
	}

	var param struct {
		Wallet  string `json:"wallet"`
		Request struct {
			Requests []map[string]interface{} `json:"requests"`
			FeeRate  uint64                   `json:"fee_rate"`
		} `json:"request"`
	}
	if err := json.Unmarshal(srv.lastParams(), &param); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if param.Wallet != "default" {
		t.Fatalf("wallet = %q", param.Wallet)
	}
	if len(param.Request.Requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(param.Request.Requests))
	}
	op := param.Request.Requests[0]
	if op["request"] != "open" || op["name"] != "@foo" || op["amount"] != float64(1000) {
		t.Fatalf("unexpected operation on the wire: %v", op)
	}
	if param.Request.FeeRate != 5 {
		t.Fatalf("fee_rate = %d, want 5", param.Request.FeeRate)
	}
}
