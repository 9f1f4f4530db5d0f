package txbuild

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/spacedlabs/space-cli/internal/report"
	"github.com/spacedlabs/space-cli/internal/rpc"
	"github.com/spacedlabs/space-cli/internal/rpcclient"
)

// testService counts submissions and captures the last builder payload.
type testService struct {
	*httptest.Server
	calls atomic.Int32

	mu   sync.Mutex
	last rpc.SendRequestParam
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	s := &testService{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)

		var req struct {
			Params rpc.SendRequestParam `json:"params"`
			ID     int                  `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		s.mu.Lock()
		s.last = req.Params
		s.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]string{"txid": "deadbeef"},
		})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *testService) lastParam() rpc.SendRequestParam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func newBuilder(t *testing.T, srv *testService, opts Options) *Builder {
	t.Helper()
	return New(rpcclient.New(srv.URL), "default", opts)
}

func TestSubmitNothingFailsLocally(t *testing.T) {
	srv := newTestService(t)
	b := newBuilder(t, srv, Options{})

	_, err := b.Submit(nil, nil, nil, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.LocalValidation {
		t.Fatalf("category = %s, want local_validation", rep.Category)
	}
	if got := srv.calls.Load(); got != 0 {
		t.Fatalf("network calls = %d, want 0", got)
	}
}

func TestSubmitZeroFeeRateFailsLocally(t *testing.T) {
	srv := newTestService(t)
	b := newBuilder(t, srv, Options{})

	zero := uint64(0)
	req := rpc.NewOpen("foo", 1000)
	_, err := b.Submit(&req, nil, &zero, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.LocalValidation {
		t.Fatalf("category = %s, want local_validation", rep.Category)
	}
	if got := srv.calls.Load(); got != 0 {
		t.Fatalf("network calls = %d, want 0", got)
	}
}

func TestSubmitInvalidRequestFailsLocally(t *testing.T) {
	srv := newTestService(t)
	b := newBuilder(t, srv, Options{})

	req := rpc.WalletRequest{Transfer: &rpc.TransferParams{To: "@dest"}}
	_, err := b.Submit(&req, nil, nil, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if rep := report.Classify(err); rep.Category != report.LocalValidation {
		t.Fatalf("category = %s, want local_validation", rep.Category)
	}
	if got := srv.calls.Load(); got != 0 {
		t.Fatalf("network calls = %d, want 0", got)
	}
}

func TestSubmitOpenSingleCall(t *testing.T) {
	srv := newTestService(t)
	b := newBuilder(t, srv, Options{})

	feeRate := uint64(5)
	req := rpc.NewOpen("foo", 1000)
	result, err := b.Submit(&req, nil, &feeRate, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(result) == 0 {
		t.Fatal("empty result")
	}
	if got := srv.calls.Load(); got != 1 {
		t.Fatalf("network calls = %d, want exactly 1", got)
	}

	param := srv.lastParam()
	if param.Wallet != "default" {
		t.Fatalf("wallet = %q", param.Wallet)
	}
	if len(param.Request.Requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(param.Request.Requests))
	}
	op := param.Request.Requests[0]
	if op.Open == nil || op.Open.Name != "@foo" || op.Open.Amount != 1000 {
		t.Fatalf("unexpected operation: %+v", op)
	}
	if param.Request.FeeRate == nil || *param.Request.FeeRate != 5 {
		t.Fatalf("fee_rate = %v, want 5", param.Request.FeeRate)
	}
}

func TestSubmitBidoutsOnly(t *testing.T) {
	srv := newTestService(t)
	b := newBuilder(t, srv, Options{})

	pairs := uint8(3)
	_, err := b.Submit(nil, &pairs, nil, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := srv.calls.Load(); got != 1 {
		t.Fatalf("network calls = %d, want 1", got)
	}

	param := srv.lastParam()
	if len(param.Request.Requests) != 0 {
		t.Fatalf("requests = %d, want 0", len(param.Request.Requests))
	}
	if param.Request.Bidouts == nil || *param.Request.Bidouts != 3 {
		t.Fatalf("bidouts = %v, want 3", param.Request.Bidouts)
	}
}

func TestSubmitForwardsSessionDefaults(t *testing.T) {
	srv := newTestService(t)
	dust := btcutil.Amount(660)
	b := newBuilder(t, srv, Options{Dust: &dust, Force: true, SkipTxCheck: true})

	req := rpc.NewBid("foo", 2000)
	if _, err := b.Submit(&req, nil, nil, true); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	param := srv.lastParam()
	if param.Request.Dust == nil || *param.Request.Dust != 660 {
		t.Fatalf("dust = %v, want 660", param.Request.Dust)
	}
	if !param.Request.Force || !param.Request.SkipTxCheck || !param.Request.ConfirmedOnly {
		t.Fatalf("flags not forwarded: %+v", param.Request)
	}
}

func TestParseFeeRate(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		absent  bool
		wantErr bool
	}{
		{in: "", absent: true},
		{in: "5", want: 5},
		{in: "250", want: 250},
		{in: "0", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "1.5", wantErr: true},
	}
	for _, tt := range tests {
		rate, err := ParseFeeRate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFeeRate(%q) succeeded, want error", tt.in)
			} else if rep := report.Classify(err); rep.Category != report.LocalValidation {
				t.Errorf("ParseFeeRate(%q) category = %s, want local_validation", tt.in, rep.Category)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFeeRate(%q): %v", tt.in, err)
			continue
		}
		if tt.absent {
			if rate != nil {
				t.Errorf("ParseFeeRate(%q) = %v, want nil", tt.in, *rate)
			}
			continue
		}
		if rate == nil || *rate != tt.want {
			t.Errorf("ParseFeeRate(%q) = %v, want %d", tt.in, rate, tt.want)
		}
	}
}
