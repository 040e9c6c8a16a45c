package tradier

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func withTestServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	old := baseURL
	baseURL = server.URL
	t.Cleanup(func() {
		baseURL = old
		server.Close()
	})
}

func TestGetDailyHistory(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/v1/markets/history") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "SPY" {
			t.Errorf("symbol = %q, want SPY", got)
		}
		fmt.Fprint(w, `{"history":{"day":[
			{"date":"2024-01-02","open":100,"high":102,"low":99,"close":101,"volume":1000},
			{"date":"2024-01-03","open":101,"high":103,"low":100,"close":102.5,"volume":1100}
		]}}`)
	})

	history, err := GetDailyHistory("SPY", "2024-01-01", "2024-01-05", "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	days := history.History.Day
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[1].Close != 102.5 {
		t.Errorf("last close = %v, want 102.5", days[1].Close)
	}
	if days[0].Date != "2024-01-02" {
		t.Errorf("first date = %q, want 2024-01-02", days[0].Date)
	}
}

func TestGetDailyHistoryServerError(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	if _, err := GetDailyHistory("SPY", "2024-01-01", "2024-01-05", "test-token"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestGetDailyHistoryMalformedBody(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"history":`)
	})

	if _, err := GetDailyHistory("SPY", "2024-01-01", "2024-01-05", "test-token"); err == nil {
		t.Fatal("expected error on truncated body")
	}
}

func TestGetOptionChainsFiltersByDTE(t *testing.T) {
	near := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	far := time.Now().AddDate(0, 0, 200).Format("2006-01-02")

	var chainRequests []string
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/markets/options/expirations"):
			fmt.Fprintf(w, `{"expirations":{"expiration":[
				{"date":"%s","contract_size":100,"expiration_type":"standard","strikes":{"strike":[95,100,105]}},
				{"date":"%s","contract_size":100,"expiration_type":"standard","strikes":{"strike":[95,100,105]}}
			]}}`, near, far)
		case strings.HasPrefix(r.URL.Path, "/v1/markets/options/chains"):
			chainRequests = append(chainRequests, r.URL.Query().Get("expiration"))
			fmt.Fprintf(w, `{"expiration_date":"%s","options":{"option":[
				{"symbol":"SPY240101C00100000","option_type":"call","strike":100,"bid":4.9,"ask":5.1,
				 "greeks":{"delta":0.55,"mid_iv":0.21}},
				{"symbol":"SPY240101P00100000","option_type":"put","strike":100,"bid":3.0,"ask":3.2,
				 "greeks":{"delta":-0.45,"mid_iv":0.22}}
			]}}`, near)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	chains, err := GetOptionChains("SPY", "test-token", 5, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chains) != 1 {
		t.Fatalf("got %d chains, want 1 (far expiration filtered out)", len(chains))
	}
	if len(chainRequests) != 1 || chainRequests[0] != near {
		t.Errorf("chain requests = %v, want only %s", chainRequests, near)
	}

	chain, ok := chains[near]
	if !ok {
		t.Fatalf("missing chain for %s", near)
	}
	options := chain.Options.Option
	if len(options) != 2 {
		t.Fatalf("got %d options, want 2", len(options))
	}
	if options[0].Greeks.MidIv != 0.21 {
		t.Errorf("mid IV = %v, want 0.21", options[0].Greeks.MidIv)
	}
	if options[1].OptionType != "put" {
		t.Errorf("option type = %q, want put", options[1].OptionType)
	}
}

func TestGetExpirationsParsesStrikes(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"expirations":{"expiration":[
			{"date":"2030-06-21","contract_size":100,"expiration_type":"standard","strikes":{"strike":[90,95,100]}}
		]}}`)
	})

	expirations, err := GetExpirations("SPY", "test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exps := expirations.Expirations.Expiration
	if len(exps) != 1 {
		t.Fatalf("got %d expirations, want 1", len(exps))
	}
	if got := exps[0].Strikes.Strike; len(got) != 3 || got[0] != 90 {
		t.Errorf("strikes = %v, want [90 95 100]", got)
	}
}
