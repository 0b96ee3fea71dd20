package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewUpstreamClient_Timeout はタイムアウト設定が反映されることをテストする。
func TestNewUpstreamClient_Timeout(t *testing.T) {
	for _, protect := range []bool{true, false} {
		client := NewUpstreamClient(3*time.Second, protect)
		if client == nil {
			t.Fatalf("protect=%v: NewUpstreamClient() returned nil", protect)
		}
		if client.Timeout != 3*time.Second {
			t.Errorf("protect=%v: Timeout = %v, want 3s", protect, client.Timeout)
		}
	}
}

// TestNewUpstreamClient_ProtectedBlocksLoopback は保護ありのクライアントがループバックへの接続を拒否することをテストする。
// httptestサーバーは127.0.0.1で起動される。
func TestNewUpstreamClient_ProtectedBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewUpstreamClient(5*time.Second, true)
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Fatal("保護ありのクライアントは独自のTransportを持つべき")
	}

	resp, err := client.Get(ts.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("ループバックへの接続は拒否されるべき")
	}
}

// TestNewUpstreamClient_UnprotectedAllowsLoopback は保護なしのクライアントがローカルのサーバーに接続できることをテストする。
func TestNewUpstreamClient_UnprotectedAllowsLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewUpstreamClient(5*time.Second, false)
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("保護なしのクライアントは接続できるべき: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		protect bool
		wantErr bool
	}{
		{"公式API", "https://hacker-news.firebaseio.com/v0", true, false},
		{"http", "http://example.com/v0", true, false},
		{"空文字列", "", true, true},
		{"スキームなし", "hacker-news.firebaseio.com/v0", true, true},
		{"ftp", "ftp://example.com", true, true},
		{"javascript", "javascript:alert(1)", false, true},
		{"ホストなし", "https:///v0", true, true},
		{"プライベートIP", "http://10.0.0.1/v0", true, true},
		{"ループバック", "http://127.0.0.1:8080", true, true},
		{"メタデータIP", "http://169.254.169.254/latest", true, true},
		{"IPv6ループバック", "http://[::1]/", true, true},
		{"ゼロアドレス", "http://0.0.0.0/", true, true},
		{"localhost", "http://LOCALHOST:9000", true, true},
		{"公開IP", "http://93.184.216.34/", true, false},
		{"保護なしのループバック", "http://127.0.0.1:8080", false, false},
		{"保護なしのlocalhost", "http://localhost:9000/v0", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url, tt.protect)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBaseURL(%q, %v) error = %v, wantErr %v", tt.url, tt.protect, err, tt.wantErr)
			}
		})
	}
}
