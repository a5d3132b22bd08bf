package proxy

import "testing"

func TestNewHTTPClient(t *testing.T) {
	direct, err := NewHTTPClient("")
	if err != nil || direct.Transport != nil {
		t.Fatalf("direct client = %+v, %v", direct, err)
	}

	socks, err := NewHTTPClient("127.0.0.1:1080")
	if err != nil {
		t.Fatalf("NewHTTPClient error = %v", err)
	}
	if socks.Transport == nil || socks.Timeout != clientTimeout {
		t.Fatalf("socks client = %+v", socks)
	}
}
