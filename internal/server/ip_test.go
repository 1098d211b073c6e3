package server

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	// XFF 의 첫 public IP 가 우선
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.1.24, 203.0.113.1")
	if got := clientIP(r); got != "203.0.113.1" {
		t.Errorf("xff: got %q", got)
	}

	// XFF 전부 internal → RemoteAddr host 사용
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.1.24")
	r.RemoteAddr = "192.168.0.5:51234"
	if got := clientIP(r); got != "192.168.0.5" {
		t.Errorf("remoteaddr fallback: got %q", got)
	}

	// RemoteAddr 가 public 이면 그대로
	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:443"
	if got := clientIP(r); got != "198.51.100.7" {
		t.Errorf("public remoteaddr: got %q", got)
	}

	// 아무것도 파싱 불가 → "127.0.0.1"
	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "garbage"
	if got := clientIP(r); got != "127.0.0.1" {
		t.Errorf("garbage remoteaddr: got %q", got)
	}
}
