package geo

import (
	"testing"

	"logtracker/internal/model"
)

// sentinel 전용 모드(Resolver{db: nil})에서도 Lookup 은 항상 성공해야 한다.
func TestLookupSentinelMode(t *testing.T) {
	r := &Resolver{}
	want := model.SentinelLocation()

	cases := []string{
		"127.0.0.1",    // loopback
		"10.0.1.24",    // private
		"192.168.0.7",  // private
		"172.16.5.1",   // private
		"169.254.1.1",  // link-local
		"not-an-ip",    // 파싱 불가
		"",             // 빈 값
		"8.8.8.8",      // public 이지만 DB 없음
		"2404:6800::1", // public IPv6, DB 없음
	}

	for _, ipStr := range cases {
		if loc := r.Lookup(ipStr); loc != want {
			t.Errorf("Lookup(%q) = %+v, want sentinel", ipStr, loc)
		}
	}
}

func TestIsPublicIP(t *testing.T) {
	if isPublicIP(safeParseIP("192.168.1.1")) {
		t.Error("192.168.1.1 classified public")
	}
	if isPublicIP(safeParseIP("::1")) {
		t.Error("::1 classified public")
	}
	if !isPublicIP(safeParseIP("8.8.8.8")) {
		t.Error("8.8.8.8 classified non-public")
	}
	if isPublicIP(nil) {
		t.Error("nil classified public")
	}
}
