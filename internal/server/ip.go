package server

import (
	"net"
	"net/http"
	"strings"
)

// ------------------------------------------------------------
// IP Utility Functions
//
// 서버는 보통 ALB 뒤에 배치되므로 RemoteAddr 만으로는
// "실제 사용자 IP"를 알 수 없다. 아래 로직은 표준 헤더 기반으로
// 가장 신뢰할 수 있는 클라이언트 IP를 추출한다.
//
// 지역 조회(enrich)의 입력이 되므로, public IP 를 찾지 못해도
// 빈 값 대신 관측된 주소를 그대로 돌려준다 (로컬 개발 환경에서도
// 엔트리의 ip 필드는 항상 채워져야 한다).
// ------------------------------------------------------------

// isPublicIP:
//   - private / loopback / link-local 등이 아닌 경우 true
//   - X-Forwarded-For에서 내부 IP를 제외하기 위해 필요
func isPublicIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	// IPv4 private ranges: 10/8, 172.16/12, 192.168/16
	if ip.IsPrivate() {
		return false
	}
	// Loopback, link-local 등 제외
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}
	return true
}

// safeParseIP:
//   - 공백/빈 값 대응
//   - 잘못된 값이 들어오면 nil 반환
func safeParseIP(s string) net.IP {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return net.ParseIP(s)
}

// clientIP:
//
// "실제 사용자(브라우저)의 IP"를 추출.
// 우선순위:
//  1. X-Forwarded-For → 첫 번째 public IP
//  2. RemoteAddr 의 public IP
//  3. RemoteAddr host 그대로 (사설/루프백 포함)
func clientIP(r *http.Request) string {

	// 1) X-Forwarded-For (ALB)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// 예: "203.0.113.1, 10.0.1.24"
		parts := strings.Split(xff, ",")
		for _, part := range parts {
			ip := safeParseIP(part)
			if isPublicIP(ip) {
				return ip.String()
			}
		}
	}

	// 2) RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := safeParseIP(host); ip != nil {
		return ip.String()
	}

	// 3) 최후 fallback
	return "127.0.0.1"
}
