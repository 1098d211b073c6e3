// internal/geo/resolver.go
package geo

import (
	"net"
	"strings"

	"logtracker/internal/model"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// Resolver
// ------------------------------------------------------------
// IP 주소 → 대략적인 지역 정보를 돌려주는 순수 조회 컴포넌트.
//
//   - 네트워크 호출 없음: 로컬 MaxMind mmdb 파일만 사용한다.
//   - 실패 없음: 사설/루프백/미등록 IP 는 전부 sentinel 로 수렴한다.
//   - mmdb 파일이 설정되지 않았거나 열리지 않으면 sentinel 전용
//     모드로 동작한다 (서버 기동을 막지 않는다).
type Resolver struct {
	db *geoip2.Reader // nil 이면 sentinel 전용 모드
}

// Open 은 mmdb 경로로 Resolver 를 생성한다.
// path 가 빈 문자열이거나 파일을 열 수 없으면 경고만 남기고
// sentinel 전용 Resolver 를 반환한다.
func Open(path string) *Resolver {
	if path == "" {
		log.Warn().Msg("GEOIP_DB not set, location lookup disabled")
		return &Resolver{}
	}

	db, err := geoip2.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("geoip db open failed, location lookup disabled")
		return &Resolver{}
	}
	return &Resolver{db: db}
}

// Close 는 mmdb 핸들을 해제한다. sentinel 전용 모드에서는 no-op.
func (r *Resolver) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}

// Lookup 은 IP 문자열을 지역 정보로 변환한다.
//
// sentinel 로 빠지는 경우:
//   - 파싱 불가 / 빈 IP
//   - 사설망, 루프백, 링크로컬 (DB 에 존재하지 않음)
//   - DB 미탑재 / 조회 실패 / country 미등록
func (r *Resolver) Lookup(ipStr string) model.Location {
	ip := safeParseIP(ipStr)
	if !isPublicIP(ip) {
		return model.SentinelLocation()
	}

	if r.db == nil {
		return model.SentinelLocation()
	}

	rec, err := r.db.City(ip)
	if err != nil || rec == nil || rec.Country.IsoCode == "" {
		return model.SentinelLocation()
	}

	loc := model.Location{
		Country:  rec.Country.IsoCode,
		Region:   "N/A",
		City:     rec.City.Names["en"],
		Timezone: rec.Location.TimeZone,
	}
	if len(rec.Subdivisions) > 0 && rec.Subdivisions[0].IsoCode != "" {
		loc.Region = rec.Subdivisions[0].IsoCode
	}
	if loc.City == "" {
		loc.City = "N/A"
	}
	if loc.Timezone == "" {
		loc.Timezone = "UTC"
	}
	return loc
}

// isPublicIP:
//   - private / loopback / link-local 등이 아닌 경우 true
//   - 내부 IP 는 mmdb 에 없으므로 조회 전에 걸러낸다
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
