// internal/stats/stats.go
package stats

import (
	"sort"

	"logtracker/internal/model"
)

// Summary 는 엔트리 집합에서 유도되는 소비자용 집계다.
// 대시보드의 카드/차트가 쓰는 값이며, 어디에도 저장되지 않는다.
type Summary struct {
	Total int `json:"total"`

	// 정규화된 레벨별 카운트. 인식 불가 레벨은 전부 unknown 으로 합산.
	Levels map[string]int `json:"levels"`

	// 시간순 버킷 (시 단위, UTC). timestamp 파싱 불가 엔트리는
	// 버킷에 넣지 않고 Total 에만 반영한다.
	Buckets []Bucket `json:"buckets"`
}

// Bucket 은 1시간 구간의 엔트리 수다.
type Bucket struct {
	Hour  string `json:"hour"` // "2025-06-01T10" (UTC)
	Count int    `json:"count"`
}

const bucketLayout = "2006-01-02T15"

// Aggregate 는 엔트리 목록으로부터 Summary 를 계산한다.
// 입력 순서에 의존하지 않으며 입력을 변경하지 않는다.
func Aggregate(entries []model.LogEntry) Summary {
	s := Summary{
		Total: len(entries),
		Levels: map[string]int{
			string(model.LevelInfo):    0,
			string(model.LevelWarn):    0,
			string(model.LevelError):   0,
			string(model.LevelUnknown): 0,
		},
	}

	byHour := map[string]int{}
	for _, en := range entries {
		// Normalize 를 거치므로 case 누락 없이 닫힌 집합으로 떨어진다
		switch model.Level(en.Level).Normalize() {
		case model.LevelInfo:
			s.Levels[string(model.LevelInfo)]++
		case model.LevelWarn:
			s.Levels[string(model.LevelWarn)]++
		case model.LevelError:
			s.Levels[string(model.LevelError)]++
		default:
			s.Levels[string(model.LevelUnknown)]++
		}

		t := en.Time()
		if t.Unix() == 0 {
			continue // timestamp 불명 → 버킷 제외
		}
		byHour[t.UTC().Format(bucketLayout)]++
	}

	s.Buckets = make([]Bucket, 0, len(byHour))
	for hour, count := range byHour {
		s.Buckets = append(s.Buckets, Bucket{Hour: hour, Count: count})
	}
	sort.Slice(s.Buckets, func(i, j int) bool {
		return s.Buckets[i].Hour < s.Buckets[j].Hour
	})

	return s
}
