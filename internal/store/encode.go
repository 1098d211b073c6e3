// internal/store/encode.go
package store

import (
	"bytes"
	"fmt"
	"io"

	"logtracker/internal/model"
	"logtracker/internal/pool"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// BlobKey 는 엔트리 id 에서 blob 키를 결정적으로 유도한다.
//
//	<prefix>/<id>.json
//
// 키가 id 의 순수 함수이므로 같은 제출을 다시 쓰면 같은 객체를
// 덮어쓴다. 부분 실패(blob 성공 + document 실패) 후 호출자 재시도가
// orphan 을 추가로 만들지 않게 하는 장치다.
func BlobKey(prefix, id string) string {
	return fmt.Sprintf("%s/%s.json", prefix, id)
}

// EncodeEntry 는 엔트리 전체를 blob 본문으로 직렬화한다.
//
//   - 들여쓰기된 JSON (대시보드에서 presigned URL 로 바로 열어 볼 수 있는 형태)
//   - gzipped=true 면 gzip 압축 + ContentEncoding: "gzip"
//     (브라우저가 투명하게 해제하므로 조회 동작은 동일)
//
// 버퍼/압축기는 pool 에서 재사용하며, 결과는 호출자 소유의 새 slice 로
// 복사해 반환한다 (pool 버퍼를 그대로 반환하면 corruption 위험).
func EncodeEntry(entry model.LogEntry, gzipped bool) (Object, error) {
	buf := pool.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer pool.PutBuffer(buf)

	obj := Object{ContentType: "application/json"}

	if gzipped {
		gz := pool.GzipPool.Get().(*gzip.Writer)
		gz.Reset(buf)

		if err := encodeIndented(gz, entry); err != nil {
			_ = gz.Close()
			pool.GzipPool.Put(gz)
			return Object{}, err
		}
		// Close() 시 압축 스트림이 완성됨
		if err := gz.Close(); err != nil {
			pool.GzipPool.Put(gz)
			return Object{}, err
		}
		pool.GzipPool.Put(gz)
		obj.ContentEncoding = "gzip"
	} else {
		if err := encodeIndented(buf, entry); err != nil {
			return Object{}, err
		}
	}

	raw := buf.Bytes()
	obj.Body = make([]byte, len(raw))
	copy(obj.Body, raw)
	return obj, nil
}

func encodeIndented(w io.Writer, entry model.LogEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entry)
}
