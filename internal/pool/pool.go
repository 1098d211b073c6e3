package pool

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// ---------------------------------------------------------------
// Pool 구성 목적
//
// blob 직렬화는 제출마다 bytes.Buffer 와 (gzip 모드일 때) gzip.Writer 를
// 필요로 한다. 매번 새로 할당하는 대신 재사용해 GC 부담을 줄인다.
// ---------------------------------------------------------------

var (
	// BufferPool:
	//   - blob 직렬화 결과를 담는 임시 버퍼
	//   - 초기 용량 4KB (일반적인 로그 엔트리 JSON은 여기에 수용됨)
	BufferPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 4*1024))
		},
	}

	// GzipPool:
	//   - gzip.Writer 재사용 (매번 new 하면 비용 매우 큼)
	//   - BestSpeed 옵션: 저장 경로는 속도 우선
	GzipPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
			return w
		},
	}
)

// Pool에 되돌려줄 최대 버퍼 용량.
// 이보다 큰 버퍼는 Pool에 넣지 않고 GC에게 위임해 메모리 폭주를 예방.
const MaxBufferCap = 1 * 1024 * 1024 // 1MB

// PutBuffer:
//   - 직렬화 버퍼 반환
//   - 1MB 이하이면 풀에 재사용, 초과분은 풀로 돌리지 않음
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= MaxBufferCap {
		buf.Reset()
		BufferPool.Put(buf)
	}
}
