// internal/ingest/errors.go
package ingest

import "fmt"

// ValidationError
// ------------------------------------------------------------
// 필수 입력 누락. 호출자 잘못이므로 재시도 의미 없음 (4xx 계열).
// 어떤 저장소에도 side effect 를 남기기 전에 발생해야 한다.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// 저장소 식별자. PersistenceError.Store 에 들어간다.
const (
	StoreBlob     = "blob"
	StoreDocument = "document"
)

// PersistenceError
// ------------------------------------------------------------
// 저장소 쓰기 실패 (5xx 계열). 내부 재시도 없이 그대로 보고한다.
//
// Store == StoreDocument 인 경우 blob 쓰기는 이미 성공한 뒤이므로
// 조회 불가능한 orphan blob 이 남아 있다는 뜻이다. blob 키가
// 엔트리 id 에서 결정적으로 유도되므로, 호출자가 제출 전체를
// 재시도하면 새 id 의 새 blob 이 생길 뿐 orphan 이 복구되지는 않는다
// (정합성 복원은 명시적으로 범위 밖).
type PersistenceError struct {
	Store string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s store write failed: %v", e.Store, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
