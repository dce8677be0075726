package source

import (
	"errors"
	"fmt"
)

// ErrFetchFailed 어댑터가 재시도를 소진하고 값을 얻지 못함
// 날짜 단위로 격리되는 비치명 오류 — 백필/평가는 해당 날짜만 건너뜀
var ErrFetchFailed = errors.New("source fetch failed")

// ErrUnsupportedDate 어댑터가 해당 날짜의 데이터를 제공할 수 없음
// (예: 현재가 스크레이퍼에 과거 날짜 요청)
var ErrUnsupportedDate = errors.New("date not supported by source")

// fetchErr wraps an adapter failure with its cause
func fetchErr(kind, code string, cause error) error {
	return fmt.Errorf("%w: %s adapter for %s: %v", ErrFetchFailed, kind, code, cause)
}
