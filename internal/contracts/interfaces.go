package contracts

import (
	"context"
	"time"
)

// SourceAdapter 지표 원시값 수집기
// 구현체: FRED API, Yahoo chart API, HTML 스크레이퍼, synthetic 생성기
type SourceAdapter interface {
	// Fetch returns the raw value of an indicator for a date.
	// 재시도 소진 후에는 에러를 반환하며, 절대 무한 블로킹하지 않음.
	Fetch(ctx context.Context, code string, date time.Time) (float64, error)

	// Kind returns the source tag stored with fetched values.
	Kind() SourceKind
}

// Notifier 경보 이벤트 발송 채널
// 엔진은 전달 채널의 구체적인 내용을 알지 못함
type Notifier interface {
	// Name returns the channel name for logging.
	Name() string

	// Notify delivers an alert event. 실패는 로깅 대상일 뿐 실행을 중단하지 않음.
	Notify(ctx context.Context, event AlertEvent) error
}
