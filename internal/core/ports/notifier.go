package ports

import (
	"context"

	"github.com/realspark/console-gateway/internal/core/domain"
)

// Notifier normalizes heterogeneous failure and success payloads into
// displayable notices. Implementations must never panic, even when the
// notification sink is unavailable.
type Notifier interface {
	ReportError(source string, v any) domain.Notice
	ReportSuccess(source string, v any) domain.Notice
}

// NoticeSink receives normalized notices for asynchronous delivery
// (persistence, metrics). Publish must not block the caller indefinitely.
type NoticeSink interface {
	Publish(notice domain.Notice)
}

// ActivityRepository persists the console activity trail: notices, guard
// denials, session lifecycle events.
type ActivityRepository interface {
	RecordNotice(ctx context.Context, notice *domain.Notice) error
	RecentNotices(ctx context.Context, limit int64) ([]domain.Notice, error)
}
