package chains

import (
	"context"
	"log/slog"
	"sync"
)

// NoticeLevel classifies a user-facing notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarn    NoticeLevel = "warn"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, non-blocking message for the user, e.g. a failed
// balance read that was replaced with zero
type Notice struct {
	Level   NoticeLevel
	Chain   ChainID
	Message string
	Err     error
}

// Notifier delivers notices to whatever surface the caller renders
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// LogNotifier writes notices to a structured logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by logger (slog.Default if nil)
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	attrs := []any{"chain", notice.Chain.String()}
	if notice.Err != nil {
		attrs = append(attrs, "error", notice.Err)
	}

	switch notice.Level {
	case NoticeError:
		n.logger.ErrorContext(ctx, notice.Message, attrs...)
	case NoticeWarn:
		n.logger.WarnContext(ctx, notice.Message, attrs...)
	default:
		n.logger.InfoContext(ctx, notice.Message, attrs...)
	}
}

// NoticeRecorder keeps every notice in memory. Safe for concurrent use.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier
func (r *NoticeRecorder) Notify(_ context.Context, notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns a copy of the recorded notices
func (r *NoticeRecorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Reset drops all recorded notices
func (r *NoticeRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
