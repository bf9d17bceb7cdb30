package checkin

import "context"

// ItemSource returns the current items for a subject (a driver id). A fetch
// always returns the full list; callers replace what they hold.
type ItemSource interface {
	Fetch(ctx context.Context, subjectID string) ([]Item, error)
}

// SubmissionSink accepts a check-in for a single item. A nil error means the
// remote confirmed the check-in.
type SubmissionSink interface {
	CheckIn(ctx context.Context, itemID ID) error
}

// SourceFunc adapts a function to ItemSource.
type SourceFunc func(ctx context.Context, subjectID string) ([]Item, error)

func (f SourceFunc) Fetch(ctx context.Context, subjectID string) ([]Item, error) {
	return f(ctx, subjectID)
}

// SinkFunc adapts a function to SubmissionSink.
type SinkFunc func(ctx context.Context, itemID ID) error

func (f SinkFunc) CheckIn(ctx context.Context, itemID ID) error {
	return f(ctx, itemID)
}
