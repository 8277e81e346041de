package usecase

import "context"

// EventSink accepts change notifications emitted by the usecases. The
// default implementation journals them locally and a background drainer
// flushes them to the store, so emitting never blocks a request on the
// database.
type EventSink interface {
	Record(ctx context.Context, familyID, eventType string, payload any) error
}

// NopEventSink discards events. Used in tests and when the journal is
// disabled.
type NopEventSink struct{}

func (NopEventSink) Record(context.Context, string, string, any) error { return nil }

var _ EventSink = NopEventSink{}
