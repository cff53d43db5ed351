package middleware

import (
	"context"
	"errors"
	"testing"

	"kase/internal/app/commands"
	"kase/internal/app/policies"
	"kase/internal/domain/checkout"
)

type recordingStore struct {
	items map[string]IdempotencyRecord
}

func newRecordingStore() *recordingStore {
	return &recordingStore{items: make(map[string]IdempotencyRecord)}
}

func (s *recordingStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *recordingStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.items[rec.Key] = rec
	return nil
}

type guardedCommand struct {
	key string
}

func (c guardedCommand) Key() string { return "test.guarded" }

func (c guardedCommand) IdempotencyKey() string { return c.key }

func (c guardedCommand) ResultPrototype() any { return &guardedResult{} }

type guardedResult struct {
	Value string `json:"value"`
}

type countingBus struct {
	calls  int
	result any
	err    error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	return b.result, b.err
}

func TestIdempotencyReplaysResultWithoutRedispatch(t *testing.T) {
	inner := &countingBus{result: &guardedResult{Value: "done"}}
	bus := ChainCommands(inner, Idempotency(newRecordingStore(), nil))
	cmd := guardedCommand{key: "key-1"}

	first, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("handler calls = %d, want 1", inner.calls)
	}
	if first.(*guardedResult).Value != "done" || second.(*guardedResult).Value != "done" {
		t.Errorf("replayed result = %+v, want Value done", second)
	}
}

func TestIdempotencyReplayKeepsBookingErrorType(t *testing.T) {
	inner := &countingBus{err: &policies.BookingError{Message: "Listing unavailable"}}
	bus := ChainCommands(inner, Idempotency(newRecordingStore(), nil))
	cmd := guardedCommand{key: "key-1"}

	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("first dispatch should fail")
	}
	_, err := bus.Dispatch(context.Background(), cmd)

	var apiErr *policies.BookingError
	if !errors.As(err, &apiErr) {
		t.Fatalf("replayed error = %T (%v), want *policies.BookingError", err, err)
	}
	if apiErr.Message != "Listing unavailable" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Listing unavailable")
	}
	if inner.calls != 1 {
		t.Errorf("handler calls = %d, want 1", inner.calls)
	}
}

func TestIdempotencyReplayKeepsValidationViolations(t *testing.T) {
	inner := &countingBus{err: &checkout.ValidationError{
		Violations: []checkout.FieldError{{Field: "dates", Message: "select valid dates"}},
	}}
	bus := ChainCommands(inner, Idempotency(newRecordingStore(), nil))
	cmd := guardedCommand{key: "key-1"}

	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("first dispatch should fail")
	}
	_, err := bus.Dispatch(context.Background(), cmd)

	ve, ok := checkout.AsValidation(err)
	if !ok {
		t.Fatalf("replayed error = %T (%v), want *checkout.ValidationError", err, err)
	}
	if len(ve.Violations) != 1 || ve.Violations[0].Field != "dates" {
		t.Errorf("Violations = %+v, want the dates violation", ve.Violations)
	}
}

func TestIdempotencyEmptyKeyBypassesCache(t *testing.T) {
	inner := &countingBus{result: &guardedResult{Value: "done"}}
	bus := ChainCommands(inner, Idempotency(newRecordingStore(), nil))
	cmd := guardedCommand{}

	for i := 0; i < 2; i++ {
		if _, err := bus.Dispatch(context.Background(), cmd); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("handler calls = %d, want 2", inner.calls)
	}
}
