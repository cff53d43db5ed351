package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"kase/internal/app/commands"
	"kase/internal/app/policies"
	"kase/internal/domain/checkout"
)

// IdempotentCommand must be implemented by commands that want idempotency guarantees.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // should match the handler result type
}

// IdempotencyRecord stores one resolved dispatch. Failures keep their kind
// so a replay surfaces the same error type the first attempt produced, not
// a flattened message.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

// Error kinds a replay can reconstruct. Anything else comes back as an
// opaque error carrying the recorded message.
const (
	ErrorKindBookingAPI = "booking_api"
	ErrorKindValidation = "validation"
)

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var (
	errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")
)

func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Error != "" || rec.ErrorKind != "" {
					return nil, replayError(rec)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:        key,
				OccurredAt: time.Now().UTC(),
			}
			if err != nil {
				record.Error = err.Error()
				record.ErrorKind, record.Payload = encodeError(err)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

// encodeError classifies errors whose type matters downstream: the HTTP
// layer maps booking API rejections and validation failures to distinct
// statuses, so a replay must not collapse them into a plain error.
func encodeError(err error) (kind string, payload []byte) {
	var apiErr *policies.BookingError
	if errors.As(err, &apiErr) {
		payload, _ = json.Marshal(apiErr.Message)
		return ErrorKindBookingAPI, payload
	}
	if ve, ok := checkout.AsValidation(err); ok {
		payload, _ = json.Marshal(ve.Violations)
		return ErrorKindValidation, payload
	}
	return "", nil
}

func replayError(rec IdempotencyRecord) error {
	switch rec.ErrorKind {
	case ErrorKindBookingAPI:
		var message string
		if err := json.Unmarshal(rec.Payload, &message); err == nil {
			return &policies.BookingError{Message: message}
		}
		return &policies.BookingError{Message: rec.Error}
	case ErrorKindValidation:
		var violations []checkout.FieldError
		if err := json.Unmarshal(rec.Payload, &violations); err == nil {
			return &checkout.ValidationError{Violations: violations}
		}
	}
	return errors.New(rec.Error)
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
