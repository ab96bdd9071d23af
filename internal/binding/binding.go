// Package binding dispatches validated broker messages to the persistence
// layer by intention and shapes the outbound response envelope. A binding
// returns nil when no response should be published; it never lets an error
// escape to the dispatch loop.
package binding

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// Binding handles one resource family's messages. The return value is the
// response to publish, or nil for no response.
type Binding interface {
	Handle(ctx context.Context, raw []byte) any
}

// boundary carries what every binding needs to translate errors into
// envelopes without leaking internals.
type boundary struct {
	logger *slog.Logger
}

func newBoundary(logger *slog.Logger, component string) boundary {
	if logger == nil {
		logger = slog.Default()
	}
	return boundary{logger: logger.With(slog.String("component", component))}
}

// success shapes the standard 200 envelope echoing the request header.
func success(env models.Envelope, result []any) *models.ResponseEnvelope {
	return &models.ResponseEnvelope{
		MsgID:     env.MsgID,
		Intention: env.Intention,
		UserID:    env.UserID,
		Status:    models.StatusSuccess,
		RequestID: env.RequestID,
		Result:    result,
	}
}

// failure translates an error into a response envelope. Client-facing errors
// travel back verbatim with FAIL status; anything else is masked behind a
// generic message and logged with full detail server-side.
func (b boundary) failure(env models.Envelope, err error) *models.ResponseEnvelope {
	status := models.StatusError
	message := "internal server error"
	if models.IsClientFacing(err) {
		status = models.StatusFail
		message = err.Error()
	} else {
		b.logger.Error("request failed",
			slog.Int64("msg_id", env.MsgID),
			slog.String("intention", env.Intention),
			slog.String("error", err.Error()))
	}

	return &models.ResponseEnvelope{
		MsgID:     env.MsgID,
		Intention: env.Intention,
		UserID:    env.UserID,
		Status:    status,
		RequestID: env.RequestID,
		Result:    []any{message},
	}
}

// decode parses raw into a typed request, surfacing malformed payloads and
// shape violations (the scalar-or-array id filter) as client errors.
func decode[T any](raw []byte, out *T) error {
	if err := json.Unmarshal(raw, out); err != nil {
		if models.IsClientFacing(err) {
			return err
		}
		return models.NewClientError("malformed request payload")
	}
	return nil
}

func errInvalidIntention() error {
	return models.NewClientError("invalid message intention")
}
