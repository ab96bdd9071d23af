package binding

import (
	"context"
	"log/slog"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// CommentBinding maps comment messages onto the comment database.
type CommentBinding struct {
	boundary
	db *database.CommentDatabase
}

// NewCommentBinding wires the comment dispatcher.
func NewCommentBinding(db *database.CommentDatabase, logger *slog.Logger) *CommentBinding {
	return &CommentBinding{
		boundary: newBoundary(logger, "comment-binding"),
		db:       db,
	}
}

// Handle dispatches one validated comment message by intention.
func (b *CommentBinding) Handle(ctx context.Context, raw []byte) any {
	env, err := models.ParseEnvelope(raw)
	if err != nil {
		b.logger.Warn("undecodable envelope on comment topic", slog.String("error", err.Error()))
		return nil
	}

	switch env.Intention {
	case models.IntentionCreate:
		return b.create(ctx, env, raw)
	case models.IntentionRead:
		return b.read(ctx, env, raw)
	case models.IntentionUpdate:
		return b.update(ctx, env, raw)
	case models.IntentionDelete:
		return b.delete(ctx, env, raw)
	default:
		return b.failure(env, errInvalidIntention())
	}
}

func (b *CommentBinding) create(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.CreateCommentRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Create(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *CommentBinding) read(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.ReadCommentRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	comments, err := b.db.Query(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}

	result := make([]any, len(comments))
	for i, c := range comments {
		result[i] = c
	}
	return success(env, result)
}

func (b *CommentBinding) update(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.UpdateCommentRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Update(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *CommentBinding) delete(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DeleteCommentRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Delete(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}
