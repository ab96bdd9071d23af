package binding

import (
	"context"
	"log/slog"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// SignupBinding maps signup messages onto the signup database.
type SignupBinding struct {
	boundary
	db *database.SignupDatabase
}

// NewSignupBinding wires the signup dispatcher.
func NewSignupBinding(db *database.SignupDatabase, logger *slog.Logger) *SignupBinding {
	return &SignupBinding{
		boundary: newBoundary(logger, "signup-binding"),
		db:       db,
	}
}

// Handle dispatches one validated signup message by intention.
func (b *SignupBinding) Handle(ctx context.Context, raw []byte) any {
	env, err := models.ParseEnvelope(raw)
	if err != nil {
		b.logger.Warn("undecodable envelope on signup topic", slog.String("error", err.Error()))
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
	case models.IntentionDiscover:
		return b.discover(ctx, env, raw)
	case models.IntentionDiscoverDelete:
		return b.discoverDelete(ctx, env, raw)
	default:
		return b.failure(env, errInvalidIntention())
	}
}

func (b *SignupBinding) create(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.CreateSignupRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Create(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *SignupBinding) read(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.ReadSignupRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	signups, err := b.db.Query(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}

	result := make([]any, len(signups))
	for i, s := range signups {
		result[i] = s
	}
	return success(env, result)
}

func (b *SignupBinding) update(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.UpdateSignupRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Update(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *SignupBinding) delete(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DeleteSignupRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Delete(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

// discover counts how many signups reference a foreign asset. Signups never
// restrict deletion; every reference is modifiable.
func (b *SignupBinding) discover(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DiscoverRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	resp := &models.DiscoverResponse{
		MsgID:     env.MsgID,
		Intention: models.IntentionRead,
		UserID:    env.UserID,
		Status:    models.StatusSuccess,
		RequestID: env.RequestID,
	}

	query, ok := b.assetQuery(&req, env.UserID)
	if !ok {
		return resp
	}

	signups, err := b.db.Query(ctx, query)
	if err != nil {
		return b.failure(env, err)
	}
	resp.Modify = len(signups)
	return resp
}

// discoverDelete removes every signup referencing a deleted foreign asset.
// Signups hold no nullable references, so every asset type hard-deletes.
func (b *SignupBinding) discoverDelete(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DiscoverRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	resp := &models.DiscoverDeleteResponse{
		MsgID:     env.MsgID,
		Intention: models.IntentionDelete,
		UserID:    env.UserID,
		Status:    models.StatusSuccess,
		RequestID: env.RequestID,
	}

	query, ok := b.assetQuery(&req, env.UserID)
	if !ok {
		resp.Successful = true
		return resp
	}

	signups, err := b.db.Query(ctx, query)
	if err != nil {
		b.logger.Warn("failed to find signups referencing asset",
			slog.String("assetType", req.AssetType),
			slog.String("assetID", req.AssetID),
			slog.String("error", err.Error()))
		return resp
	}

	for _, s := range signups {
		del := &models.DeleteSignupRequest{ID: s.ID, LocalOnly: query.LocalOnly}
		del.UserID = env.UserID
		if _, err := b.db.Delete(ctx, del); err != nil {
			b.logger.Warn("failed to delete signup referencing asset",
				slog.String("signupID", s.ID),
				slog.String("error", err.Error()))
			return resp
		}
	}
	resp.Modified = len(signups)
	resp.Successful = true
	return resp
}

// assetQuery builds the signup query matching records that reference the
// discovered asset. Returns false for asset types signups never reference.
func (b *SignupBinding) assetQuery(req *models.DiscoverRequest, userID string) (*models.ReadSignupRequest, bool) {
	query := &models.ReadSignupRequest{}
	switch req.AssetType {
	case "signup":
		query.ID = &models.IDList{IDs: []string{req.AssetID}, Scalar: true}
		if req.LocalAssetOnly {
			query.LocalOnly = true
			query.UserID = userID
		}
	case "event":
		query.EventID = &req.AssetID
	case "user":
		query.SignupUser = &req.AssetID
	default:
		b.logger.Debug("discovery for unreferenced asset type",
			slog.String("assetType", req.AssetType))
		return nil, false
	}
	return query, true
}
