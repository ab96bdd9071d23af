package translator

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// CommentTranslator compiles comment read and update requests.
type CommentTranslator struct{}

// NewCommentTranslator creates a comment query compiler.
func NewCommentTranslator() *CommentTranslator {
	return &CommentTranslator{}
}

// Filter converts a declarative comment query into a store filter document.
func (t *CommentTranslator) Filter(req *models.ReadCommentRequest) (bson.M, error) {
	query := bson.M{}

	if err := applyIDFilter(query, req.ID); err != nil {
		return nil, err
	}

	if req.AssetType != nil {
		query["assetType"] = *req.AssetType
	}
	if req.AssetID != nil {
		query["assetID"] = *req.AssetID
	}
	if req.Poster != nil {
		query["poster"] = *req.Poster
	}
	if req.Body != nil {
		textSearch(query, *req.Body)
	}
	if req.RequiresAttention != nil {
		query["requiresAttention"] = *req.RequiresAttention
	}

	if err := applyRange(query, "posted", req.Posted, req.PostedRangeBegin, req.PostedRangeEnd); err != nil {
		return nil, err
	}

	if req.LocalOnly {
		query["poster"] = req.UserID
	}

	return query, nil
}

// Update converts a comment update into a store update document.
func (t *CommentTranslator) Update(req *models.UpdateCommentRequest) (bson.M, error) {
	set := bson.M{}
	if req.Topic != nil {
		set["topic"] = *req.Topic
	}
	if req.Body != nil {
		set["body"] = *req.Body
	}
	if req.RequiresAttention != nil {
		set["requiresAttention"] = *req.RequiresAttention
	}
	if req.AttendedDate != nil {
		set["attendedDate"] = *req.AttendedDate
	}
	if len(set) == 0 {
		return nil, models.NewClientError("no operations provided")
	}
	return bson.M{"$set": set}, nil
}
