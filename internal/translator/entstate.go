package translator

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// EntStateTranslator compiles ent state read and update requests.
type EntStateTranslator struct{}

// NewEntStateTranslator creates an ent state query compiler.
func NewEntStateTranslator() *EntStateTranslator {
	return &EntStateTranslator{}
}

// Filter converts a declarative ent state query into a store filter document.
func (t *EntStateTranslator) Filter(req *models.ReadEntStateRequest) (bson.M, error) {
	query := bson.M{}

	if err := applyIDFilter(query, req.ID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		textSearch(query, *req.Name)
	}
	if req.Icon != nil {
		query["icon"] = *req.Icon
	}
	if req.Color != nil {
		query["color"] = *req.Color
	}

	return query, nil
}

// Update converts an ent state update into a store update document.
func (t *EntStateTranslator) Update(req *models.UpdateEntStateRequest) (bson.M, error) {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Icon != nil {
		set["icon"] = *req.Icon
	}
	if req.Color != nil {
		set["color"] = *req.Color
	}
	if len(set) == 0 {
		return nil, models.NewClientError("no operations provided")
	}
	return bson.M{"$set": set}, nil
}
