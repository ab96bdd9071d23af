package translator

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// SignupTranslator compiles signup read and update requests.
type SignupTranslator struct{}

// NewSignupTranslator creates a signup query compiler.
func NewSignupTranslator() *SignupTranslator {
	return &SignupTranslator{}
}

// Filter converts a declarative signup query into a store filter document.
func (t *SignupTranslator) Filter(req *models.ReadSignupRequest) (bson.M, error) {
	query := bson.M{}

	if err := applyIDFilter(query, req.ID); err != nil {
		return nil, err
	}

	if req.SignupUser != nil {
		query["user"] = *req.SignupUser
	}
	if req.EventID != nil {
		query["event"] = *req.EventID
	}
	if req.Role != nil {
		query["role"] = *req.Role
	}

	if err := applyRange(query, "date", req.Date, req.DateRangeBegin, req.DateRangeEnd); err != nil {
		return nil, err
	}

	if req.LocalOnly {
		query["user"] = req.UserID
	}

	return query, nil
}

// Update converts a signup update into a store update document. Only the
// role is mutable; everything else names the signup's identity.
func (t *SignupTranslator) Update(req *models.UpdateSignupRequest) (bson.M, error) {
	set := bson.M{}
	if req.Role != nil {
		set["role"] = *req.Role
	}
	if len(set) == 0 {
		return nil, models.NewClientError("no operations provided")
	}
	return bson.M{"$set": set}, nil
}
