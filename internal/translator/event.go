package translator

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// EventTranslator compiles event read and update requests.
type EventTranslator struct{}

// NewEventTranslator creates an event query compiler.
func NewEventTranslator() *EventTranslator {
	return &EventTranslator{}
}

// Filter converts a declarative event query into a store filter document.
func (t *EventTranslator) Filter(req *models.ReadEventRequest) (bson.M, error) {
	query := bson.M{}

	if err := applyIDFilter(query, req.ID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		textSearch(query, *req.Name)
	}

	if err := applyRange(query, "start", req.Start, req.StartRangeBegin, req.StartRangeEnd); err != nil {
		return nil, err
	}
	if err := applyRange(query, "end", req.End, req.EndRangeBegin, req.EndRangeEnd); err != nil {
		return nil, err
	}
	if err := applyRange(query, "attendance", req.Attendance, req.AttendanceRangeBegin, req.AttendanceRangeEnd); err != nil {
		return nil, err
	}

	if req.EntsID != nil {
		query["ents"] = *req.EntsID
	}
	if req.StateID != nil {
		query["state"] = *req.StateID
	}
	if len(req.StateIn) > 0 {
		query["state"] = bson.M{"$in": toBsonA(req.StateIn)}
	}
	if req.Reserved != nil {
		query["reserved"] = *req.Reserved
	}

	// The three venue selectors are mutually exclusive; when a caller sends
	// more than one the last applied wins.
	if len(req.VenueIDs) > 0 {
		query["venues"] = bson.M{
			"$size": int64(len(req.VenueIDs)),
			"$all":  toBsonA(req.VenueIDs),
		}
	}
	if len(req.AllVenues) > 0 {
		query["venues"] = bson.M{"$all": toBsonA(req.AllVenues)}
	}
	if len(req.AnyVenues) > 0 {
		query["venues"] = bson.M{"$in": toBsonA(req.AnyVenues)}
	}

	if req.LocalOnly {
		query["author"] = req.UserID
	}

	return query, nil
}

// Update converts a partial event update into a store update document. An
// update with no operations at all is a client error.
func (t *EventTranslator) Update(req *models.UpdateEventRequest) (bson.M, error) {
	set := bson.M{}
	unset := bson.M{}

	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Start != nil {
		set["start"] = *req.Start
	}
	if req.End != nil {
		set["end"] = *req.End
	}
	if req.Attendance != nil {
		set["attendance"] = *req.Attendance
	}
	if req.Reserved != nil {
		set["reserved"] = *req.Reserved
	}
	if req.EntsID.Present {
		if req.EntsID.Null {
			unset["ents"] = ""
		} else {
			set["ents"] = req.EntsID.Value
		}
	}
	if req.StateID.Present {
		if req.StateID.Null {
			unset["state"] = ""
		} else {
			set["state"] = req.StateID.Value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(req.AddVenues) > 0 {
		update["$addToSet"] = bson.M{"venues": bson.M{"$each": toBsonA(req.AddVenues)}}
	}
	if len(req.RemoveVenues) > 0 {
		update["$pull"] = bson.M{"venues": bson.M{"$in": toBsonA(req.RemoveVenues)}}
	}

	if len(update) == 0 {
		return nil, models.NewClientError("no operations provided")
	}
	return update, nil
}

func toBsonA(values []string) bson.A {
	out := make(bson.A, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
