// Package translator compiles typed read and update requests into the filter
// and update documents the store executes. Every predicate combines with
// implicit AND; range bounds are strict (exclusive) at both ends.
package translator

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

// applyIDFilter adds the _id clause for a scalar or array id filter. Array
// form is an OR-membership test, so an empty array matches nothing rather
// than everything; any malformed id aborts compilation.
func applyIDFilter(query bson.M, ids *models.IDList) error {
	if ids == nil {
		return nil
	}
	if id, ok := ids.Single(); ok {
		oid, err := store.ParseID(id)
		if err != nil {
			return models.NewClientError("Invalid ID")
		}
		query["_id"] = oid
		return nil
	}
	members := make(bson.A, 0, len(ids.IDs))
	for _, id := range ids.IDs {
		oid, err := store.ParseID(id)
		if err != nil {
			return models.NewClientError("Invalid ID")
		}
		members = append(members, oid)
	}
	query["_id"] = bson.M{"$in": members}
	return nil
}

// applyRange combines an optional exact match with optional strict bounds on
// one numeric field. A record equal to either bound is excluded.
func applyRange(query bson.M, field string, exact, begin, end *int64) error {
	if exact != nil {
		query[field] = *exact
	}
	if begin != nil {
		if err := mergeBound(query, field, "$gt", *begin); err != nil {
			return err
		}
	}
	if end != nil {
		if err := mergeBound(query, field, "$lt", *end); err != nil {
			return err
		}
	}
	return nil
}

func mergeBound(query bson.M, field, op string, value int64) error {
	existing, ok := query[field]
	if !ok {
		query[field] = bson.M{op: value}
		return nil
	}
	bounds, ok := existing.(bson.M)
	if !ok {
		// An exact value was already set for this field; a range bound on
		// top of it cannot be satisfied meaningfully.
		return models.NewClientError("invalid %s search", field)
	}
	bounds[op] = value
	return nil
}

// textSearch adds a substring/text-search clause.
func textSearch(query bson.M, value string) {
	query["$text"] = bson.M{"$search": value}
}
