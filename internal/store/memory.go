package store

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDatabase is an in-process Database used by tests and the memory dev
// mode. It evaluates the operator subset the translators emit, so the
// resource databases behave identically on it and on the real store.
type MemoryDatabase struct {
	mu    sync.Mutex
	colls map[string]*memoryCollection
}

// NewMemoryDatabase creates an empty in-process store.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{colls: make(map[string]*memoryCollection)}
}

// Collection returns the named collection, creating it on first use.
func (m *MemoryDatabase) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.colls[name]; ok {
		return c
	}
	c := &memoryCollection{}
	m.colls[name] = c
	return c
}

// FailNextInsert makes the next insert into the named collection fail with
// err. Used by tests to simulate write failures.
func (m *MemoryDatabase) FailNextInsert(name string, err error) {
	c := m.Collection(name).(*memoryCollection)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FailNextInsert = err
}

// Ping always succeeds.
func (m *MemoryDatabase) Ping(ctx context.Context) error { return ctx.Err() }

// Close discards all data.
func (m *MemoryDatabase) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colls = make(map[string]*memoryCollection)
	return nil
}

type memoryCollection struct {
	mu         sync.Mutex
	docs       []Document
	uniqueKeys [][]string
	textFields []string

	// FailNextInsert makes the next InsertOne fail with the given error.
	// Used by tests to simulate changelog write failures.
	FailNextInsert error
}

func (c *memoryCollection) Find(ctx context.Context, filter bson.M) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Document
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			out = append(out, copyDocument(doc))
		}
	}
	return out, nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailNextInsert != nil {
		err := c.FailNextInsert
		c.FailNextInsert = nil
		return "", err
	}

	stored := copyDocument(doc)
	if _, ok := stored["_id"]; !ok {
		stored["_id"] = primitive.NewObjectID()
	}
	if err := c.checkUnique(stored, -1); err != nil {
		return "", err
	}
	c.docs = append(c.docs, stored)

	oid, _ := stored["_id"].(primitive.ObjectID)
	return oid.Hex(), nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter bson.M, update bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if !c.matches(doc, filter) {
			continue
		}
		updated := copyDocument(doc)
		applyUpdate(updated, update)
		if err := c.checkUnique(updated, i); err != nil {
			return 0, err
		}
		c.docs[i] = updated
		return 1, nil
	}
	return 0, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if c.matches(doc, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) EnsureUniqueIndex(ctx context.Context, fields ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniqueKeys = append(c.uniqueKeys, fields)
	return nil
}

func (c *memoryCollection) EnsureTextIndex(ctx context.Context, field string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textFields = append(c.textFields, field)
	return nil
}

// checkUnique enforces registered unique indexes against every document
// other than the one at position skip.
func (c *memoryCollection) checkUnique(candidate Document, skip int) error {
	for _, keys := range c.uniqueKeys {
		for i, doc := range c.docs {
			if i == skip {
				continue
			}
			same := true
			for _, k := range keys {
				if !valueEqual(doc[k], candidate[k]) {
					same = false
					break
				}
			}
			if same {
				return ErrDuplicateKey
			}
		}
	}
	return nil
}

func (c *memoryCollection) matches(doc Document, filter bson.M) bool {
	for field, cond := range filter {
		if field == "$text" {
			if !c.matchText(doc, cond) {
				return false
			}
			continue
		}
		if !matchField(doc[field], cond) {
			return false
		}
	}
	return true
}

// matchText performs a substring search over text-indexed fields.
func (c *memoryCollection) matchText(doc Document, cond any) bool {
	spec, ok := cond.(bson.M)
	if !ok {
		return false
	}
	search, ok := spec["$search"].(string)
	if !ok {
		return false
	}
	needle := strings.ToLower(search)
	for _, field := range c.textFields {
		if s, ok := doc[field].(string); ok {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	return false
}

// matchField evaluates a single filter condition against a document value.
func matchField(value any, cond any) bool {
	spec, ok := cond.(bson.M)
	if !ok {
		return valueMatches(value, cond)
	}

	for op, arg := range spec {
		switch op {
		case "$in":
			if !matchIn(value, arg) {
				return false
			}
		case "$all":
			if !matchAll(value, arg) {
				return false
			}
		case "$size":
			n, ok := toInt64(arg)
			if !ok || int64(len(asSlice(value))) != n {
				return false
			}
		case "$gt":
			cmp, ok := compareValues(value, arg)
			if !ok || cmp <= 0 {
				return false
			}
		case "$lt":
			cmp, ok := compareValues(value, arg)
			if !ok || cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// matchIn implements $in: a scalar matches when it is in the argument list,
// an array field matches when any element is in the list.
func matchIn(value any, arg any) bool {
	list := asSlice(arg)
	elems := asSlice(value)
	if elems == nil {
		elems = []any{value}
	}
	for _, e := range elems {
		for _, item := range list {
			if valueEqual(e, item) {
				return true
			}
		}
	}
	return false
}

// matchAll implements $all: the array field must contain every listed value.
func matchAll(value any, arg any) bool {
	elems := asSlice(value)
	for _, item := range asSlice(arg) {
		found := false
		for _, e := range elems {
			if valueEqual(e, item) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// valueMatches implements direct equality, with the array-contains semantics
// the store applies when the field itself is an array.
func valueMatches(value any, expected any) bool {
	if elems := asSlice(value); elems != nil && asSlice(expected) == nil {
		for _, e := range elems {
			if valueEqual(e, expected) {
				return true
			}
		}
		return false
	}
	return valueEqual(value, expected)
}

func applyUpdate(doc Document, update bson.M) {
	if set, ok := update["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		for k := range unset {
			delete(doc, k)
		}
	}
	if add, ok := update["$addToSet"].(bson.M); ok {
		for field, spec := range add {
			values := []any{spec}
			if m, ok := spec.(bson.M); ok {
				if each, ok := m["$each"]; ok {
					values = asSlice(each)
				}
			}
			current := asSlice(doc[field])
			for _, v := range values {
				present := false
				for _, e := range current {
					if valueEqual(e, v) {
						present = true
						break
					}
				}
				if !present {
					current = append(current, v)
				}
			}
			doc[field] = current
		}
	}
	if pull, ok := update["$pull"].(bson.M); ok {
		for field, spec := range pull {
			remove := []any{spec}
			if m, ok := spec.(bson.M); ok {
				if in, ok := m["$in"]; ok {
					remove = asSlice(in)
				}
			}
			var kept []any
			for _, e := range asSlice(doc[field]) {
				drop := false
				for _, r := range remove {
					if valueEqual(e, r) {
						drop = true
						break
					}
				}
				if !drop {
					kept = append(kept, e)
				}
			}
			doc[field] = kept
		}
	}
}

func valueEqual(a, b any) bool {
	if oa, ok := a.(primitive.ObjectID); ok {
		if ob, ok := b.(primitive.ObjectID); ok {
			return oa == ob
		}
		return false
	}
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	return a == b
}

// compareValues orders two numeric values; non-numeric pairs report not-ok.
func compareValues(a, b any) (int, bool) {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toInt64(v any) (int64, bool) {
	f, ok := toFloat64(v)
	return int64(f), ok
}

// asSlice normalises the slice shapes that appear in documents and filters.
func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case bson.A:
		return []any(s)
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []primitive.ObjectID:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return nil
	}
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
