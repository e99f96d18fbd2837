package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gabapcia/credwatch/internal/entity"
)

// indexedFields lists, per kind, the document fields backed by a secondary
// index set. Equality predicates on these fields are answered from the sets
// instead of a scan of the kind's hash.
var indexedFields = map[entity.Kind][]string{
	entity.KindAttestation: {"claimHash", "cTypeId", "creationBlockId"},
	entity.KindDID:         {"active"},
	entity.KindOwnership:   {"nameId"},
	entity.KindSanction:    {"nameId"},
	entity.KindRuling:      {"credentialId"},
}

// indexKey is the set holding the ids of the documents of kind whose field
// equals value, value being its JSON encoding:
//
//	"credwatch:index:<kind>:<field>:<value>"
func indexKey(kind entity.Kind, field, value string) string {
	return fmt.Sprintf("%s:index:%s:%s:%s", keyPrefix, kind, field, value)
}

// indexToken renders v the way it is encoded inside a stored document. ok
// is false for nil, which is never indexed.
func indexToken(v any) (token string, ok bool, err error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", false, err
	}

	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return "", false, err
	}
	if decoded == nil {
		return "", false, nil
	}

	encoded, err = json.Marshal(decoded)
	if err != nil {
		return "", false, err
	}

	return string(encoded), true, nil
}

// indexKeys returns the index sets doc belongs to.
func indexKeys(kind entity.Kind, doc []byte) ([]string, error) {
	fields := indexedFields[kind]
	if len(fields) == 0 || doc == nil {
		return nil, nil
	}

	var values map[string]any
	if err := json.Unmarshal(doc, &values); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}

	var keys []string
	for _, field := range fields {
		token, ok, err := indexToken(values[field])
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, indexKey(kind, field, token))
		}
	}

	return keys, nil
}

// indexLookup returns the index sets that narrow a query on predicates and
// whether they cover every predicate.
func indexLookup(kind entity.Kind, predicates []entity.Predicate) (keys []string, covered bool, err error) {
	covered = true
	for _, p := range predicates {
		if p.Op != entity.OpEq || !slices.Contains(indexedFields[kind], p.Field) {
			covered = false
			continue
		}

		token, ok, err := indexToken(p.Value)
		if err != nil {
			return nil, false, fmt.Errorf("predicate on %q: %w", p.Field, err)
		}
		if !ok {
			covered = false
			continue
		}

		keys = append(keys, indexKey(kind, p.Field, token))
	}

	return keys, covered && len(keys) > 0, nil
}

// indexChange is the index maintenance one document write requires.
type indexChange struct {
	stale []string
	fresh []string
}

// indexChanges compares each doc with its stored version and returns the
// sets to leave and to join, aligned with docs.
func (c *client) indexChanges(ctx context.Context, docs []entity.Document) ([]indexChange, error) {
	byKind := make(map[entity.Kind][]int)
	for i, d := range docs {
		if len(indexedFields[d.Kind]) > 0 {
			byKind[d.Kind] = append(byKind[d.Kind], i)
		}
	}

	changes := make([]indexChange, len(docs))
	for kind, positions := range byKind {
		ids := make([]string, len(positions))
		for j, i := range positions {
			ids[j] = docs[i].ID
		}

		stored, err := c.conn.HMGet(ctx, entityKey(kind), ids...).Result()
		if err != nil {
			return nil, err
		}

		for j, i := range positions {
			var previous []byte
			if s, ok := stored[j].(string); ok {
				previous = []byte(s)
			}

			before, err := indexKeys(kind, previous)
			if err != nil {
				return nil, err
			}
			after, err := indexKeys(kind, docs[i].Doc)
			if err != nil {
				return nil, err
			}

			for _, key := range before {
				if !slices.Contains(after, key) {
					changes[i].stale = append(changes[i].stale, key)
				}
			}
			for _, key := range after {
				if !slices.Contains(before, key) {
					changes[i].fresh = append(changes[i].fresh, key)
				}
			}
		}
	}

	return changes, nil
}
