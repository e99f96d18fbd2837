package entity

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

type selected struct {
	doc    json.RawMessage
	fields map[string]any
}

func normalize(v any) (any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out any
	return out, json.Unmarshal(encoded, &out)
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv))
		}
	}

	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Select filters, orders and paginates docs. Store implementations that
// cannot push predicates down to their backend use it to answer
// QueryByFields. A zero Limit returns every remaining document.
func Select(docs []json.RawMessage, predicates []Predicate, opts QueryOptions) ([]json.RawMessage, error) {
	want := make([]any, len(predicates))
	for i, p := range predicates {
		v, err := normalize(p.Value)
		if err != nil {
			return nil, fmt.Errorf("predicate on %q: %w", p.Field, err)
		}
		want[i] = v
	}

	var matched []selected
	for _, doc := range docs {
		var fields map[string]any
		if err := json.Unmarshal(doc, &fields); err != nil {
			return nil, err
		}

		ok := true
		for i, p := range predicates {
			equal := compareValues(fields[p.Field], want[i]) == 0 && (fields[p.Field] == nil) == (want[i] == nil)
			switch p.Op {
			case OpEq:
				ok = equal
			case OpNe:
				ok = !equal
			default:
				return nil, fmt.Errorf("unsupported predicate operator %q", p.Op)
			}
			if !ok {
				break
			}
		}

		if ok {
			matched = append(matched, selected{doc: doc, fields: fields})
		}
	}

	orderBy := cmp.Or(opts.OrderBy, "id")
	slices.SortStableFunc(matched, func(a, b selected) int {
		return compareValues(a.fields[orderBy], b.fields[orderBy])
	})

	if opts.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[opts.Offset:]

	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]json.RawMessage, len(matched))
	for i, m := range matched {
		out[i] = m.doc
	}

	return out, nil
}
