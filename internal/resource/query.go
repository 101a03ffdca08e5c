package resource

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// PageRange is the inclusive record window of a list request.
type PageRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// sortSpec is the wire shape of the sort parameter.
type sortSpec struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Query is the list envelope every collection accepts: a sort pair, an
// inclusive range window, and arbitrary filter keys. A nil Range asks for the
// server's default page; a non-nil Range always rides the request, so a
// {0,0} window requests exactly the first record.
type Query struct {
	SortField string
	SortOrder string // "ASC" or "DESC"
	Range     *PageRange
	Filter    map[string]any
}

// Encode renders the envelope as the three JSON-valued query parameters the
// wire format uses: sort={"field","order"}, range={"from","to"}, filter={...}.
func (q Query) Encode() (url.Values, error) {
	values := url.Values{}

	if q.SortField != "" {
		order := q.SortOrder
		if order == "" {
			order = "ASC"
		}
		sort, err := json.Marshal(sortSpec{Field: q.SortField, Order: order})
		if err != nil {
			return nil, fmt.Errorf("encode sort: %w", err)
		}
		values.Set("sort", string(sort))
	}

	if q.Range != nil {
		rng, err := json.Marshal(q.Range)
		if err != nil {
			return nil, fmt.Errorf("encode range: %w", err)
		}
		values.Set("range", string(rng))
	}

	if len(q.Filter) > 0 {
		filter, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
		values.Set("filter", string(filter))
	}

	return values, nil
}

// ParseQuery decodes the three envelope parameters from a request's query
// string. Absent parameters fall back to defaults: no sort, the first
// defaultPageSize records, no filter. The returned Range is never nil.
func ParseQuery(values url.Values, defaultPageSize int) (Query, error) {
	q := Query{
		Range:  &PageRange{From: 0, To: defaultPageSize - 1},
		Filter: map[string]any{},
	}

	if raw := values.Get("sort"); raw != "" {
		var sort sortSpec
		if err := json.Unmarshal([]byte(raw), &sort); err != nil {
			return Query{}, fmt.Errorf("parse sort parameter: %w", err)
		}
		q.SortField, q.SortOrder = sort.Field, sort.Order
	}

	if raw := values.Get("range"); raw != "" {
		var rng PageRange
		if err := json.Unmarshal([]byte(raw), &rng); err != nil {
			return Query{}, fmt.Errorf("parse range parameter: %w", err)
		}
		if rng.From < 0 || rng.To < rng.From {
			return Query{}, fmt.Errorf("invalid range [%d,%d]", rng.From, rng.To)
		}
		q.Range = &rng
	}

	if raw := values.Get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.Filter); err != nil {
			return Query{}, fmt.Errorf("parse filter parameter: %w", err)
		}
	}

	return q, nil
}

// Limit returns the page size implied by the range window.
func (q Query) Limit() int {
	if q.Range == nil {
		return 0
	}
	return q.Range.To - q.Range.From + 1
}
