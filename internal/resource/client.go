// Package resource implements the generic record-access protocol used by the
// admin surface: paginated, sortable, filterable lists over uniform CRUD
// verbs, with the list total carried out-of-band in the Content-Range header.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreforge/storefront/pkg/httpclient"
	"github.com/coreforge/storefront/pkg/httputil"
)

// Record is one resource record in its wire shape.
type Record map[string]any

// ListResult is a page of records plus the collection total for the filter.
type ListResult struct {
	Records []Record
	Total   int
}

// Client talks the record-access protocol against one base URL. All calls go
// through an httpclient.Doer, so connectivity retries, timeouts and
// unreachable classification come for free.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	codec   *attachmentCodec

	// authHeader, when set, is attached to every request.
	authHeaderName  string
	authHeaderValue string
}

// Option configures a Client.
type Option func(*Client)

// WithAttachmentField registers a record field of a resource as an attachment
// list, flattened to a string on writes and restored to an array on reads.
func WithAttachmentField(resourceName, field string) Option {
	return func(c *Client) { c.codec.register(resourceName, field) }
}

// WithAuthHeader attaches a static header to every request.
func WithAuthHeader(name, value string) Option {
	return func(c *Client) {
		c.authHeaderName = name
		c.authHeaderValue = value
	}
}

// NewClient creates a protocol client for the given base URL.
func NewClient(baseURL string, doer httpclient.Doer, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		codec:   newAttachmentCodec(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeaderName != "" {
		req.Header.Set(c.authHeaderName, c.authHeaderValue)
	}
	return req, nil
}

// do executes a request, maps non-2xx responses to application errors, and
// decodes the body into out when out is non-nil.
func (c *Client) do(ctx context.Context, resourceName string, req *http.Request, out any) (*http.Response, error) {
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := httpclient.CheckResponse(resp, resourceName); err != nil {
		return nil, err
	}

	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", resourceName, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp, nil
}

func (c *Client) decodeRecords(resourceName string, records []Record) error {
	for _, record := range records {
		if err := c.codec.decodeForRead(resourceName, record); err != nil {
			return err
		}
	}
	return nil
}

// List fetches one page of a collection. The returned total comes from the
// Content-Range header; a missing header reads as 0.
func (c *Client) List(ctx context.Context, resourceName string, q Query) (ListResult, error) {
	query, err := q.Encode()
	if err != nil {
		return ListResult{}, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/"+resourceName, query, nil)
	if err != nil {
		return ListResult{}, err
	}

	var records []Record
	resp, err := c.do(ctx, resourceName, req, &records)
	if err != nil {
		return ListResult{}, err
	}
	if records == nil {
		records = []Record{}
	}
	if err := c.decodeRecords(resourceName, records); err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Records: records,
		Total:   httputil.ParseContentRangeTotal(resp.Header.Get(httputil.ContentRangeHeader)),
	}, nil
}

// GetOne fetches a single record by id.
func (c *Client) GetOne(ctx context.Context, resourceName, id string) (Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/"+resourceName+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var record Record
	if _, err := c.do(ctx, resourceName, req, &record); err != nil {
		return nil, err
	}
	if err := c.codec.decodeForRead(resourceName, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetMany fetches the records for a set of ids in one call, expressed as a
// single id filter. Order and completeness follow the server; unknown ids are
// simply absent from the result.
func (c *Client) GetMany(ctx context.Context, resourceName string, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}
	result, err := c.List(ctx, resourceName, Query{
		Range:  &PageRange{From: 0, To: len(ids) - 1},
		Filter: map[string]any{"id": ids},
	})
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Create inserts a record and returns the server's view of it.
func (c *Client) Create(ctx context.Context, resourceName string, record Record) (Record, error) {
	if err := c.codec.encodeForWrite(resourceName, record); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/"+resourceName, nil, record)
	if err != nil {
		return nil, err
	}

	var created Record
	if _, err := c.do(ctx, resourceName, req, &created); err != nil {
		return nil, err
	}
	if err := c.codec.decodeForRead(resourceName, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites a record and returns the server's view of it.
func (c *Client) Update(ctx context.Context, resourceName, id string, record Record) (Record, error) {
	if err := c.codec.encodeForWrite(resourceName, record); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/"+resourceName+"/"+url.PathEscape(id), nil, record)
	if err != nil {
		return nil, err
	}

	var updated Record
	if _, err := c.do(ctx, resourceName, req, &updated); err != nil {
		return nil, err
	}
	if err := c.codec.decodeForRead(resourceName, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a record and returns the deleted record as the server last
// saw it.
func (c *Client) Delete(ctx context.Context, resourceName, id string) (Record, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/"+resourceName+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var deleted Record
	if _, err := c.do(ctx, resourceName, req, &deleted); err != nil {
		return nil, err
	}
	if err := c.codec.decodeForRead(resourceName, deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteMany removes a set of records one by one and returns the ids that
// were deleted. The first failure stops the sweep; already-deleted ids stay
// in the returned slice so the caller can reconcile.
func (c *Client) DeleteMany(ctx context.Context, resourceName string, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := c.Delete(ctx, resourceName, id); err != nil {
			return deleted, err
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}
