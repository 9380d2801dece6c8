package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dockload/internal/core/httpclient"
)

var _ Store = (*RESTStore)(nil)

// RESTStore implements Store against a generic HTTP record API:
//
//	POST   {base}/collections/{c}/records                 -> {"id": "..."}
//	PATCH  {base}/collections/{c}/records?filter={json}   -> {"count": n}
//	GET    {base}/collections/{c}/records?filter=&order=&desc= -> {"records": [...]}
//	DELETE {base}/collections/{c}/records?filter={json}   -> {"count": n}
//	GET    {base}/health
//
// Non-2xx answers are rejections carrying the HTTP status as code.
type RESTStore struct {
	client  *http.Client
	baseURL string
}

// NewRESTStore creates a new RESTStore. timeout bounds each HTTP exchange.
func NewRESTStore(baseURL, apiKey string, timeout time.Duration) *RESTStore {
	return &RESTStore{
		client:  httpclient.NewClient(timeout, httpclient.WithBearerToken(apiKey)),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type restIDResponse struct {
	ID string `json:"id"`
}

type restCountResponse struct {
	Count int `json:"count"`
}

type restRecordsResponse struct {
	Records []Record `json:"records"`
}

type restErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Insert posts the record.
func (s *RESTStore) Insert(ctx context.Context, collection string, record Record) (string, error) {
	var resp restIDResponse
	if err := s.do(ctx, "insert", collection, http.MethodPost, nil, record, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", Rejection("insert", collection, "EMPTY_ID", "store answered without a record id")
	}
	return resp.ID, nil
}

// Update patches every record matching filter.
func (s *RESTStore) Update(ctx context.Context, collection string, filter Filter, patch Record) (int, error) {
	query, err := filterQuery(filter)
	if err != nil {
		return 0, Rejection("update", collection, "INVALID_FILTER", err.Error())
	}
	var resp restCountResponse
	if err := s.do(ctx, "update", collection, http.MethodPatch, query, patch, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Select fetches matching records in the requested order.
func (s *RESTStore) Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error) {
	query, err := filterQuery(filter)
	if err != nil {
		return nil, Rejection("select", collection, "INVALID_FILTER", err.Error())
	}
	if order.Field != "" {
		query.Set("order", order.Field)
		query.Set("desc", strconv.FormatBool(order.Desc))
	}
	var resp restRecordsResponse
	if err := s.do(ctx, "select", collection, http.MethodGet, query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Records == nil {
		resp.Records = []Record{}
	}
	return resp.Records, nil
}

// Delete removes every record matching filter.
func (s *RESTStore) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	query, err := filterQuery(filter)
	if err != nil {
		return 0, Rejection("delete", collection, "INVALID_FILTER", err.Error())
	}
	var resp restCountResponse
	if err := s.do(ctx, "delete", collection, http.MethodDelete, query, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Ping verifies that the record API is reachable and the key is accepted.
func (s *RESTStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return Connectivity("ping", "", fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Classify("ping", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rejectionFrom("ping", "", resp)
	}
	return nil
}

// Close releases idle connections.
func (s *RESTStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *RESTStore) do(ctx context.Context, op, collection, method string, query url.Values, body any, out any) error {
	endpoint := fmt.Sprintf("%s/collections/%s/records", s.baseURL, url.PathEscape(collection))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Rejection(op, collection, "INVALID_RECORD", err.Error())
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return Connectivity(op, collection, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Classify(op, collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejectionFrom(op, collection, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Rejection(op, collection, "DECODE_ERROR", fmt.Sprintf("failed to decode response: %v", err))
	}
	return nil
}

func rejectionFrom(op, collection string, resp *http.Response) error {
	code := strconv.Itoa(resp.StatusCode)
	message := http.StatusText(resp.StatusCode)

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body restErrorResponse
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		if body.Code != "" {
			code = body.Code
		}
		if body.Message != "" {
			message = body.Message
		}
	}
	return Rejection(op, collection, code, message)
}

func filterQuery(filter Filter) (url.Values, error) {
	query := url.Values{}
	if len(filter) == 0 {
		return query, nil
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}
	query.Set("filter", string(data))
	return query, nil
}
