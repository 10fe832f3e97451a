package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"farmcal/internal/model"
)

// FetchResponse is the envelope the backend wraps list results in. The
// paging fields are only present on paginated endpoints.
type FetchResponse[T any] struct {
	Results    []T  `json:"results"`
	HasMore    bool `json:"hasMore,omitempty"`
	TotalCount int  `json:"totalCount,omitempty"`
	Page       int  `json:"page,omitempty"`
	PageSize   int  `json:"pageSize,omitempty"`
}

// ErrUnsupported is returned for an operation an entity has no route for.
var ErrUnsupported = errors.New("operation not supported by this endpoint set")

// ErrInvalidPayload is returned when a create payload fails its
// `validate` tags; nothing is sent.
var ErrInvalidPayload = errors.New("invalid payload")

// Endpoints are the per-entity paths, relative to the API root. Get, Update
// and Delete take the entity ID as an extra path segment. An empty path
// means the backend does not offer that operation.
type Endpoints struct {
	List   string
	Get    string
	Create string
	Update string
	Delete string
}

// Repository is the list/get/create/update/delete capability set for one
// entity type T created from payload C.
type Repository[T any, C any] struct {
	client *Client
	ep     Endpoints
}

func NewRepository[T any, C any](client *Client, ep Endpoints) *Repository[T, C] {
	return &Repository[T, C]{client: client, ep: ep}
}

// List fetches one page of results.
func (r *Repository[T, C]) List(ctx context.Context, params url.Values) (FetchResponse[T], error) {
	if r.ep.List == "" {
		return FetchResponse[T]{}, fmt.Errorf("list: %w", ErrUnsupported)
	}
	var out FetchResponse[T]
	if err := r.client.do(ctx, http.MethodGet, r.ep.List, params, nil, &out); err != nil {
		return FetchResponse[T]{}, err
	}
	if out.Results == nil {
		out.Results = []T{}
	}
	return out, nil
}

// ListAll follows "page" while the backend reports more results, stopping
// after maxPages pages (<= 0 means 50).
func (r *Repository[T, C]) ListAll(ctx context.Context, params url.Values, maxPages int) ([]T, error) {
	if maxPages <= 0 {
		maxPages = 50
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	all := make([]T, 0)
	for i := 0; i < maxPages; i++ {
		q.Set("page", strconv.Itoa(page))
		resp, err := r.List(ctx, q)
		if err != nil {
			return all, err
		}
		all = append(all, resp.Results...)
		if !resp.HasMore || len(resp.Results) == 0 {
			break
		}
		page++
	}
	return all, nil
}

// Get fetches one entity by ID.
func (r *Repository[T, C]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if r.ep.Get == "" {
		return out, fmt.Errorf("get: %w", ErrUnsupported)
	}
	err := r.client.do(ctx, http.MethodGet, r.ep.Get+"/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Create validates and posts a new entity. The backend's echo, if any, is
// decoded into T.
func (r *Repository[T, C]) Create(ctx context.Context, payload C) (T, error) {
	var out T
	if r.ep.Create == "" {
		return out, fmt.Errorf("create: %w", ErrUnsupported)
	}
	if err := model.Validate(payload); err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	err := r.client.do(ctx, http.MethodPost, r.ep.Create, nil, payload, &out)
	return out, err
}

// Update replaces the entity with the given ID.
func (r *Repository[T, C]) Update(ctx context.Context, id string, entity T) (T, error) {
	var out T
	if r.ep.Update == "" {
		return out, fmt.Errorf("update: %w", ErrUnsupported)
	}
	err := r.client.do(ctx, http.MethodPut, r.ep.Update+"/"+url.PathEscape(id), nil, entity, &out)
	return out, err
}

// Delete removes the entity with the given ID.
func (r *Repository[T, C]) Delete(ctx context.Context, id string) error {
	if r.ep.Delete == "" {
		return fmt.Errorf("delete: %w", ErrUnsupported)
	}
	return r.client.do(ctx, http.MethodDelete, r.ep.Delete+"/"+url.PathEscape(id), nil, nil, nil)
}

// EventEndpoints are the backend's calendar event routes.
var EventEndpoints = Endpoints{
	List:   "/Event/all-events",
	Get:    "/Event",
	Create: "/Event/create-event",
	Update: "/Event/update-event",
	Delete: "/Event/delete-event",
}

// EventRepository is the Repository instantiation for calendar events.
type EventRepository = Repository[model.Event, model.CreateEvent]

func NewEventRepository(client *Client) *EventRepository {
	return NewRepository[model.Event, model.CreateEvent](client, EventEndpoints)
}
