package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"guardpost/pkg/model"
)

type GuardClient struct {
	httpClient *HttpClient
}

func NewGuardClient(baseURL string) *GuardClient {
	return &GuardClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *GuardClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/guards", body)
}

func (c *GuardClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/guards/id/"+url.PathEscape(id))
}

func (c *GuardClient) FindEligible(ctx context.Context, city string, armedOnly bool, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("city", city)

	if armedOnly {
		q.Set("armed", "true")
	}

	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	return c.httpClient.GET(ctx, "/api/v1/guards/eligible?"+q.Encode())
}

func (c *GuardClient) Update(ctx context.Context, id string, body any) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/guards/id/"+url.PathEscape(id), body)
}

func (c *GuardClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/guards/id/"+url.PathEscape(id))
}

func (c *GuardClient) DecodeGuard(resp *Response) (*model.Guard, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode guard wrapper: %s: %w", resp.ToString(), err)
	}

	var guard model.Guard
	if err := json.Unmarshal(wrapper.Data, &guard); err != nil {
		return nil, fmt.Errorf("could not decode guard json: %s: %w", resp.ToString(), err)
	}

	return &guard, nil
}

func (c *GuardClient) DecodeGuards(resp *Response) ([]*model.Guard, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp: %s: %w", resp.ToString(), err)
	}

	var guards []*model.Guard
	if err := json.Unmarshal(wrapper.Data, &guards); err != nil {
		return nil, nil, fmt.Errorf("could not decode guard list: %s: %w", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return guards, metadata, nil
}
