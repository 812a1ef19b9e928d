package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"guardpost/pkg/model"
)

type CompanyClient struct {
	httpClient *HttpClient
}

func NewCompanyClient(baseURL string) *CompanyClient {
	return &CompanyClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *CompanyClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/companies", body)
}

func (c *CompanyClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/companies/id/"+url.PathEscape(id))
}

func (c *CompanyClient) FindByCity(ctx context.Context, city string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("city", city)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	return c.httpClient.GET(ctx, "/api/v1/companies/by-city?"+q.Encode())
}

func (c *CompanyClient) Update(ctx context.Context, id string, body any) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/companies/id/"+url.PathEscape(id), body)
}

func (c *CompanyClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/companies/id/"+url.PathEscape(id))
}

func (c *CompanyClient) DecodeCompany(resp *Response) (*model.Company, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode company wrapper: %s: %w", resp.ToString(), err)
	}

	var company model.Company
	if err := json.Unmarshal(wrapper.Data, &company); err != nil {
		return nil, fmt.Errorf("could not decode company json: %s: %w", resp.ToString(), err)
	}

	return &company, nil
}

func (c *CompanyClient) DecodeCompanies(resp *Response) ([]*model.Company, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp: %s: %w", resp.ToString(), err)
	}

	var companies []*model.Company
	if err := json.Unmarshal(wrapper.Data, &companies); err != nil {
		return nil, nil, fmt.Errorf("could not decode company list: %s: %w", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return companies, metadata, nil
}
