package inhire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/honeycarbs/talentsync/pkg/httpx"
)

const defaultTimeout = 15 * time.Second

// Config holds InHire API credentials and tuning
type Config struct {
	BaseURL string
	Tenant  string
	Token   string

	Timeout    time.Duration
	Retry      httpx.RetryConfig
	HTTPClient *http.Client
}

// Client is a thin wrapper over the InHire REST API
type Client struct {
	baseURL string
	tenant  string
	token   string
	http    *http.Client
	retry   httpx.RetryConfig
}

// NewClient validates cfg and builds a Client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("inhire: base url is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("inhire: token is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("inhire: invalid base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tenant:  cfg.Tenant,
		token:   cfg.Token,
		http:    httpClient,
		retry:   cfg.Retry,
	}, nil
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	if c.tenant != "" {
		h.Set("X-Tenant", c.tenant)
	}
	return h
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return httpx.DoJSON(ctx, c.http, method, c.baseURL+path, c.header(), body, out, c.retry)
}

// CreateTalent creates a talent from a free-form payload
func (c *Client) CreateTalent(ctx context.Context, payload map[string]any) (Talent, error) {
	var out Talent
	if err := c.do(ctx, http.MethodPost, "/talents", payload, &out); err != nil {
		return Talent{}, fmt.Errorf("inhire: create talent: %w", err)
	}
	if out.ID == "" {
		return Talent{}, errors.New("inhire: create talent: response carried no id")
	}
	return out, nil
}

// UpdateTalent patches an existing talent
func (c *Client) UpdateTalent(ctx context.Context, talentID string, payload map[string]any) error {
	if err := c.do(ctx, http.MethodPatch, "/talents/"+url.PathEscape(talentID), payload, nil); err != nil {
		return fmt.Errorf("inhire: update talent: %w", err)
	}
	return nil
}

// DeleteTalent removes a talent
func (c *Client) DeleteTalent(ctx context.Context, talentID string) error {
	if err := c.do(ctx, http.MethodDelete, "/talents/"+url.PathEscape(talentID), nil, nil); err != nil {
		return fmt.Errorf("inhire: delete talent: %w", err)
	}
	return nil
}

// AddTalentToJob places a talent into a job pipeline
func (c *Client) AddTalentToJob(ctx context.Context, jobID, talentID string) (JobTalent, error) {
	var out JobTalent
	path := "/job-talents/" + url.PathEscape(jobID) + "/talents"
	if err := c.do(ctx, http.MethodPost, path, addTalentRequest{TalentID: talentID}, &out); err != nil {
		return JobTalent{}, fmt.Errorf("inhire: add talent to job: %w", err)
	}
	if out.JobID == "" {
		out.JobID = jobID
	}
	if out.TalentID == "" {
		out.TalentID = talentID
	}
	return out, nil
}

// RemoveApplication removes a talent from a job pipeline by application id
func (c *Client) RemoveApplication(ctx context.Context, applicationID string) error {
	path := "/job-talents/talents/" + url.PathEscape(applicationID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("inhire: remove application: %w", err)
	}
	return nil
}
