package newsapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"stocktracker/providers"
)

const DefaultBaseURL = "https://newsapi.org/v2"

// Config holds the news client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client fetches articles from the NewsAPI "everything" endpoint.
type Client struct {
	cfg  Config
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
	}
}

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// FetchNews returns articles matching query published inside [from, to].
func (c *Client) FetchNews(ctx context.Context, query string, from, to time.Time) ([]providers.Article, error) {
	var body everythingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"from":   from.UTC().Format(time.RFC3339),
			"to":     to.UTC().Format(time.RFC3339),
			"sortBy": "publishedAt",
			"apiKey": c.cfg.APIKey,
		}).
		SetResult(&body).
		Get("/everything")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", providers.ErrTransientNetwork, err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("%w: status 429", providers.ErrRateLimited)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", providers.ErrTransientNetwork, resp.StatusCode())
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("%w: status %q code %q: %s",
			providers.ErrInvalidResponse, body.Status, body.Code, body.Message)
	}

	articles := make([]providers.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.URL == "" {
			continue
		}
		articles = append(articles, providers.Article{
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
