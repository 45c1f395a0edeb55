package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/model"
)

type NewsRepository interface {
	TopHeadlines(ctx context.Context) ([]model.Article, error)
}

type newsRepository struct {
	httpClient *http.Client
	url        string
}

// NewNewsRepository reads headlines from url, or the configured news URL when url is empty.
func NewNewsRepository(url string, httpClient ...*http.Client) NewsRepository {
	client := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	if url == "" {
		url = config.GetNewsApiUrl()
	}
	return &newsRepository{httpClient: client, url: url}
}

func (r *newsRepository) TopHeadlines(ctx context.Context) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news: %w (status %d)", ErrExternalAPI, resp.StatusCode)
	}
	var data model.NewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("news: %w: failed to parse response: %v", ErrExternalAPI, err)
	}
	if data.Articles == nil {
		return nil, ErrNoArticles
	}
	return data.Articles, nil
}
