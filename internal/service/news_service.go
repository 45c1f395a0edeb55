package service

import (
	"context"

	"github.com/fakhrymubarak/skytrackr/internal/model"
	"github.com/fakhrymubarak/skytrackr/internal/repository"
)

type NewsServiceInterface interface {
	Headlines(ctx context.Context) ([]model.Article, error)
}

type NewsService struct {
	NewsRepo repository.NewsRepository
}

func NewNewsService(repo repository.NewsRepository) *NewsService {
	if repo == nil {
		repo = repository.NewNewsRepository("")
	}
	return &NewsService{NewsRepo: repo}
}

func (s *NewsService) Headlines(ctx context.Context) ([]model.Article, error) {
	return s.NewsRepo.TopHeadlines(ctx)
}
