package service

import (
	"context"

	"tariffengine/internal/model"
	"tariffengine/internal/repository"
)

type SearchHistoryService interface {
	ListSearchHistory(ctx context.Context, page, limit int) ([]model.SearchHistory, int64, error)
}

type searchHistoryService struct {
	historyRepo repository.SearchHistoryRepository
}

func NewSearchHistoryService(historyRepo repository.SearchHistoryRepository) SearchHistoryService {
	return &searchHistoryService{historyRepo: historyRepo}
}

func (s *searchHistoryService) ListSearchHistory(ctx context.Context, page, limit int) ([]model.SearchHistory, int64, error) {
	return s.historyRepo.List(ctx, page, limit)
}
