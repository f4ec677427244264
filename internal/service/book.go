package service

import (
	"context"

	"github.com/fotowand/backend/internal/model"
)

type BookStore interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
}

type BookService struct {
	repo BookStore
}

func NewBookService(repo BookStore) *BookService {
	return &BookService{repo: repo}
}

func (s *BookService) GetAll(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}
