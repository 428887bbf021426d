package contact

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/agripredict/service-api/internal/contact/entity"
	contactrepo "github.com/agripredict/service-api/internal/contact/repo"
	"github.com/agripredict/service-api/pkg/utilities"
)

var (
	ErrNotFound   = errors.New("message not found")
	ErrValidation = errors.New("name, email and message are required")
)

const DefaultPageSize = 5

// Service holds the contact inbox logic.
type Service struct {
	repo *contactrepo.MessageRepo
}

func NewService(db *sqlx.DB, r *contactrepo.MessageRepo) *Service {
	if r == nil {
		r = contactrepo.NewMessageRepo(db)
	}
	return &Service{repo: r}
}

// Save stores one incoming contact message.
func (s *Service) Save(ctx context.Context, name, email, subject, body string) (*entity.Message, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	body = strings.TrimSpace(body)
	if name == "" || email == "" || body == "" {
		return nil, ErrValidation
	}
	m := &entity.Message{
		ID:      utilities.NewKSUID(),
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(subject),
		Body:    body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Page is one page of the inbox with pagination totals.
type Page struct {
	Messages    []*entity.Message
	TotalPages  int
	CurrentPage int
}

// List returns the requested page, newest first. Page numbers start at 1;
// out-of-range inputs are clamped to the defaults.
func (s *Service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	totalPages := (total + limit - 1) / limit
	return &Page{Messages: messages, TotalPages: totalPages, CurrentPage: page}, nil
}

// Delete removes a message by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
