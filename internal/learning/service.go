package learning

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/agripredict/service-api/internal/learning/entity"
	learningrepo "github.com/agripredict/service-api/internal/learning/repo"
	"github.com/agripredict/service-api/pkg/utilities"
)

var (
	ErrNotFound   = errors.New("learning tip not found")
	ErrValidation = errors.New("title and category are required")
)

// Service holds the learning-tip content management logic.
type Service struct {
	repo *learningrepo.TipRepo
}

func NewService(db *sqlx.DB, r *learningrepo.TipRepo) *Service {
	if r == nil {
		r = learningrepo.NewTipRepo(db)
	}
	return &Service{repo: r}
}

// TipInput carries create/update fields. On update, nil fields stay unchanged.
type TipInput struct {
	Title         *string
	Content       *string
	Image         *string
	VideoURL      *string
	PDF           *string
	Audio         *string
	ReferenceLink *string
	Category      *string
}

func (s *Service) Create(ctx context.Context, in TipInput) (*entity.Tip, error) {
	t := &entity.Tip{ID: utilities.NewKSUID()}
	applyInput(t, in)
	if strings.TrimSpace(t.Title) == "" || strings.TrimSpace(t.Category) == "" {
		return nil, ErrValidation
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.Tip, error) {
	return s.repo.List(ctx)
}

// ByCategory returns the tips of one category; no tips at all is reported as
// not found, matching the public API contract.
func (s *Service) ByCategory(ctx context.Context, category string) ([]*entity.Tip, error) {
	tips, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(tips) == 0 {
		return nil, ErrNotFound
	}
	return tips, nil
}

func (s *Service) Update(ctx context.Context, id string, in TipInput) (*entity.Tip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	applyInput(t, in)
	if strings.TrimSpace(t.Title) == "" || strings.TrimSpace(t.Category) == "" {
		return nil, ErrValidation
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

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

func applyInput(t *entity.Tip, in TipInput) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		t.Content = *in.Content
	}
	if in.Image != nil {
		t.Image = *in.Image
	}
	if in.VideoURL != nil {
		t.VideoURL = *in.VideoURL
	}
	if in.PDF != nil {
		t.PDF = *in.PDF
	}
	if in.Audio != nil {
		t.Audio = *in.Audio
	}
	if in.ReferenceLink != nil {
		t.ReferenceLink = *in.ReferenceLink
	}
	if in.Category != nil {
		t.Category = strings.TrimSpace(*in.Category)
	}
}
