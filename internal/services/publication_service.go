package services

import (
	"context"
	"time"

	"realtysite/internal/domain"
	"realtysite/internal/metrics"
	"realtysite/internal/publication"
)

// PublicationService answers "what is visible right now" for the public pages.
type PublicationService struct {
	Items  ContentStore
	Engine *publication.Engine
}

func NewPublicationService(items ContentStore, engine *publication.Engine) *PublicationService {
	if engine == nil {
		engine = publication.NewEngine(nil)
	}
	return &PublicationService{Items: items, Engine: engine}
}

func (s *PublicationService) Visible(ctx context.Context, kind domain.Kind, now time.Time) ([]domain.ContentItem, error) {
	started := time.Now()
	items, err := s.Items.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	visible := s.Engine.Visible(items, kind, now)
	metrics.ObserveVisible(string(kind), started, len(visible))
	return visible, nil
}

// DashboardRow pairs a stored item with what visitors currently see of it.
type DashboardRow struct {
	Item      domain.ContentItem
	Effective domain.State
	Eligible  bool
}

func (s *PublicationService) Dashboard(ctx context.Context, now time.Time) ([]DashboardRow, error) {
	items, err := s.Items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]DashboardRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, DashboardRow{
			Item:      it,
			Effective: publication.EffectiveState(it, now),
			Eligible:  publication.Eligible(it, now),
		})
	}
	return rows, nil
}
