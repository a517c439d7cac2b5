package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"realtysite/internal/domain"
	"realtysite/internal/propertydetails"
	"realtysite/internal/repos"
	"realtysite/internal/validate"
)

type ListingService struct {
	Listings *repos.ListingRepo
	Now      func() time.Time
	log      *zap.Logger
}

func NewListingService(listings *repos.ListingRepo, log *zap.Logger) *ListingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingService{Listings: listings, Now: time.Now, log: log}
}

// ValidateDetails checks a property-details payload for the named category.
func (s *ListingService) ValidateDetails(category string, payload []byte) (propertydetails.Details, error) {
	cat, ok := propertydetails.ParseCategory(category)
	if !ok {
		return propertydetails.Details{}, domain.Validation("unknown property category %q", category)
	}
	return propertydetails.Validate(cat, payload)
}

type ListingInput struct {
	ID       string
	Title    string
	Category string
	Payload  []byte
}

// Save validates the details and stores the listing. An empty ID creates a
// new listing; an existing ID replaces its contents.
func (s *ListingService) Save(ctx context.Context, in ListingInput) (domain.Listing, error) {
	title, ok := validate.Title(in.Title, maxTitleLen)
	if !ok || title == "" {
		return domain.Listing{}, domain.Validation("title is required and at most %d characters", maxTitleLen)
	}
	details, err := s.ValidateDetails(in.Category, in.Payload)
	if err != nil {
		return domain.Listing{}, err
	}
	body, err := json.Marshal(details)
	if err != nil {
		return domain.Listing{}, errors.Wrap(err, "encode listing details")
	}

	now := s.Now().UTC()
	l := domain.Listing{
		ID:        in.ID,
		Title:     title,
		Category:  string(details.Category),
		Details:   body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if err := s.Listings.Save(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	s.log.Info("listing.save", zap.String("id", l.ID), zap.String("category", l.Category), zap.Bool("audit", true))
	return s.Listings.Get(ctx, l.ID)
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.Listing, error) {
	return s.Listings.Get(ctx, id)
}
