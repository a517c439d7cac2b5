package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"realtysite/internal/assets"
	"realtysite/internal/domain"
	"realtysite/internal/metrics"
	"realtysite/internal/repos"
	"realtysite/internal/validate"
)

// ContentStore is the persistence the workflow needs. *repos.ContentRepo
// implements it.
type ContentStore interface {
	Create(ctx context.Context, it domain.ContentItem) error
	Get(ctx context.Context, id string) (domain.ContentItem, error)
	ListByKind(ctx context.Context, kind domain.Kind) ([]domain.ContentItem, error)
	ListAll(ctx context.Context) ([]domain.ContentItem, error)
	Update(ctx context.Context, it domain.ContentItem) (domain.ContentItem, error)
}

// maxAttempts bounds the read-check-write loop of a transition.
const maxAttempts = 3

const maxTitleLen = 120

type ContentService struct {
	Items  ContentStore
	Assets assets.Store
	Now    func() time.Time
	log    *zap.Logger
}

func NewContentService(items ContentStore, store assets.Store, log *zap.Logger) *ContentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentService{Items: items, Assets: store, Now: time.Now, log: log}
}

func (s *ContentService) now() time.Time { return s.Now().UTC() }

type CreateInput struct {
	Kind          domain.Kind
	Title         string
	DisplayConfig json.RawMessage
	Uploads       []domain.Upload
}

// Create stores the uploads and then the DRAFT record. On any failure the
// uploaded assets are removed again and no record exists.
func (s *ContentService) Create(ctx context.Context, in CreateInput) (domain.ContentItem, error) {
	it, err := s.create(ctx, in)
	if err != nil {
		metrics.ObserveUpload(string(domain.KindOf(err)))
		return it, err
	}
	metrics.ObserveUpload("ok")
	return it, nil
}

func (s *ContentService) create(ctx context.Context, in CreateInput) (domain.ContentItem, error) {
	if !in.Kind.Valid() {
		return domain.ContentItem{}, domain.Validation("kind must be EVENT or PROMOTION")
	}
	if len(in.Uploads) == 0 {
		return domain.ContentItem{}, domain.Validation("at least one image is required")
	}
	for _, u := range in.Uploads {
		if !assets.IsImage(u.MimeType) {
			return domain.ContentItem{}, domain.Validation("%q is not an image", u.Filename)
		}
		if len(u.Data) == 0 {
			return domain.ContentItem{}, domain.Validation("%q is empty", u.Filename)
		}
	}
	title, ok := validate.Title(in.Title, maxTitleLen)
	if !ok {
		return domain.ContentItem{}, domain.Validation("title is longer than %d characters", maxTitleLen)
	}
	cfg, err := normalizeDisplayConfig(in.DisplayConfig)
	if err != nil {
		return domain.ContentItem{}, err
	}

	stored := make([]domain.Asset, 0, len(in.Uploads))
	for i, u := range in.Uploads {
		info, err := s.Assets.Put(ctx, u.Filename, u.MimeType, bytes.NewReader(u.Data))
		if err != nil {
			s.log.Warn("content.upload.failed", zap.String("filename", u.Filename), zap.Error(err))
			s.discard(ctx, stored)
			return domain.ContentItem{}, domain.UploadFailed(err)
		}
		stored = append(stored, domain.Asset{
			Key: info.Key, Filename: u.Filename, MimeType: u.MimeType, Size: info.Size, Position: i,
		})
	}

	now := s.now()
	it := domain.ContentItem{
		ID:            uuid.NewString(),
		Kind:          in.Kind,
		Title:         title,
		Assets:        stored,
		State:         domain.StateDraft,
		DisplayConfig: cfg,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Items.Create(ctx, it); err != nil {
		s.discard(ctx, stored)
		return domain.ContentItem{}, errors.Wrap(err, "create content")
	}
	s.log.Info("content.create",
		zap.String("id", it.ID), zap.String("kind", string(it.Kind)),
		zap.Int("assets", len(stored)), zap.Bool("audit", true))
	return it, nil
}

// discard removes assets of a creation that did not complete. It runs even
// if the request context is already cancelled.
func (s *ContentService) discard(ctx context.Context, list []domain.Asset) {
	ctx = context.WithoutCancel(ctx)
	for _, a := range list {
		if err := s.Assets.Delete(ctx, a.Key); err != nil {
			s.log.Error("content.asset.orphaned", zap.String("key", a.Key), zap.Error(err))
		}
	}
}

func normalizeDisplayConfig(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, domain.Validation("displayConfig must be a JSON object")
	}
	if p, ok := obj["priority"]; ok && string(p) != "null" {
		var n int
		if err := json.Unmarshal(p, &n); err != nil {
			return nil, domain.Validation("displayConfig.priority must be an integer")
		}
	}
	return raw, nil
}

func (s *ContentService) Get(ctx context.Context, id string) (domain.ContentItem, error) {
	return s.Items.Get(ctx, id)
}

func (s *ContentService) ListAll(ctx context.Context) ([]domain.ContentItem, error) {
	return s.Items.ListAll(ctx)
}

func stateIn(st domain.State, allowed ...domain.State) bool {
	for _, a := range allowed {
		if st == a {
			return true
		}
	}
	return false
}

// Schedule moves a DRAFT item to SCHEDULED. goLiveAt must lie in the future.
func (s *ContentService) Schedule(ctx context.Context, id string, goLiveAt time.Time) (domain.ContentItem, error) {
	if goLiveAt.IsZero() {
		return domain.ContentItem{}, domain.InvalidSchedule("a go-live time is required")
	}
	at := goLiveAt.UTC()
	return s.transition(ctx, id, "schedule", func(it *domain.ContentItem, now time.Time) error {
		if it.State != domain.StateDraft {
			return domain.InvalidTransition("schedule", it.State)
		}
		if !at.After(now) {
			return domain.InvalidSchedule("go-live time %s is not in the future", at.Format(time.RFC3339))
		}
		it.ScheduledGoLiveAt = &at
		it.State = domain.StateScheduled
		return nil
	})
}

// ForcePush makes a DRAFT or SCHEDULED item eligible immediately.
func (s *ContentService) ForcePush(ctx context.Context, id string) (domain.ContentItem, error) {
	return s.transition(ctx, id, "force-push", func(it *domain.ContentItem, _ time.Time) error {
		if !stateIn(it.State, domain.StateDraft, domain.StateScheduled) {
			return domain.InvalidTransition("force-push", it.State)
		}
		it.ForcePublished = true
		it.State = domain.StateLive
		return nil
	})
}

// Archive retires an item. The go-live time is kept for history.
func (s *ContentService) Archive(ctx context.Context, id string) (domain.ContentItem, error) {
	return s.transition(ctx, id, "archive", func(it *domain.ContentItem, _ time.Time) error {
		if !stateIn(it.State, domain.StateDraft, domain.StateScheduled, domain.StateLive) {
			return domain.InvalidTransition("archive", it.State)
		}
		it.ForcePublished = false
		it.State = domain.StateArchived
		return nil
	})
}

// Reinstate returns an archived item to DRAFT. It has to be scheduled or
// force-pushed again before it shows.
func (s *ContentService) Reinstate(ctx context.Context, id string) (domain.ContentItem, error) {
	return s.transition(ctx, id, "reinstate", func(it *domain.ContentItem, _ time.Time) error {
		if it.State != domain.StateArchived {
			return domain.InvalidTransition("reinstate", it.State)
		}
		it.ScheduledGoLiveAt = nil
		it.ForcePublished = false
		it.State = domain.StateDraft
		return nil
	})
}

func (s *ContentService) Unschedule(ctx context.Context, id string) (domain.ContentItem, error) {
	return s.transition(ctx, id, "unschedule", func(it *domain.ContentItem, _ time.Time) error {
		if !stateIn(it.State, domain.StateScheduled, domain.StateLive) {
			return domain.InvalidTransition("unschedule", it.State)
		}
		it.ScheduledGoLiveAt = nil
		it.ForcePublished = false
		it.State = domain.StateDraft
		return nil
	})
}

// transition reads the item, lets apply check and mutate a copy, and writes
// it back guarded by the version read. A stale version restarts the cycle so
// the guard always sees current state.
func (s *ContentService) transition(ctx context.Context, id, op string, apply func(*domain.ContentItem, time.Time) error) (domain.ContentItem, error) {
	it, err := s.runTransition(ctx, id, op, apply)
	if err != nil {
		metrics.ObserveTransition(op, string(domain.KindOf(err)))
		return it, err
	}
	metrics.ObserveTransition(op, "ok")
	return it, nil
}

func (s *ContentService) runTransition(ctx context.Context, id, op string, apply func(*domain.ContentItem, time.Time) error) (domain.ContentItem, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		cur, err := s.Items.Get(ctx, id)
		if err != nil {
			return domain.ContentItem{}, err
		}
		now := s.now()
		next := cur
		if err := apply(&next, now); err != nil {
			return cur, err
		}
		next.UpdatedAt = now

		saved, err := s.Items.Update(ctx, next)
		if errors.Is(err, repos.ErrStaleVersion) {
			metrics.TransitionRetries.Inc()
			s.log.Debug("content.transition.retry",
				zap.String("op", op), zap.String("id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return cur, err
		}
		s.log.Info("content.transition",
			zap.String("op", op), zap.String("id", id),
			zap.String("from", string(cur.State)), zap.String("to", string(saved.State)),
			zap.Bool("audit", true))
		return saved, nil
	}
	s.log.Warn("content.transition.conflict", zap.String("op", op), zap.String("id", id))
	return domain.ContentItem{}, domain.Conflict(id)
}

// ParseGoLive reads an RFC 3339 timestamp or an HTML datetime-local value,
// the latter interpreted in loc.
func ParseGoLive(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.InvalidSchedule("a go-live time is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.InvalidSchedule("%q is not a valid go-live time", raw)
}
