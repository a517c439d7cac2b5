// Package publication decides which content items are shown to visitors.
//
// Nothing here performs I/O or reads the wall clock: callers pass "now", so
// the same items and the same instant always produce the same result.
package publication

import (
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"realtysite/internal/domain"
)

// Eligible reports whether an item should be rendered at now. Stored state
// other than ARCHIVED has no say in the answer.
func Eligible(it domain.ContentItem, now time.Time) bool {
	if it.State == domain.StateArchived {
		return false
	}
	if it.ForcePublished {
		return true
	}
	return it.ScheduledGoLiveAt != nil && !it.ScheduledGoLiveAt.After(now)
}

// EffectiveState is what the admin dashboard shows: LIVE once an item is
// eligible, the stored state otherwise.
func EffectiveState(it domain.ContentItem, now time.Time) domain.State {
	if Eligible(it, now) {
		return domain.StateLive
	}
	return it.State
}

type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

type ranked struct {
	item     domain.ContentItem
	at       time.Time
	priority *int
}

// Visible returns the eligible items of kind in display order.
//
// Order is ascending go-live time (created time for items never scheduled),
// ties by id. Promotions carrying displayConfig.priority come before all
// others, ascending by priority.
func (e *Engine) Visible(items []domain.ContentItem, kind domain.Kind, now time.Time) []domain.ContentItem {
	var rs []ranked
	for _, it := range items {
		if !e.wellFormed(it) {
			continue
		}
		if it.Kind != kind || !Eligible(it, now) {
			continue
		}
		r := ranked{item: it, at: it.CreatedAt}
		if it.ScheduledGoLiveAt != nil {
			r.at = *it.ScheduledGoLiveAt
		}
		if kind == domain.KindPromotion {
			r.priority = e.priority(it)
		}
		rs = append(rs, r)
	}

	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		switch {
		case a.priority != nil && b.priority == nil:
			return true
		case a.priority == nil && b.priority != nil:
			return false
		case a.priority != nil && *a.priority != *b.priority:
			return *a.priority < *b.priority
		}
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.item.ID < b.item.ID
	})

	out := make([]domain.ContentItem, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.item)
	}
	return out
}

func (e *Engine) wellFormed(it domain.ContentItem) bool {
	var reason string
	switch {
	case it.ID == "":
		reason = "missing id"
	case !it.Kind.Valid():
		reason = "unknown kind"
	case !it.State.Valid():
		reason = "unknown state"
	default:
		return true
	}
	e.log.Warn("publication.item.skipped",
		zap.String("id", it.ID),
		zap.String("kind", string(it.Kind)),
		zap.String("state", string(it.State)),
		zap.String("reason", reason),
	)
	return false
}

func (e *Engine) priority(it domain.ContentItem) *int {
	if len(it.DisplayConfig) == 0 {
		return nil
	}
	var dc struct {
		Priority *int `json:"priority"`
	}
	if err := json.Unmarshal(it.DisplayConfig, &dc); err != nil {
		e.log.Warn("publication.display_config.invalid", zap.String("id", it.ID), zap.Error(err))
		return nil
	}
	return dc.Priority
}
