// Package ratelimit decides which candidates may be published in a run.
// The gate is pure: posting history arrives as a Window derived from the
// store each run, never cached in process memory.
package ratelimit

import (
	"sort"
	"time"

	"github.com/futbot/futbot/internal/classify"
	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/store"
)

// Each scheduled run publishes at most one item; min spacing already bounds
// run frequency to one slot. Bursty backlogs drain one post per run.
const maxPerRun = 1

// Candidate pairs an item with its classification for admission.
type Candidate struct {
	Item           news.Item
	Classification classify.Classification
}

// Window is the read-only view of posting history a single admission needs.
type Window struct {
	// LastPost is the most recent posted_at, zero when nothing was posted.
	LastPost time.Time
	// PostsToday counts posts in the current UTC calendar day.
	PostsToday int
}

// WindowFrom derives the rate window from PostRecords ordered by posted_at.
func WindowFrom(records []store.PostRecord, now time.Time) Window {
	var w Window
	dayStart := now.UTC().Truncate(24 * time.Hour)
	for _, rec := range records {
		if rec.PostedAt.After(w.LastPost) {
			w.LastPost = rec.PostedAt
		}
		if !rec.PostedAt.UTC().Before(dayStart) {
			w.PostsToday++
		}
	}
	return w
}

// Gate enforces minimum spacing between posts and the rolling daily cap.
type Gate struct {
	MinSpacing time.Duration
	DailyCap   int
}

func NewGate(minMinutesBetweenPosts, dailyPostCap int) *Gate {
	return &Gate{
		MinSpacing: time.Duration(minMinutesBetweenPosts) * time.Minute,
		DailyCap:   dailyPostCap,
	}
}

// Admit returns the candidates allowed to publish this run, best first.
// An empty result is a normal outcome; Admit never errors.
func (g *Gate) Admit(candidates []Candidate, w Window, now time.Time) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	// The spacing floor is absolute; many candidates cannot buy it down.
	if !w.LastPost.IsZero() && now.Sub(w.LastPost) < g.MinSpacing {
		return nil
	}

	remaining := g.DailyCap - w.PostsToday
	if remaining <= 0 {
		return nil
	}

	budget := maxPerRun
	if remaining < budget {
		budget = remaining
	}
	if len(candidates) < budget {
		budget = len(candidates)
	}

	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := priority(ranked[i].Classification.Category), priority(ranked[j].Classification.Category)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Item.PublishedAt.Before(ranked[j].Item.PublishedAt)
	})

	return ranked[:budget]
}

func priority(c news.Category) int {
	switch c {
	case news.CategoryOfficial:
		return 2
	case news.CategoryRumor:
		return 1
	default:
		return 0
	}
}
