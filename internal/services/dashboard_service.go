package services

import (
	"context"
	"sort"
	"strings"

	"prepwise/interview/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	topTechstackCount  = 5
	recentActivitySize = 5
)

type Dashboard struct {
	History    []models.Interview `json:"history"`
	Public     []models.Interview `json:"public"`
	Scheduled  []models.Interview `json:"scheduled"`
	Incomplete []models.Interview `json:"incomplete"`
	// interviews the sweep marked incomplete on this request
	Expired int `json:"expired"`
}

type TechCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Analytics struct {
	Total         int                `json:"total"`
	Completed     int                `json:"completed"`
	InProgress    int                `json:"inProgress"`
	Scheduled     int                `json:"scheduled"`
	Incomplete    int                `json:"incomplete"`
	TopTechstacks []TechCount        `json:"topTechstacks"`
	TypeCounts    map[string]int     `json:"typeCounts"`
	Recent        []models.Interview `json:"recent"`
}

type DashboardService struct {
	interviews *InterviewService
	sweeper    *Sweeper
}

func NewDashboardService(interviews *InterviewService, sweeper *Sweeper) *DashboardService {
	return &DashboardService{interviews: interviews, sweeper: sweeper}
}

// Dashboard sweeps the user's stale scheduled interviews and then loads the
// four dashboard sections concurrently. A failing sweep never fails the
// dashboard; a failing read does.
func (s *DashboardService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	d := &Dashboard{Expired: s.sweeper.Sweep(ctx, userID)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := s.interviews.ListByUser(gctx, userID)
		if err != nil {
			return err
		}
		d.History = make([]models.Interview, 0, len(all))
		for _, iv := range all {
			if iv.InHistory() {
				d.History = append(d.History, iv)
			}
		}
		return nil
	})
	g.Go(func() (err error) {
		d.Public, err = s.interviews.PublicFeed(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Scheduled, err = s.interviews.Scheduled(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Incomplete, err = s.interviews.Incomplete(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// Analytics summarizes the user's interviews
func (s *DashboardService) Analytics(ctx context.Context, userID string) (*Analytics, error) {
	all, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{Total: len(all), TypeCounts: map[string]int{}}
	techCounts := map[string]int{}
	for _, iv := range all {
		switch iv.EffectiveStatus() {
		case models.StatusCompleted:
			a.Completed++
		case models.StatusInProgress:
			a.InProgress++
		case models.StatusScheduled:
			a.Scheduled++
		case models.StatusIncomplete:
			a.Incomplete++
		}
		if iv.Type != "" {
			a.TypeCounts[iv.Type]++
		}
		for _, tech := range iv.Techstack {
			if tech = strings.TrimSpace(tech); tech != "" {
				techCounts[tech]++
			}
		}
	}

	a.TopTechstacks = topTechstacks(techCounts, topTechstackCount)
	// ListByUser is newest first
	a.Recent = all
	if len(a.Recent) > recentActivitySize {
		a.Recent = a.Recent[:recentActivitySize]
	}
	return a, nil
}

func topTechstacks(counts map[string]int, n int) []TechCount {
	out := make([]TechCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, TechCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
