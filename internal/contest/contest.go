package contest

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

var ErrInvalidWindow = errors.New("contest start time is after end time")

// Contest is read-only configuration from the admission path's point of view.
// Build it with New so that membership lookups don't scan the problem list.
type Contest struct {
	ID       int64
	Title    string
	Subtitle string

	// Unix seconds, half-open window [StartTime, EndTime).
	StartTime int64
	EndTime   int64

	Type Type

	HolderID       int64
	IsPublic       bool
	HideStatistics bool

	problems   []int64
	problemSet mapset.Set[int64]
	admins     mapset.Set[int64]
}

type Config struct {
	ID             int64
	Title          string
	Subtitle       string
	StartTime      int64
	EndTime        int64
	Type           Type
	Problems       []int64
	Admins         []int64
	HolderID       int64
	IsPublic       bool
	HideStatistics bool
}

func New(cfg Config) (*Contest, error) {
	c := &Contest{
		ID:             cfg.ID,
		Title:          cfg.Title,
		Subtitle:       cfg.Subtitle,
		StartTime:      cfg.StartTime,
		EndTime:        cfg.EndTime,
		Type:           cfg.Type,
		HolderID:       cfg.HolderID,
		IsPublic:       cfg.IsPublic,
		HideStatistics: cfg.HideStatistics,
		admins:         mapset.NewThreadUnsafeSet(cfg.Admins...),
	}
	c.SetProblemsNoCheck(cfg.Problems)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Contest) Validate() error {
	if c.StartTime > c.EndTime {
		return fmt.Errorf("%w: contest %d [%d, %d)", ErrInvalidWindow, c.ID, c.StartTime, c.EndTime)
	}
	if _, err := c.Type.MarshalText(); err != nil {
		return err
	}
	return nil
}

// Problems returns a copy of the ordered problem list.
func (c *Contest) Problems() []int64 {
	res := make([]int64, len(c.problems))
	copy(res, c.problems)
	return res
}

// Admins returns the admin ids in no particular order.
func (c *Contest) Admins() []int64 {
	if c.admins == nil {
		return nil
	}
	return c.admins.ToSlice()
}

// SetProblemsNoCheck replaces the problem list, dropping repeated ids while
// keeping the first occurrence's position.
func (c *Contest) SetProblemsNoCheck(ids []int64) {
	set := mapset.NewThreadUnsafeSetWithSize[int64](len(ids))
	ordered := make([]int64, 0, len(ids))
	for _, id := range ids {
		if set.Add(id) {
			ordered = append(ordered, id)
		}
	}
	c.problems = ordered
	c.problemSet = set
}

// ProblemLookup reports whether a problem exists in problem storage.
type ProblemLookup interface {
	ProblemExists(ctx context.Context, id int64) (bool, error)
}

// SetProblems is SetProblemsNoCheck that silently skips ids the lookup
// doesn't know about.
func (c *Contest) SetProblems(ctx context.Context, lookup ProblemLookup, ids []int64) error {
	known := make([]int64, 0, len(ids))
	for _, id := range ids {
		ok, err := lookup.ProblemExists(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to look up problem %d: %w", id, err)
		}
		if ok {
			known = append(known, id)
		}
	}
	c.SetProblemsNoCheck(known)
	return nil
}

func (c *Contest) SetAdmins(ids []int64) {
	c.admins = mapset.NewThreadUnsafeSet(ids...)
}

func (c *Contest) Contains(problemID int64) bool {
	if c.problemSet == nil {
		return false
	}
	return c.problemSet.Contains(problemID)
}

// InWindow reports whether t falls into [StartTime, EndTime).
func (c *Contest) InWindow(t int64) bool {
	return t >= c.StartTime && t < c.EndTime
}

func (c *Contest) IsRunning(now int64) bool {
	return c.InWindow(now)
}

func (c *Contest) IsEnded(now int64) bool {
	return now >= c.EndTime
}
