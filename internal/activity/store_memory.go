package activity

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is a mutex-guarded map store used by unit tests and dev mode.
type InMemoryStore struct {
	mu         sync.RWMutex
	activities map[int64]*Activity
	nextID     int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		activities: make(map[int64]*Activity),
		nextID:     1,
	}
}

func (s *InMemoryStore) Create(_ context.Context, a *Activity) (*Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneActivity(a)
	stored.ID = s.nextID
	s.nextID++
	s.activities[stored.ID] = stored
	return cloneActivity(stored), nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneActivity(a), nil
}

func (s *InMemoryStore) FindMany(_ context.Context, filter Filter) ([]*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Activity, 0)
	for _, a := range s.activities {
		if s.matches(a, filter) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []*Activity{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*Activity, 0, end-offset)
	for _, a := range matched[offset:end] {
		page = append(page, cloneActivity(a))
	}
	return page, nil
}

func (s *InMemoryStore) Update(_ context.Context, a *Activity) (*Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activities[a.ID]; !ok {
		return nil, ErrNotFound
	}
	stored := cloneActivity(a)
	s.activities[a.ID] = stored
	return cloneActivity(stored), nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activities[id]; !ok {
		return ErrNotFound
	}
	delete(s.activities, id)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.activities {
		if s.matches(a, filter) {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) matches(a *Activity, filter Filter) bool {
	if filter.Status != "" && a.Status != filter.Status {
		return false
	}
	if filter.OwnerID != 0 && a.OwnerID != filter.OwnerID {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			return false
		}
	}
	return true
}

func cloneActivity(a *Activity) *Activity {
	c := *a
	if a.ActivityDate != nil {
		v := *a.ActivityDate
		c.ActivityDate = &v
	}
	if a.ApprovedBy != nil {
		v := *a.ApprovedBy
		c.ApprovedBy = &v
	}
	if a.ApprovedAt != nil {
		v := *a.ApprovedAt
		c.ApprovedAt = &v
	}
	return &c
}
