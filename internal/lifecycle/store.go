package lifecycle

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/content-lifecycle-console/internal/models"
)

// View names a derived collection over the store
type View string

const (
	ViewAll       View = "all"
	ViewActive    View = "active"
	ViewPending   View = "pending"
	ViewApproved  View = "approved"
	ViewPublished View = "published"
	ViewRejected  View = "rejected"
	ViewDrafts    View = "drafts"
	ViewArchived  View = "archived"
)

// Views lists every view in display order
var Views = []View{ViewAll, ViewActive, ViewPending, ViewApproved, ViewPublished, ViewRejected, ViewDrafts, ViewArchived}

// ParseView converts a query value into a View. An empty value means all.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewAll, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid view %q", s)
}

// Matches reports whether item belongs to the view.
// Status views ignore the archived flag.
func (v View) Matches(item *models.ContentItem) bool {
	switch v {
	case ViewAll:
		return true
	case ViewActive:
		return !item.Archived
	case ViewPending:
		return item.Status == models.StatusPendingApproval
	case ViewApproved:
		return item.Status == models.StatusApproved || item.Status == models.StatusPublished
	case ViewPublished:
		return item.Status == models.StatusPublished
	case ViewRejected:
		return item.Status == models.StatusRejected
	case ViewDrafts:
		return item.Status == models.StatusDraft
	case ViewArchived:
		return item.Archived
	}
	return false
}

// Filter selects items from the store
type Filter struct {
	View     View
	Query    string // case-insensitive match on title, body or author username
	AuthorID int64
}

func (f Filter) matches(item *models.ContentItem) bool {
	view := f.View
	if view == "" {
		view = ViewAll
	}
	if !view.Matches(item) {
		return false
	}
	if f.AuthorID != 0 && (item.Author == nil || item.Author.ID != f.AuthorID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(item.Title + "\n" + item.Body)
		if item.Author != nil {
			haystack += "\n" + strings.ToLower(item.Author.Username)
		}
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Store is the single normalized collection of one content kind.
// Views are computed from it on every read and never stored.
type Store struct {
	mu    sync.RWMutex
	items map[int64]*models.ContentItem
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{items: make(map[int64]*models.ContentItem)}
}

// Get returns a copy of the item
func (s *Store) Get(id int64) (*models.ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return item.Clone(), true
}

// Put inserts or replaces an item. A known created_at is never overwritten.
func (s *Store) Put(item *models.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(item)
}

func (s *Store) put(item *models.ContentItem) {
	cp := item.Clone()
	if existing, ok := s.items[item.ID]; ok && !existing.CreatedAt.IsZero() {
		cp.CreatedAt = existing.CreatedAt
	}
	s.items[item.ID] = cp
}

// Update applies fn to the stored item and returns a copy of the result
func (s *Store) Update(id int64, fn func(item *models.ContentItem)) (*models.ContentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, false
	}
	fn(item)
	return item.Clone(), true
}

// Remove deletes the item from the store and therefore from every view
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// Merge upserts a batch and, when prune is set, drops items matching
// status that are absent from the batch. Ids in skip are left untouched.
// It returns the number of pruned items.
func (s *Store) Merge(items []*models.ContentItem, status models.Status, prune bool, skip map[int64]bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		seen[item.ID] = true
		if skip[item.ID] {
			continue
		}
		s.put(item)
	}

	if !prune {
		return 0
	}

	pruned := 0
	for id, item := range s.items {
		if seen[id] || skip[id] {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		delete(s.items, id)
		pruned++
	}
	return pruned
}

// Select returns copies of the matching items, newest first
func (s *Store) Select(filter Filter) []*models.ContentItem {
	s.mu.RLock()
	out := make([]*models.ContentItem, 0, len(s.items))
	for _, item := range s.items {
		if filter.matches(item) {
			out = append(out, item.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Counts returns the size of every view
func (s *Store) Counts() map[View]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[View]int, len(Views))
	for _, v := range Views {
		counts[v] = 0
	}
	for _, item := range s.items {
		for _, v := range Views {
			if v.Matches(item) {
				counts[v]++
			}
		}
	}
	return counts
}

// Len returns the number of stored items
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset drops every item
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]*models.ContentItem)
}
