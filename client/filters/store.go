package filters

import (
	"net/url"
	"strconv"
	"sync"
)

// Location is where the selection is persisted, e.g. the address bar.
type Location interface {
	Query() url.Values
	Replace(url.Values)
}

// MemoryLocation is a Location kept in process.
type MemoryLocation struct {
	mu sync.Mutex
	q  url.Values
}

// NewMemoryLocation starts from the given raw query string; an invalid string
// starts empty.
func NewMemoryLocation(rawQuery string) *MemoryLocation {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	return &MemoryLocation{q: q}
}

// Query returns a copy of the current values.
func (l *MemoryLocation) Query() url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneValues(l.q)
}

// Replace swaps in q.
func (l *MemoryLocation) Replace(q url.Values) {
	l.mu.Lock()
	l.q = cloneValues(q)
	l.mu.Unlock()
}

// String is the encoded query, "" when nothing is persisted.
func (l *MemoryLocation) String() string {
	return l.Query().Encode()
}

// Store maps a Values selection plus page onto a Location.
type Store struct {
	mu  sync.Mutex
	loc Location
}

// NewStore wraps loc.
func NewStore(loc Location) *Store {
	return &Store{loc: loc}
}

// Filters parses the persisted selection.
func (s *Store) Filters() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Parse(s.loc.Query())
}

// Page returns the persisted page, 1 when absent.
func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ParsePage(s.loc.Query())
}

// SetFilters persists v. The page is dropped: a new selection starts at page 1.
func (s *Store) SetFilters(v Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc.Replace(v.Encode())
}

// Update applies change to the persisted selection as one step, so concurrent
// updates cannot overwrite each other. The page is dropped as in SetFilters.
func (s *Store) Update(change func(*Values)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := Parse(s.loc.Query())
	change(&v)
	s.loc.Replace(v.Encode())
}

// SetPage persists n and keeps every other key. Page 1 is stored as absence.
func (s *Store) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.loc.Query()
	if n <= 1 {
		q.Del(KeyPage)
	} else {
		q.Set(KeyPage, strconv.Itoa(n))
	}
	s.loc.Replace(q)
}

// ResetFilters clears everything, page included.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc.Replace(url.Values{})
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
