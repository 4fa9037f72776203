package service

import (
	"errors"
	"sync"

	"github.com/mybillport/billport/internal/cache"
	"github.com/mybillport/billport/internal/split"
)

// ErrSessionNotFound is returned for unknown or expired split sessions.
var ErrSessionNotFound = errors.New("split session not found")

// SplitService keeps short-lived split sessions in memory. Sessions expire
// after the configured TTL; nothing about a split is persisted.
type SplitService struct {
	mu       sync.Mutex
	sessions *cache.TTLStore[*split.SplitBill]
}

// NewSplitService builds a SplitService over the given session store.
func NewSplitService(sessions *cache.TTLStore[*split.SplitBill]) *SplitService {
	return &SplitService{sessions: sessions}
}

// Create starts a new split session. Explicit shares win when provided;
// otherwise the total is divided equally among the named participants.
func (s *SplitService) Create(billName string, total float64, names []string, shares []split.Share) (*split.SplitBill, error) {
	var (
		sb  *split.SplitBill
		err error
	)
	if len(shares) > 0 {
		sb, err = split.NewCustom(billName, total, shares)
	} else {
		sb, err = split.New(billName, total, names)
	}
	if err != nil {
		return nil, err
	}
	s.sessions.Set(sb.ID, sb)
	return sb, nil
}

// Get returns the session, or ErrSessionNotFound once it has expired.
func (s *SplitService) Get(id string) (*split.SplitBill, error) {
	sb, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sb, nil
}

// MarkPaid flips one participant's paid flag. The mutex serializes
// concurrent updates to the same in-memory session.
func (s *SplitService) MarkPaid(id, name string, paid bool) (*split.SplitBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sb, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := sb.MarkPaid(name, paid); err != nil {
		return nil, err
	}
	return sb, nil
}
