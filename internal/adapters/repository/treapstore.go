package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/types"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then profile id ASC (deterministic). "less" means ranks
// earlier, so an in-order walk yields the leaderboard from best to worst.

const maxScore = 100

type record struct {
	name  string
	score int
}

type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority derives a heap priority from the id. Scores cluster on a small integer
// range, so they would make a poor priority.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score int) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	return walk(n.left, visit) && visit(n) && walk(n.right, visit)
}

// TreapStore is the default Store.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
}

// NewTreapStore returns an empty leaderboard.
func NewTreapStore() *TreapStore {
	return &TreapStore{byID: make(map[string]record)}
}

func validScore(score int) error {
	if score < 0 || score > maxScore {
		return fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	return nil
}

// Upsert implements Store.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(_ context.Context, profileID, name string, score int) error {
	if profileID == "" {
		return ErrEmptyID
	}
	if err := validScore(score); err != nil {
		return err
	}
	start := time.Now()

	s.mu.Lock()
	if old, ok := s.byID[profileID]; ok {
		s.root = deleteNode(s.root, profileID, old.score)
	}
	s.byID[profileID] = record{name: name, score: score}
	s.root = insert(s.root, profileID, score)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateLeaderboardProfiles(count)
	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(_ context.Context, profileID string) error {
	s.mu.Lock()
	old, ok := s.byID[profileID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.root = deleteNode(s.root, profileID, old.score)
	delete(s.byID, profileID)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateLeaderboardProfiles(count)
	return nil
}

// Replace implements Store.Replace. Invalid rows abort the swap.
func (s *TreapStore) Replace(_ context.Context, rows []types.Entry) error {
	byID := make(map[string]record, len(rows))
	var root *node
	for _, r := range rows {
		if r.ProfileID == "" {
			return ErrEmptyID
		}
		if err := validScore(r.Score); err != nil {
			return err
		}
		if old, ok := byID[r.ProfileID]; ok {
			root = deleteNode(root, r.ProfileID, old.score)
		}
		byID[r.ProfileID] = record{name: r.Name, score: r.Score}
		root = insert(root, r.ProfileID, r.Score)
	}

	s.mu.Lock()
	s.root, s.byID = root, byID
	s.mu.Unlock()

	metrics.UpdateLeaderboardProfiles(len(byID))
	return nil
}

// Rank implements Store.Rank. Equal scores share a rank; the next distinct score
// takes the following rank (1, 1, 2).
func (s *TreapStore) Rank(_ context.Context, profileID string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[profileID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}

	rank, prev := 0, -1
	walk(s.root, func(n *node) bool {
		if n.score != prev {
			rank++
			prev = n.score
		}
		return n.score > rec.score
	})
	return types.Entry{Rank: rank, ProfileID: profileID, Name: rec.name, Score: rec.score}, nil
}

// TopN implements Store.TopN.
func (s *TreapStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, len(s.byID)))
	rank, prev := 0, -1
	walk(s.root, func(nd *node) bool {
		if nd.score != prev {
			rank++
			prev = nd.score
		}
		out = append(out, types.Entry{Rank: rank, ProfileID: nd.id, Name: s.byID[nd.id].name, Score: nd.score})
		return len(out) < n
	})
	return out, nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
