// Package community keeps the viewer-local state of the Q&A pages: which
// items this viewer has upvoted and unsent answer drafts.
package community

import (
	"context"
	"fmt"
	"sync"

	"github.com/mentorhood/mentorhood/internal/localstore"
)

const (
	UpvotedAnswersKey   = "upvotedAnswers"
	UpvotedQuestionsKey = "upvotedQuestions"
)

// UpvoteSet is the viewer's set of upvoted ids, persisted as a JSON list.
// The server only counts upvotes; removing one here is local.
type UpvoteSet struct {
	mu    sync.Mutex
	store localstore.Store
	key   string
}

func NewUpvoteSet(store localstore.Store, key string) *UpvoteSet {
	return &UpvoteSet{store: store, key: key}
}

func (u *UpvoteSet) load(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := u.store.Get(ctx, u.key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (u *UpvoteSet) IDs(ctx context.Context) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.load(ctx)
}

func (u *UpvoteSet) Has(ctx context.Context, id string) (bool, error) {
	ids, err := u.IDs(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(ids, id) >= 0, nil
}

// Toggle adds id if absent or removes it if present. added tells the caller
// whether the server count should be incremented.
func (u *UpvoteSet) Toggle(ctx context.Context, id string) (added bool, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.toggle(ctx, id)
}

func (u *UpvoteSet) toggle(ctx context.Context, id string) (bool, error) {
	ids, err := u.load(ctx)
	if err != nil {
		return false, err
	}
	added := false
	if i := indexOf(ids, id); i >= 0 {
		ids = append(ids[:i], ids[i+1:]...)
	} else {
		ids = append(ids, id)
		added = true
	}
	if err := u.store.Set(ctx, u.key, ids); err != nil {
		return false, err
	}
	return added, nil
}

// Vote toggles id and, when it was added, calls increment. A failed
// increment undoes the local add.
func (u *UpvoteSet) Vote(ctx context.Context, id string, increment func(context.Context) error) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	added, err := u.toggle(ctx, id)
	if err != nil || !added {
		return added, err
	}
	if err := increment(ctx); err != nil {
		if _, rbErr := u.toggle(ctx, id); rbErr != nil {
			return false, fmt.Errorf("upvote %s: %w (rollback: %v)", id, err, rbErr)
		}
		return false, fmt.Errorf("upvote %s: %w", id, err)
	}
	return true, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
