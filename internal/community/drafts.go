package community

import (
	"context"

	"github.com/mentorhood/mentorhood/internal/localstore"
)

// DraftCache keeps unsent answers per question. It is a convenience cache;
// the server copy is authoritative once posted.
type DraftCache struct {
	store localstore.Store
}

func NewDraftCache(store localstore.Store) *DraftCache {
	return &DraftCache{store: store}
}

func DraftKey(questionID string) string {
	return "answer-draft:" + questionID
}

// Save stores text; an empty text clears the draft.
func (d *DraftCache) Save(ctx context.Context, questionID, text string) error {
	if text == "" {
		return d.Clear(ctx, questionID)
	}
	return d.store.Set(ctx, DraftKey(questionID), text)
}

func (d *DraftCache) Load(ctx context.Context, questionID string) (string, bool, error) {
	var text string
	found, err := d.store.Get(ctx, DraftKey(questionID), &text)
	return text, found, err
}

func (d *DraftCache) Clear(ctx context.Context, questionID string) error {
	return d.store.Delete(ctx, DraftKey(questionID))
}
