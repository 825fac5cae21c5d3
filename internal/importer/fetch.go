package importer

import (
	"context"

	"quizlet-importer/internal/quizlet"
)

// Source is where decks and their media come from, *quizlet.Client in
// production.
//
// note: fault injection point
type Source interface {
	Deck(ctx context.Context, deckID string) (quizlet.Deck, error)
	Folder(ctx context.Context, folderUrl string, parentDeck string) ([]quizlet.FolderMember, error)
	Media(ctx context.Context, mediaUrl string) ([]byte, error)
}

type fetchResult struct {
	deck quizlet.Deck
	err  error
}

// fetchDeck downloads a deck in the background and waits for it or for ctx.
// The request itself is not aborted on cancellation, it finishes on its own
// and its result is dropped.
func (s *Session) fetchDeck(ctx context.Context, deckID string) (quizlet.Deck, error) {
	// buffered so the fetch never blocks on a reader that went away
	result := make(chan fetchResult, 1)

	detached := context.WithoutCancel(ctx)
	go func() {
		deck, err := s.source.Deck(detached, deckID)
		result <- fetchResult{deck: deck, err: err}
	}()

	select {
	case r := <-result:
		return r.deck, r.err
	case <-ctx.Done():
		return quizlet.Deck{}, ctx.Err()
	}
}
