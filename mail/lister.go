package mail

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
)

// Lister builds the recent-messages listing from a Mailbox.
type Lister struct {
	maxResults int64
	headers    []string
	allowed    map[string]struct{}
}

// NewLister creates a Lister returning at most maxResults messages, each
// reduced to the given header names.
func NewLister(maxResults int64, headers []string) *Lister {
	allowed := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		allowed[h] = struct{}{}
	}
	return &Lister{
		maxResults: maxResults,
		headers:    append([]string(nil), headers...),
		allowed:    allowed,
	}
}

// ListRecent lists the most recent message ids and then fetches each
// message's headers one at a time, in provider order. Any failure aborts the
// whole listing and nothing fetched so far is returned.
func (l *Lister) ListRecent(ctx context.Context, mailbox Mailbox) ([]MessageSummary, error) {
	ids, err := mailbox.ListMessageIDs(ctx, l.maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMailList, err)
	}

	results := make([]MessageSummary, 0, len(ids))
	for _, id := range ids {
		headers, err := mailbox.GetMessageHeaders(ctx, id, l.headers)
		if err != nil {
			return nil, fmt.Errorf("%w: message %s: %w", apperrors.ErrMailMessage, id, err)
		}
		results = append(results, MessageSummary{
			ID:      id,
			Headers: l.ReduceHeaders(headers),
		})
	}
	return results, nil
}

// ReduceHeaders folds headers left to right into a map, keeping only the
// allowed names. A later duplicate overwrites an earlier one.
func (l *Lister) ReduceHeaders(headers []Header) map[string]string {
	reduced := make(map[string]string, len(l.allowed))
	for _, h := range headers {
		if _, ok := l.allowed[h.Name]; !ok {
			continue
		}
		reduced[h.Name] = h.Value
	}
	return reduced
}
