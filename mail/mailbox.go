package mail

import (
	"context"

	"github.com/jrsteele09/go-mail-gateway/sessions"
)

// Header is a single name/value pair as returned by the provider.
type Header struct {
	Name  string
	Value string
}

// Mailbox is the narrow mail provider surface the gateway needs.
type Mailbox interface {
	// ListMessageIDs returns up to maxResults message ids, newest first as
	// ordered by the provider. An empty mailbox yields an empty slice.
	ListMessageIDs(ctx context.Context, maxResults int64) ([]string, error)

	// GetMessageHeaders fetches the metadata headers of one message,
	// restricted to the named headers where the provider supports it.
	GetMessageHeaders(ctx context.Context, id string, headers []string) ([]Header, error)
}

// ClientFactory binds a credential bundle to a mail provider client.
type ClientFactory func(ctx context.Context, credentials sessions.Record) (Mailbox, error)

// MessageSummary is one row of the recent-messages listing.
type MessageSummary struct {
	ID      string            `json:"id"`
	Headers map[string]string `json:"headers"`
}
