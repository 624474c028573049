package mail

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-mail-gateway/identity"
	"github.com/jrsteele09/go-mail-gateway/sessions"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	gmailUserID         = "me"
	gmailMetadataFormat = "metadata"
)

var _ Mailbox = (*GmailMailbox)(nil)

// GmailMailbox reads the authenticated user's mailbox through the Gmail API.
type GmailMailbox struct {
	svc *gmail.UsersService
}

// NewGmailMailbox creates a Gmail client that sends the stored access token
// as-is. Extra options are appended after the HTTP client, which lets tests
// point the client at a fake endpoint.
func NewGmailMailbox(ctx context.Context, credentials sessions.Record, opts ...option.ClientOption) (*GmailMailbox, error) {
	token, err := identity.TokenFromRecord(credentials)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &GmailMailbox{svc: svc.Users}, nil
}

// GmailFactory returns a ClientFactory producing GmailMailbox clients.
func GmailFactory(opts ...option.ClientOption) ClientFactory {
	return func(ctx context.Context, credentials sessions.Record) (Mailbox, error) {
		return NewGmailMailbox(ctx, credentials, opts...)
	}
}

// ListMessageIDs returns a single page of message ids; no further pages are fetched.
func (m *GmailMailbox) ListMessageIDs(ctx context.Context, maxResults int64) ([]string, error) {
	res, err := m.svc.Messages.List(gmailUserID).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, msg := range res.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

func (m *GmailMailbox) GetMessageHeaders(ctx context.Context, id string, headers []string) ([]Header, error) {
	msg, err := m.svc.Messages.Get(gmailUserID, id).
		Format(gmailMetadataFormat).
		MetadataHeaders(headers...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	if msg.Payload == nil {
		return nil, nil
	}

	result := make([]Header, 0, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		if h == nil {
			continue
		}
		result = append(result, Header{Name: h.Name, Value: h.Value})
	}
	return result, nil
}
