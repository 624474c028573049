package mail

import (
	"context"

	"github.com/jrsteele09/go-mail-gateway/sessions"
)

// Operation names reported to an Observer
const (
	OperationList = "list"
	OperationGet  = "get"
)

// Observer is told about every call made to the mail provider.
type Observer interface {
	ObserveMailCall(operation string, err error)
}

type instrumentedMailbox struct {
	next     Mailbox
	observer Observer
}

// Instrument wraps a ClientFactory so every mailbox it builds reports its
// calls to observer. A nil observer returns the factory unchanged.
func Instrument(factory ClientFactory, observer Observer) ClientFactory {
	if observer == nil {
		return factory
	}
	return func(ctx context.Context, credentials sessions.Record) (Mailbox, error) {
		mailbox, err := factory(ctx, credentials)
		if err != nil {
			return nil, err
		}
		return &instrumentedMailbox{next: mailbox, observer: observer}, nil
	}
}

func (m *instrumentedMailbox) ListMessageIDs(ctx context.Context, maxResults int64) ([]string, error) {
	ids, err := m.next.ListMessageIDs(ctx, maxResults)
	m.observer.ObserveMailCall(OperationList, err)
	return ids, err
}

func (m *instrumentedMailbox) GetMessageHeaders(ctx context.Context, id string, headers []string) ([]Header, error) {
	result, err := m.next.GetMessageHeaders(ctx, id, headers)
	m.observer.ObserveMailCall(OperationGet, err)
	return result, err
}
