package mailfake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-mail-gateway/mail"
	"github.com/jrsteele09/go-mail-gateway/sessions"
)

var _ mail.Mailbox = (*FakeMailbox)(nil)

// FakeMailbox serves messages from memory and records every call.
type FakeMailbox struct {
	IDs      []string
	Headers  map[string][]mail.Header
	ListErr  error
	GetErrs  map[string]error
	lock     sync.Mutex
	calls    []string
	maxAsked int64
}

func NewFakeMailbox(ids ...string) *FakeMailbox {
	return &FakeMailbox{
		IDs:     ids,
		Headers: make(map[string][]mail.Header),
		GetErrs: make(map[string]error),
	}
}

func (f *FakeMailbox) ListMessageIDs(_ context.Context, maxResults int64) ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls = append(f.calls, "list")
	f.maxAsked = maxResults
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	ids := f.IDs
	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return append([]string(nil), ids...), nil
}

func (f *FakeMailbox) GetMessageHeaders(_ context.Context, id string, _ []string) ([]mail.Header, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls = append(f.calls, "get:"+id)
	if err := f.GetErrs[id]; err != nil {
		return nil, err
	}
	headers, ok := f.Headers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return headers, nil
}

// Calls returns the calls made so far, in order.
func (f *FakeMailbox) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

// MaxResultsRequested returns the page size passed to the last list call.
func (f *FakeMailbox) MaxResultsRequested() int64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.maxAsked
}

// Factory returns a ClientFactory that always hands out f and remembers
// the credentials it was given.
func (f *FakeMailbox) Factory(seen *[]sessions.Record) mail.ClientFactory {
	return func(_ context.Context, credentials sessions.Record) (mail.Mailbox, error) {
		if seen != nil {
			*seen = append(*seen, credentials)
		}
		return f, nil
	}
}
