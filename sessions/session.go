package sessions

import "time"

// Record is an opaque set of named fields handed to us by a provider.
// The gateway stores it and passes it back unchanged; it never interprets
// the contents beyond what the provider clients need.
type Record map[string]any

// Clone returns a shallow copy of the record. A nil record stays nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// String returns the named field when it holds a string.
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Session is the server-side state kept for one browser.
type Session struct {
	ID             string
	Tokens         Record // Credential bundle from the token exchange
	UserInfo       Record // Profile claims from the userinfo endpoint
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Authenticated reports whether the session carries a credential bundle.
// Token freshness is not checked.
func (s *Session) Authenticated() bool {
	return s != nil && len(s.Tokens) > 0
}

func (s *Session) clone() *Session {
	c := *s
	c.Tokens = s.Tokens.Clone()
	c.UserInfo = s.UserInfo.Clone()
	return &c
}
