package sessions

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Session is the server-side state bound to one client cookie.
// Values loaded from a store arrive as json.RawMessage until a caller
// decodes them and Sets the typed value back.
type Session struct {
	ID string

	mu       sync.Mutex
	values   map[string]any
	modified bool
	isNew    bool
}

func New() *Session {
	return &Session{
		ID:     uuid.NewString(),
		values: map[string]any{},
		isNew:  true,
	}
}

func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.modified = true
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
	}
}

// MarkModified flags the session for saving after an in-place change of a stored value.
func (s *Session) MarkModified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modified = true
}

func (s *Session) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.values)
}

func decode(id string, data []byte) (*Session, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	values := make(map[string]any, len(raw))
	for k, v := range raw {
		values[k] = v
	}
	return &Session{ID: id, values: values}, nil
}

func (s *Session) saved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modified = false
	s.isNew = false
}
