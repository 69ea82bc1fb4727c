package memory

import (
	"context"
	"strings"
	"sync"

	"bookmytourguide/internal/domain/auth"
	"bookmytourguide/internal/domain/otp"
	"bookmytourguide/internal/domain/user"
)

// UserRepository stores and returns copies, never the caller's pointer, so
// a mutated aggregate is only visible after a successful Save.
type UserRepository struct {
	mu    sync.RWMutex
	items map[user.ID]*user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[user.ID]*user.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.items {
		if strings.ToLower(u.Email) == email {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
			return user.ErrEmailAlreadyUsed
		}
	}
	c := *u
	r.items[u.ID] = &c
	return nil
}

var _ user.Repository = (*UserRepository)(nil)

type SessionStore struct {
	mu    sync.RWMutex
	items map[auth.Token]*auth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[auth.Token]*auth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Token] = session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token auth.Token) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID user.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.items {
		if session.UserID == userID {
			delete(s.items, token)
		}
	}
	return nil
}

var _ auth.SessionStore = (*SessionStore)(nil)

// OTPStore keeps only the most recent code per email, which is all the
// verification flow ever reads.
type OTPStore struct {
	mu    sync.RWMutex
	items map[string]*otp.Code
}

func NewOTPStore() *OTPStore {
	return &OTPStore{items: make(map[string]*otp.Code)}
}

func (s *OTPStore) Save(ctx context.Context, code *otp.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[code.Email] = code
	return nil
}

func (s *OTPStore) Latest(ctx context.Context, email string) (*otp.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.items[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, otp.ErrNotFound
	}
	return code, nil
}

func (s *OTPStore) DeleteForEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.ToLower(strings.TrimSpace(email)))
	return nil
}

var _ otp.Store = (*OTPStore)(nil)
