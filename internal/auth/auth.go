// Package auth issues driver credentials and bearer sessions. Credentials
// are durable (phone-keyed, code = last four digits of the phone); sessions
// live only in memory, so a restart forces every driver to log in again.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/storage"
)

// CredentialStore is the durable side of registration and login.
type CredentialStore interface {
	CredentialByPhone(phone string) (*storage.DriverCredential, error)
	CredentialByCode(code string) (*storage.DriverCredential, error)
	CreateCredential(cred *storage.DriverCredential) error
}

// Session is one logged-in driver identity.
type Session struct {
	Token     string
	Phone     string
	Name      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles registration, login and session verification.
type Service struct {
	store CredentialStore
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

// NewService builds an auth service with the given session TTL.
func NewService(store CredentialStore, ttl time.Duration) *Service {
	return &Service{
		store:    store,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Register stores a new credential. The login code is the phone's last four
// digits; registration is rejected when the phone is taken or another phone
// already owns the same code. Collisions are surfaced, not worked around:
// code uniqueness is what makes code-only login unambiguous.
func (s *Service) Register(name, phone string) (*storage.DriverCredential, error) {
	name = models.SanitizeName(name)
	phone = models.SanitizePhone(phone)
	if !models.ValidPhone(phone) {
		return nil, apierr.ErrInvalidPhone
	}

	if existing, err := s.store.CredentialByPhone(phone); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apierr.ErrPhoneInUse
	}

	code := phone[len(phone)-4:]
	if holder, err := s.store.CredentialByCode(code); err != nil {
		return nil, err
	} else if holder != nil {
		return nil, apierr.ErrCodeInUse
	}

	cred := &storage.DriverCredential{Phone: phone, Code: code, Name: name}
	if err := s.store.CreateCredential(cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// Login exchanges a 4-digit code for a bearer session. An optional phone
// narrows the check to that registration.
func (s *Service) Login(code, phone string) (*Session, error) {
	code = models.DigitsOnly(code)
	if len(code) != 4 {
		return nil, apierr.ErrInvalidCode
	}

	cred, err := s.store.CredentialByCode(code)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apierr.ErrDriverNotRegistered
	}
	if phone != "" && models.SanitizePhone(phone) != cred.Phone {
		return nil, apierr.ErrDriverNotRegistered
	}

	now := s.now()
	sess := &Session{
		Token:     newToken(),
		Phone:     cred.Phone,
		Name:      cred.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.pruneLocked(now)
	s.mu.Unlock()
	return sess, nil
}

// Identity resolves a bearer token to its session. Expired sessions are
// dropped on sight.
func (s *Service) Identity(token string) (*Session, error) {
	if token == "" {
		return nil, apierr.ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, apierr.ErrInvalidSession
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, apierr.ErrSessionExpired
	}
	return sess, nil
}

// pruneLocked drops expired sessions. Called opportunistically on login so
// the map cannot grow without bound.
func (s *Service) pruneLocked(now time.Time) {
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
