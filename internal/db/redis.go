package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"shuuro-server/internal/models"
	"shuuro-server/internal/utils"
)

// Session TTLs: anonymous identities are short-lived, registered ones
// survive a year.
const (
	anonSessionTTL = 2 * 24 * time.Hour
	regSessionTTL  = 365 * 24 * time.Hour
)

// SessionStore keeps UserSession values as JSON strings in Redis,
// keyed by session id.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(addr, password string, database int) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &SessionStore{client: client}, nil
}

func sessionTTL(reg bool) time.Duration {
	if reg {
		return regSessionTTL
	}
	return anonSessionTTL
}

// GetSession loads a session and refreshes its TTL.
func (s *SessionStore) GetSession(ctx context.Context, sid string) (*models.UserSession, error) {
	raw, err := s.client.Get(ctx, sid).Result()
	if err != nil {
		return nil, err
	}
	var session models.UserSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	session.IsNew = false
	s.client.Expire(ctx, sid, sessionTTL(session.Reg))
	return &session, nil
}

// SetSession stores a session under its id with the TTL for its
// registration state.
func (s *SessionStore) SetSession(ctx context.Context, session *models.UserSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, session.Session, raw, sessionTTL(session.Reg)).Err()
}

// NewSession mints an anonymous player and a fresh session id for it.
func (s *SessionStore) NewSession(ctx context.Context, players *PlayerQueries) (*models.UserSession, error) {
	username, err := players.CreatePlayer(ctx)
	if err != nil {
		return nil, err
	}
	for {
		sid := utils.RandomSessionID()
		_, err := s.client.Get(ctx, sid).Result()
		if errors.Is(err, redis.Nil) {
			session := models.NewUserSession(username, sid, false)
			if err := s.SetSession(ctx, session); err != nil {
				return nil, err
			}
			return session, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
