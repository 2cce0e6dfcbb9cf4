// Package session keeps each visitor's Session Context in Redis as a JSON
// blob under session:<id>, refreshed on every save.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "session:"

type Store struct {
	client RedisClient
	ttl    time.Duration
}

var _ application.SessionStore = (*Store)(nil)

func NewStore(client RedisClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.NewMissingRequiredFieldError("session id")
	}

	raw, err := s.client.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewSession(id), nil
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess.ID = id
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return domain.NewMissingRequiredFieldError("session id")
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, b, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}
