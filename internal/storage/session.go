package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"shopcart/internal/domain/model"
)

// セッションにJSONで保存するバックエンド。デフォルト。
type SessionStorage struct {
	session SessionStore
	key     string
}

func NewSessionStorage(session SessionStore, key string) *SessionStorage {
	return &SessionStorage{session: session, key: key}
}

func (s *SessionStorage) Load(ctx context.Context) (model.CartData, error) {
	b, ok, err := s.session.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	if !ok {
		return model.CartData{}, nil
	}

	var data model.CartData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	if data == nil {
		data = model.CartData{}
	}
	return data, nil
}

func (s *SessionStorage) Save(ctx context.Context, data model.CartData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	if err := s.session.Set(ctx, s.key, b); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStorage) Clear(ctx context.Context) error {
	if err := s.session.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
