package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shopcart/internal/domain/model"
	"shopcart/internal/repository"
)

// DBに保存するバックエンド。
// 匿名の間はセッションと同じ動き。認証済みidentityで構築された時点で
// セッションのデータをユーザーのカート行へ移してから、以後はDBだけを見る。
// ログアウトで逆方向に戻すことはない。
type DBStorage struct {
	id      Identity
	session *SessionStorage
	records repository.CartRecordRepository
}

// NewDBStorage は構築時に匿名→認証の移行を行う。
// 既にユーザーの行がある場合はDB側を正とし、セッション側は破棄する。
func NewDBStorage(ctx context.Context, id Identity, session *SessionStorage, records repository.CartRecordRepository) (*DBStorage, error) {
	s := &DBStorage{id: id, session: session, records: records}
	if !id.Authenticated() {
		return s, nil
	}

	data, err := session.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("db storage migrate: %w", err)
	}
	if data.IsEmpty() {
		return s, nil
	}

	_, err = records.FindByCustomer(ctx, id.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := records.Upsert(ctx, id.UserID, data); err != nil {
			return nil, fmt.Errorf("db storage migrate: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("db storage migrate: %w", err)
	}

	if err := session.Clear(ctx); err != nil {
		return nil, fmt.Errorf("db storage migrate: %w", err)
	}
	return s, nil
}

func (s *DBStorage) Load(ctx context.Context) (model.CartData, error) {
	if !s.id.Authenticated() {
		return s.session.Load(ctx)
	}

	stored, err := s.records.FindByCustomer(ctx, s.id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.CartData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db storage load: %w", err)
	}

	var data model.CartData
	if err := json.Unmarshal(stored.Items, &data); err != nil {
		return nil, fmt.Errorf("db storage load: %w", err)
	}
	if data == nil {
		data = model.CartData{}
	}
	return data, nil
}

func (s *DBStorage) Save(ctx context.Context, data model.CartData) error {
	if !s.id.Authenticated() {
		return s.session.Save(ctx, data)
	}
	if err := s.records.Upsert(ctx, s.id.UserID, data); err != nil {
		return fmt.Errorf("db storage save: %w", err)
	}
	return nil
}

func (s *DBStorage) Clear(ctx context.Context) error {
	if !s.id.Authenticated() {
		return s.session.Clear(ctx)
	}
	if err := s.records.DeleteByCustomer(ctx, s.id.UserID); err != nil {
		return fmt.Errorf("db storage clear: %w", err)
	}
	return nil
}
