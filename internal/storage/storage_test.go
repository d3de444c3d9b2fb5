package storage

import (
	"context"
	"testing"
	"time"

	"shopcart/internal/domain/model"
	"shopcart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type CartRecordRepoMock struct{ mock.Mock }

func (m *CartRecordRepoMock) FindByCustomer(ctx context.Context, customerID string) (model.StoredCart, error) {
	args := m.Called(ctx, customerID)
	stored, _ := args.Get(0).(model.StoredCart)
	return stored, args.Error(1)
}

func (m *CartRecordRepoMock) Upsert(ctx context.Context, customerID string, data model.CartData) error {
	args := m.Called(ctx, customerID, data)
	return args.Error(0)
}

func (m *CartRecordRepoMock) DeleteByCustomer(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func sampleData() model.CartData {
	return model.CartData{
		"default": model.CartRecord{
			Items: []model.ItemRecord{
				{ID: "a", ProductPK: "1", Quantity: 2},
				{ID: "b", ProductPK: "2", Quantity: 1, Variant: model.ScalarVariant("L")},
			},
		},
	}
}

// =====================
// Identity
// =====================

func TestIdentity_Key(t *testing.T) {
	anon := Identity{SessionKey: "sess-token"}
	assert.False(t, anon.Authenticated())
	assert.Equal(t, "sess-token", anon.Key())

	authed := Identity{SessionKey: "sess-token", UserID: "42"}
	assert.True(t, authed.Authenticated())
	assert.Equal(t, "42", authed.Key())
}

// =====================
// SessionStorage
// =====================

func TestSessionStorage_RoundTrip(t *testing.T) {
	sessions := NewMemorySessions()
	st := NewSessionStorage(sessions.Session("token-1"), "CART-ID")
	ctx := context.Background()

	// 何も無ければ空
	data, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, st.Save(ctx, sampleData()))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded["default"].Items, 2)
	assert.Equal(t, "1", loaded["default"].Items[0].ProductPK)
	assert.True(t, loaded["default"].Items[1].Variant.Equal(model.ScalarVariant("L")))

	require.NoError(t, st.Clear(ctx))
	cleared, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cleared)
}

func TestSessionStorage_TokensAreIsolated(t *testing.T) {
	sessions := NewMemorySessions()
	ctx := context.Background()

	first := NewSessionStorage(sessions.Session("token-1"), "CART-ID")
	second := NewSessionStorage(sessions.Session("token-2"), "CART-ID")

	require.NoError(t, first.Save(ctx, sampleData()))

	data, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)
}

// =====================
// DBStorage
// =====================

func TestDBStorage_AnonymousDelegatesToSession(t *testing.T) {
	sessions := NewMemorySessions()
	records := &CartRecordRepoMock{}
	id := Identity{SessionKey: "token-1"}
	ctx := context.Background()

	st, err := NewDBStorage(ctx, id, NewSessionStorage(sessions.Session("token-1"), "CART-ID"), records)
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, sampleData()))
	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded["default"].Items, 2)

	// 匿名の間はDBに触らない
	records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "FindByCustomer", mock.Anything, mock.Anything)
}

func TestDBStorage_MigratesSessionOnAuthentication(t *testing.T) {
	sessions := NewMemorySessions()
	ctx := context.Background()

	// 匿名時代のデータをセッションに積んでおく
	anonSession := NewSessionStorage(sessions.Session("token-1"), "CART-ID")
	require.NoError(t, anonSession.Save(ctx, sampleData()))

	records := &CartRecordRepoMock{}
	records.On("FindByCustomer", mock.Anything, "42").Return(model.StoredCart{}, repository.ErrNotFound).Once()
	records.On("Upsert", mock.Anything, "42", sampleData()).Return(nil).Once()

	id := Identity{SessionKey: "token-1", UserID: "42"}
	_, err := NewDBStorage(ctx, id, NewSessionStorage(sessions.Session("token-1"), "CART-ID"), records)
	require.NoError(t, err)

	records.AssertExpectations(t)

	// セッション側は空になっている
	after, err := anonSession.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestDBStorage_ExistingRowWinsOverSession(t *testing.T) {
	sessions := NewMemorySessions()
	ctx := context.Background()

	anonSession := NewSessionStorage(sessions.Session("token-1"), "CART-ID")
	require.NoError(t, anonSession.Save(ctx, sampleData()))

	records := &CartRecordRepoMock{}
	records.On("FindByCustomer", mock.Anything, "42").
		Return(model.StoredCart{CustomerID: "42", Items: []byte(`{}`)}, nil).Once()

	id := Identity{SessionKey: "token-1", UserID: "42"}
	_, err := NewDBStorage(ctx, id, NewSessionStorage(sessions.Session("token-1"), "CART-ID"), records)
	require.NoError(t, err)

	// 既存行があれば書き込まない。セッションは破棄。
	records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	after, err := anonSession.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestDBStorage_AuthenticatedLoadSaveClear(t *testing.T) {
	sessions := NewMemorySessions()
	ctx := context.Background()

	records := &CartRecordRepoMock{}
	records.On("FindByCustomer", mock.Anything, "42").
		Return(model.StoredCart{}, repository.ErrNotFound).Once()

	id := Identity{SessionKey: "token-1", UserID: "42"}
	st, err := NewDBStorage(ctx, id, NewSessionStorage(sessions.Session("token-1"), "CART-ID"), records)
	require.NoError(t, err)

	// 行が無ければ空
	data, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)

	records.On("Upsert", mock.Anything, "42", sampleData()).Return(nil).Once()
	require.NoError(t, st.Save(ctx, sampleData()))

	records.On("FindByCustomer", mock.Anything, "42").
		Return(model.StoredCart{CustomerID: "42", Items: []byte(`{"default":{"items":[{"id":"a","product_pk":"1","quantity":2}]}}`)}, nil).Once()
	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded["default"].Items, 1)
	assert.Equal(t, 2, loaded["default"].Items[0].Quantity)

	records.On("DeleteByCustomer", mock.Anything, "42").Return(nil).Once()
	require.NoError(t, st.Clear(ctx))

	records.AssertExpectations(t)
}

// =====================
// CacheStorage
// =====================

func TestCacheStorage_KeyAndDefaultTimeout(t *testing.T) {
	// 認証済みはユーザーIDでキーを組む
	authed := NewCacheStorage(nil, "CART-ID", Identity{SessionKey: "token-1", UserID: "42"}, 0)
	assert.Equal(t, "CART-ID-42", authed.key)
	assert.Equal(t, DefaultCacheTimeout, authed.timeout)

	// 匿名はセッショントークン
	anon := NewCacheStorage(nil, "CART-ID", Identity{SessionKey: "token-1"}, 0)
	assert.Equal(t, "CART-ID-token-1", anon.key)
}

func TestCacheStorage_ExplicitTimeoutKept(t *testing.T) {
	st := NewCacheStorage(nil, "CART-ID", Identity{SessionKey: "token-1"}, 30*time.Minute)
	assert.Equal(t, 30*time.Minute, st.timeout)
}

func TestRedisSessions_KeyShape(t *testing.T) {
	sess, ok := NewRedisSessions(nil, 0).Session("token-1").(*redisSession)
	require.True(t, ok)
	assert.Equal(t, "cartsess:token-1", sess.key)
}

// =====================
// Registry
// =====================

func TestRegistry_UnknownBackendFailsFast(t *testing.T) {
	_, err := New(context.Background(), "bogus", Deps{}, Identity{SessionKey: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cart storage backend")
}

func TestRegistry_BuiltinsKnown(t *testing.T) {
	assert.True(t, Known(BackendSession))
	assert.True(t, Known(BackendCache))
	assert.True(t, Known(BackendDB))
	assert.False(t, Known("bogus"))
}

func TestRegistry_SessionBackend(t *testing.T) {
	sessions := NewMemorySessions()
	deps := Deps{SessionKey: "CART-ID", Session: sessions.Session("token-1")}

	st, err := New(context.Background(), BackendSession, deps, Identity{SessionKey: "token-1"})
	require.NoError(t, err)
	assert.IsType(t, &SessionStorage{}, st)
}

func TestRegistry_MissingDeps(t *testing.T) {
	_, err := New(context.Background(), BackendSession, Deps{}, Identity{SessionKey: "t"})
	require.Error(t, err)

	_, err = New(context.Background(), BackendCache, Deps{SessionKey: "CART-ID"}, Identity{SessionKey: "t"})
	require.Error(t, err)

	sessions := NewMemorySessions()
	_, err = New(context.Background(), BackendDB, Deps{SessionKey: "CART-ID", Session: sessions.Session("t")}, Identity{SessionKey: "t"})
	require.Error(t, err)
}

func TestRegistry_CustomBackend(t *testing.T) {
	called := false
	Register("custom-test", func(ctx context.Context, deps Deps, id Identity) (Storage, error) {
		called = true
		return NewSessionStorage(NewMemorySessions().Session(id.SessionKey), deps.SessionKey), nil
	})

	st, err := New(context.Background(), "custom-test", Deps{SessionKey: "CART-ID"}, Identity{SessionKey: "t"})
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.True(t, called)
}
