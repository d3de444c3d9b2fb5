package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB接続文字列を環境変数から読む。未設定ならスキップ。
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	// pgx stdlib DSN
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("sql.Open(pgx) failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}
	if err := db.AutoMigrate(&model.StoredCart{}); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func Test_CartRecordGorm_UpsertIsOneRowPerCustomer(t *testing.T) {
	db := testDB(t)
	r := NewCartRecordGormRepository(db)
	ctx := context.Background()

	customerID := fmt.Sprintf("it-%s", time.Now().Format("150405.000000000"))

	data := model.CartData{
		"default": model.CartRecord{
			Items: []model.ItemRecord{{ID: "a", ProductPK: "1", Quantity: 2}},
		},
	}
	require.NoError(t, r.Upsert(ctx, customerID, data))

	// 同じユーザーにもう一度書いても行は増えず、中身が上書きされる
	data["default"] = model.CartRecord{
		Items: []model.ItemRecord{{ID: "a", ProductPK: "1", Quantity: 5}},
	}
	require.NoError(t, r.Upsert(ctx, customerID, data))

	var count int64
	require.NoError(t, db.Model(&model.StoredCart{}).Where("customer_id = ?", customerID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := r.FindByCustomer(ctx, customerID)
	require.NoError(t, err)

	var loaded model.CartData
	require.NoError(t, json.Unmarshal(stored.Items, &loaded))
	require.Len(t, loaded["default"].Items, 1)
	assert.Equal(t, 5, loaded["default"].Items[0].Quantity)

	// 削除は冪等
	require.NoError(t, r.DeleteByCustomer(ctx, customerID))
	require.NoError(t, r.DeleteByCustomer(ctx, customerID))

	_, err = r.FindByCustomer(ctx, customerID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
