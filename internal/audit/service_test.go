package audit

import (
	"context"
	"errors"
	"testing"

	"drystore-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestWriteLog_Snapshots(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	floor := models.Floor{ID: "f1", Name: "1st"}
	require.NoError(t, svc.WriteLog(ctx, LogOptions{
		UserID: "a1", EntityType: "floor", EntityID: floor.ID,
		Action: models.AuditActionCreate, Description: "floor created: 1st", After: floor,
	}))
	require.NoError(t, svc.WriteLog(ctx, LogOptions{
		UserID: "a1", EntityType: "floor", EntityID: floor.ID,
		Action: models.AuditActionDelete, Before: floor,
	}))

	logs, err := svc.List(ctx, ListFilter{EntityType: "floor"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionDelete, logs[0].Action)
	assert.Equal(t, "null", logs[0].AfterData)
	assert.JSONEq(t, `{"id":"f1","name":"1st","createdAt":"0001-01-01T00:00:00Z"}`, logs[1].AfterData)
	assert.Equal(t, "null", logs[1].BeforeData)
}

func TestList_Filters(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()
	for _, id := range []string{"c1", "c2", "c1"} {
		require.NoError(t, svc.WriteLog(ctx, LogOptions{UserID: "a1", EntityType: "counter", EntityID: id, Action: models.AuditActionCreate}))
	}

	logs, err := svc.List(ctx, ListFilter{EntityID: "c1"})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = svc.List(ctx, ListFilter{UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

type failingStore struct{ MemoryStore }

func (*failingStore) Create(context.Context, *models.AuditLog) error { return errors.New("db down") }

func TestRecord_LogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(&failingStore{}, zap.New(core))

	svc.Record(context.Background(), LogOptions{EntityType: "entry", EntityID: "e1"})
	assert.Equal(t, 1, logs.FilterMessage("audit log not written").Len())
}

func TestGormStore_Create(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO "audit_logs" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	svc := NewService(NewGormStore(db), zap.NewNop())
	require.NoError(t, svc.WriteLog(context.Background(), LogOptions{EntityType: "entry", EntityID: "e1", Action: models.AuditActionCreate}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
