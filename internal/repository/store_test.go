package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/testutil"
)

func TestStore_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := NewStore[models.User](db)

	user := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "hash"}
	require.NoError(t, users.Insert(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)

	exists, err := users.Exists(ctx, Where("username = ?", "alice"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = users.Exists(ctx, Where("username = ?", "bob"))
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := users.GetOne(ctx, byID(user.ID))
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", found.Email)

	updated, err := users.Update(ctx, map[string]interface{}{"first_name": "Alice"}, byID(user.ID))
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "alice", updated.Username)

	deleted, err := users.Delete(ctx, byID(user.ID))
	require.NoError(t, err)
	assert.Equal(t, user.ID, deleted.ID)

	_, err = users.GetOne(ctx, byID(user.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := NewStore[models.User](db)

	_, err := users.Update(ctx, map[string]interface{}{"first_name": "x"}, byID(uuid.New()))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.Delete(ctx, byID(uuid.New()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_InsertConflict(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := NewStore[models.User](db)

	require.NoError(t, users.Insert(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}))

	err := users.Insert(ctx, &models.User{Username: "alice", Email: "other@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrConflict)

	err = users.Insert(ctx, &models.User{Username: "other", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStore_InsertForeignKey(t *testing.T) {
	db := testutil.NewDB(t)

	err := NewStore[models.Verification](db).Insert(context.Background(), &models.Verification{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestStore_ListOrdersByPredicateThenPrimaryKey(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	for _, name := range []string{"carol", "alice", "bob"} {
		testutil.CreateUser(t, db, name)
	}

	users, err := NewStore[models.User](db).List(ctx, OrderBy("username ASC"))
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
}

func TestTranslateError_PostgresUniqueViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "verifications"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err = NewVerificationRepository(db).Create(context.Background(), &models.Verification{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError_PostgresForeignKeyViolation(t *testing.T) {
	err := translateError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, err, ErrForeignKey)

	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.NoError(t, translateError(nil))
}

func TestRepositories_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repos := New(db)

	err := repos.Transaction(ctx, func(tx *Repositories) error {
		if err := tx.Users.Create(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}); err != nil {
			return err
		}
		return tx.Users.Create(ctx, &models.User{Username: "alice", Email: "b@x.com", PasswordHash: "h"})
	})
	require.ErrorIs(t, err, ErrConflict)

	_, err = repos.Users.FindByLogin(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
