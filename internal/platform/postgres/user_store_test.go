package postgres_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cgvega/taskvault/internal/domain"
	"github.com/cgvega/taskvault/internal/platform/postgres"
	"github.com/cgvega/taskvault/internal/store"
)

var userColumns = []string{"id", "username", "email", "hashed_password", "created_at", "updated_at"}

// bcryptHashOf matches an argument that is a bcrypt hash of the given
// plaintext and never the plaintext itself.
type bcryptHashOf struct {
	plaintext string
}

func (m bcryptHashOf) Match(v driver.Value) bool {
	hash, ok := v.(string)
	if !ok || hash == m.plaintext {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(m.plaintext)) == nil
}

func newTestUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("cris", "cris@example.com", "hunter2-secret")
	require.NoError(t, err)
	return user
}

func TestPostgresUserStore_Create_HashesPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	user := newTestUser(t)
	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			user.ID,
			user.Username,
			user.Email,
			bcryptHashOf{plaintext: "hunter2-secret"},
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	userStore := postgres.NewPostgresUserStore(db, bcrypt.MinCost)
	require.NoError(t, userStore.Create(context.Background(), user))

	// The plaintext must be gone from the struct and never stored verbatim.
	assert.Empty(t, user.Password)
	assert.NotEqual(t, "hunter2-secret", user.HashedPassword)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("hunter2-secret")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_Create_DuplicateMapping(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{
			name:       "duplicate username",
			constraint: "users_username_key",
			wantErr:    store.ErrUsernameExists,
		},
		{
			name:       "duplicate email",
			constraint: "users_email_key",
			wantErr:    store.ErrEmailExists,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectExec("INSERT INTO users").
				WillReturnError(&pgconn.PgError{
					Code:           "23505",
					ConstraintName: tc.constraint,
				})

			userStore := postgres.NewPostgresUserStore(db, bcrypt.MinCost)
			err = userStore.Create(context.Background(), newTestUser(t))

			assert.ErrorIs(t, err, tc.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserStore_GetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		id := uuid.New()
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("cris").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(id.String(), "cris", "cris@example.com", "$2a$10$hash", now, now))

		userStore := postgres.NewPostgresUserStore(db, bcrypt.MinCost)
		user, err := userStore.GetByUsername(context.Background(), "cris")

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "cris", user.Username)
		assert.Equal(t, "$2a$10$hash", user.HashedPassword)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown username", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns))

		userStore := postgres.NewPostgresUserStore(db, bcrypt.MinCost)
		_, err = userStore.GetByUsername(context.Background(), "ghost")

		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns))

	userStore := postgres.NewPostgresUserStore(db, bcrypt.MinCost)
	_, err = userStore.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
