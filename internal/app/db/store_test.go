package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	dbc "usersettings/internal/app/db/sqlc"
)

// setupTestStore starts a disposable PostgreSQL container and returns a migrated Store.
func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "testdb",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(3 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewStore(pool)
}

func TestSQLStore_UserLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, dbc.CreateUserParams{Email: "ada@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.True(t, created.ID.Valid)
	assert.Empty(t, created.Name)
	assert.False(t, created.DateOfBirth.Valid)

	_, err = store.CreateUser(ctx, dbc.CreateUserParams{Email: "ada@example.com", PasswordHash: "other"})
	assert.True(t, IsUniqueViolation(err))

	byEmail, err := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = store.GetUserByID(ctx, UUID(uuid.New()))
	assert.True(t, IsNotFound(err))

	updated, err := store.UpdateUserProfile(ctx, dbc.UpdateUserProfileParams{
		ID:          created.ID,
		Name:        "Ada",
		Lastname:    "Lovelace",
		Email:       "ada@example.com",
		DateOfBirth: Date("1815-12-10"),
		Profession:  "Mathematician",
	})
	require.NoError(t, err)
	assert.Equal(t, "1815-12-10", ToAccount(updated).DateOfBirth)

	withAvatar, err := store.UpdateUserAvatar(ctx, dbc.UpdateUserAvatarParams{ID: created.ID, AvatarKey: "avatars/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "avatars/a.png", withAvatar.AvatarKey)
	assert.Equal(t, "Ada", withAvatar.Name)
}

func TestSQLStore_ExecTxRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, dbc.CreateUserParams{Email: "grace@example.com", PasswordHash: "old"})
	require.NoError(t, err)

	err = store.ExecTx(ctx, func(q dbc.Querier) error {
		if err := q.UpdateUserPassword(ctx, dbc.UpdateUserPasswordParams{ID: created.ID, PasswordHash: "new"}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	reloaded, err := store.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "old", reloaded.PasswordHash)
}
