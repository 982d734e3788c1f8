package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"usersettings/internal/app/db"
	dbc "usersettings/internal/app/db/sqlc"
	"usersettings/internal/app/storage"
)

// memStore is an in-memory db.Store. ExecTx does not roll back.
type memStore struct {
	mu    sync.Mutex
	users map[[16]byte]dbc.User
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{users: make(map[[16]byte]dbc.User)}
}

func (m *memStore) ExecTx(ctx context.Context, fn func(q dbc.Querier) error) error {
	return fn(m)
}

func (m *memStore) emailTakenLocked(email string, except [16]byte) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *memStore) CreateUser(ctx context.Context, arg dbc.CreateUserParams) (dbc.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(arg.Email, [16]byte{}) {
		return dbc.User{}, &pgconn.PgError{Code: "23505"}
	}

	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	u := dbc.User{
		ID:           db.UUID(uuid.New()),
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID.Bytes] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (dbc.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dbc.User{}, pgx.ErrNoRows
}

func (m *memStore) GetUserByID(ctx context.Context, id pgtype.UUID) (dbc.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id.Bytes]
	if !ok {
		return dbc.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memStore) UpdateUserAvatar(ctx context.Context, arg dbc.UpdateUserAvatarParams) (dbc.User, error) {
	return m.update(arg.ID, func(u *dbc.User) error {
		u.AvatarKey = arg.AvatarKey
		return nil
	})
}

func (m *memStore) UpdateUserPassword(ctx context.Context, arg dbc.UpdateUserPasswordParams) error {
	_, err := m.update(arg.ID, func(u *dbc.User) error {
		u.PasswordHash = arg.PasswordHash
		return nil
	})
	return err
}

func (m *memStore) UpdateUserProfile(ctx context.Context, arg dbc.UpdateUserProfileParams) (dbc.User, error) {
	return m.update(arg.ID, func(u *dbc.User) error {
		if m.emailTakenLocked(arg.Email, arg.ID.Bytes) {
			return &pgconn.PgError{Code: "23505"}
		}
		u.Name = arg.Name
		u.Lastname = arg.Lastname
		u.Email = arg.Email
		u.DateOfBirth = arg.DateOfBirth
		u.Profession = arg.Profession
		return nil
	})
}

func (m *memStore) update(id pgtype.UUID, fn func(u *dbc.User) error) (dbc.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id.Bytes]
	if !ok {
		return dbc.User{}, pgx.ErrNoRows
	}
	if err := fn(&u); err != nil {
		return dbc.User{}, err
	}
	u.UpdatedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	m.users[id.Bytes] = u
	return u, nil
}

// memStorage is an in-memory storage.StorageService.
type memStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	failUpload bool
}

var _ storage.StorageService = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *memStorage) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	s.mu.Lock()
	fail := s.failUpload
	s.mu.Unlock()
	if fail {
		return errors.New("storage unavailable")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	s.types[key] = contentType
	return nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

func (s *memStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://cdn.test/" + key, nil
}

func (s *memStorage) setFailUpload(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpload = fail
}

func (s *memStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
