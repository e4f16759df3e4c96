package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-bookstore/internal/model"
)

type memoryState struct {
	users       map[int64]model.User
	resetTokens map[int64]model.PasswordResetToken
	books       map[int64]model.Book
	nextUserID  int64
	nextTokenID int64
	nextBookID  int64
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		users:       make(map[int64]model.User, len(s.users)),
		resetTokens: make(map[int64]model.PasswordResetToken, len(s.resetTokens)),
		books:       make(map[int64]model.Book, len(s.books)),
		nextUserID:  s.nextUserID,
		nextTokenID: s.nextTokenID,
		nextBookID:  s.nextBookID,
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.resetTokens {
		out.resetTokens[k] = v
	}
	for k, v := range s.books {
		out.books[k] = v
	}
	return out
}

// MemoryStore keeps everything in process memory. Transactions are
// serialized and work on a copy of the state that is swapped in on commit.
type MemoryStore struct {
	mu    *sync.RWMutex
	state *memoryState
	// inTx marks a transactional view; its caller already holds mu.
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.RWMutex{},
		state: &memoryState{
			users:       map[int64]model.User{},
			resetTokens: map[int64]model.PasswordResetToken{},
			books:       map[int64]model.Book{},
		},
	}
}

func (s *MemoryStore) Users() Users             { return memoryUsers{s} }
func (s *MemoryStore) ResetTokens() ResetTokens { return memoryResetTokens{s} }
func (s *MemoryStore) Books() Books             { return memoryBooks{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.state.clone()
	if err := fn(&MemoryStore{mu: s.mu, state: working, inTx: true}); err != nil {
		return err
	}

	s.state = working
	return nil
}

func (s *MemoryStore) read(fn func(st *memoryState)) {
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn(s.state)
}

func (s *MemoryStore) write(fn func(st *memoryState)) {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(s.state)
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	var (
		u  model.User
		ok bool
	)
	r.s.read(func(st *memoryState) { u, ok = st.users[id] })
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r memoryUsers) FindByUsername(_ context.Context, username string) (model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Username == username })
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Email == email })
}

func (r memoryUsers) findBy(match func(model.User) bool) (model.User, error) {
	var (
		found model.User
		ok    bool
	)
	r.s.read(func(st *memoryState) {
		for _, u := range st.users {
			if match(u) {
				found, ok = u, true
				return
			}
		}
	})
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return found, nil
}

func (r memoryUsers) ExistsByUsernameOrEmail(_ context.Context, username string, email string) (bool, error) {
	_, err := r.findBy(func(u model.User) bool { return u.Username == username || u.Email == email })
	return err == nil, nil
}

func (r memoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	var err error
	r.s.write(func(st *memoryState) {
		for _, existing := range st.users {
			if existing.Username == u.Username || existing.Email == u.Email {
				err = model.ErrUserAlreadyExists
				return
			}
		}
		st.nextUserID++
		u.ID = st.nextUserID
		st.users[u.ID] = u
	})
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r memoryUsers) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	err := model.ErrUserNotFound
	r.s.write(func(st *memoryState) {
		u, ok := st.users[userID]
		if !ok {
			return
		}
		u.PasswordHash = passwordHash
		u.UpdatedAt = time.Now().UTC()
		st.users[userID] = u
		err = nil
	})
	return err
}

type memoryResetTokens struct{ s *MemoryStore }

func (r memoryResetTokens) Create(_ context.Context, t model.PasswordResetToken) (model.PasswordResetToken, error) {
	r.s.write(func(st *memoryState) {
		st.nextTokenID++
		t.ID = st.nextTokenID
		st.resetTokens[t.ID] = t
	})
	return t, nil
}

func (r memoryResetTokens) FindByHashForUpdate(_ context.Context, tokenHash string) (model.PasswordResetToken, error) {
	var (
		found model.PasswordResetToken
		ok    bool
	)
	r.s.read(func(st *memoryState) {
		for _, t := range st.resetTokens {
			if t.TokenHash == tokenHash {
				found, ok = t, true
				return
			}
		}
	})
	if !ok {
		return model.PasswordResetToken{}, model.ErrResetTokenNotFound
	}
	return found, nil
}

func (r memoryResetTokens) DeleteAllForUser(_ context.Context, userID int64) (int64, error) {
	return r.deleteWhere(func(t model.PasswordResetToken) bool { return t.UserID == userID }), nil
}

func (r memoryResetTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(t model.PasswordResetToken) bool { return t.Expired(now) }), nil
}

func (r memoryResetTokens) deleteWhere(match func(model.PasswordResetToken) bool) int64 {
	var deleted int64
	r.s.write(func(st *memoryState) {
		for id, t := range st.resetTokens {
			if match(t) {
				delete(st.resetTokens, id)
				deleted++
			}
		}
	})
	return deleted
}

type memoryBooks struct{ s *MemoryStore }

func (r memoryBooks) Create(_ context.Context, b model.Book) (model.Book, error) {
	r.s.write(func(st *memoryState) {
		st.nextBookID++
		b.ID = st.nextBookID
		st.books[b.ID] = b
	})
	return b, nil
}

func (r memoryBooks) List(_ context.Context) ([]model.Book, error) {
	books := make([]model.Book, 0)
	r.s.read(func(st *memoryState) {
		for _, b := range st.books {
			books = append(books, b)
		}
	})
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (r memoryBooks) FindByID(_ context.Context, id int64) (model.Book, error) {
	var (
		b  model.Book
		ok bool
	)
	r.s.read(func(st *memoryState) { b, ok = st.books[id] })
	if !ok {
		return model.Book{}, model.ErrBookNotFound
	}
	return b, nil
}

func (r memoryBooks) Update(_ context.Context, b model.Book) (model.Book, error) {
	err := model.ErrBookNotFound
	r.s.write(func(st *memoryState) {
		if _, ok := st.books[b.ID]; !ok {
			return
		}
		st.books[b.ID] = b
		err = nil
	})
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r memoryBooks) Delete(_ context.Context, id int64) error {
	err := model.ErrBookNotFound
	r.s.write(func(st *memoryState) {
		if _, ok := st.books[id]; !ok {
			return
		}
		delete(st.books, id)
		err = nil
	})
	return err
}
