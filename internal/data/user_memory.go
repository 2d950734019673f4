package data

import (
	"context"
	"sync"
	"time"

	"keum-identity/internal/biz/model"
)

type memoryUserRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]*model.User
	now    func() time.Time
}

// NewMemoryUserRepo 进程内实现，用于本地开发与测试
func NewMemoryUserRepo() UserRepo {
	return &memoryUserRepo{
		users: make(map[string]*model.User),
		now:   time.Now,
	}
}

func (r *memoryUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *memoryUserRepo) GetUserByNickname(_ context.Context, nickname string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Nickname == nickname {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepo) nicknameHeldLocked(nickname, except string) bool {
	for name, u := range r.users {
		if name != except && u.Nickname == nickname {
			return true
		}
	}
	return false
}

func (r *memoryUserRepo) CreateUser(_ context.Context, req *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[req.Username]; ok {
		return nil, model.ErrUsernameTaken
	}
	if r.nicknameHeldLocked(req.Nickname, "") {
		return nil, model.ErrNicknameTaken
	}

	r.nextID++
	now := r.now()
	u := &model.User{
		ID:                r.nextID,
		Username:          req.Username,
		PasswordSurrogate: req.PasswordSurrogate,
		Nickname:          req.Nickname,
		Provider:          req.Provider,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.users[u.Username] = u
	c := *u
	return &c, nil
}

func (r *memoryUserRepo) UpdateNickname(_ context.Context, username, nickname string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, ErrUserNotFound
	}
	if r.nicknameHeldLocked(nickname, username) {
		return nil, model.ErrNicknameTaken
	}
	u.Nickname = nickname
	u.UpdatedAt = r.now()
	c := *u
	return &c, nil
}

func (r *memoryUserRepo) Deactivate(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, ErrUserNotFound
	}
	u.Active = false
	u.UpdatedAt = r.now()
	c := *u
	return &c, nil
}
