package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"toolhub/internal/model"
	"toolhub/internal/repository"
)

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]model.User
	nextID int64
	err    error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	r.users[user.Email] = *user
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type memToolRepo struct {
	tools []model.Tool
	err   error
}

func (r *memToolRepo) ListVisible(context.Context) ([]model.Tool, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]model.Tool(nil), r.tools...), nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

var errStoreDown = errors.New("connection refused")
