package service

import (
	"context"
	"sync"
	"time"

	"toolhub/internal/model"
	"toolhub/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int64
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
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
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	found := *u
	return &found, nil
}

type fakeToolRepo struct {
	tools []model.Tool
	err   error
}

func (r *fakeToolRepo) ListVisible(context.Context) ([]model.Tool, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]model.Tool(nil), r.tools...), nil
}
