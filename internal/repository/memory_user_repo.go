package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/userauth/internal/model"
)

// MemoryUserRepo はプロセス内メモリに保持するユーザーリポジトリ。
// PostgresUserRepoと同じ一意性・採番の規則に従う。
// DBを用意できないテストやローカル検証で使用する。
type MemoryUserRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*model.User
	byEmail map[string]int64
}

// NewMemoryUserRepo は空のMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[int64]*model.User),
		byEmail: make(map[string]int64),
	}
}

// FindByEmail はメールアドレスの完全一致でユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyUser(r.byID[id]), nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

// Create はユーザーを作成する。
// 重複判定と挿入は同一ロック内で行うため、並行呼び出しでも重複は生じない。
// IDは削除後も再利用しない。
func (r *MemoryUserRepo) Create(_ context.Context, email, passwordHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, model.ErrDuplicateEmail
	}

	r.nextID++
	user := &model.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.byID[user.ID] = user
	r.byEmail[email] = user.ID

	return copyUser(user), nil
}

// Delete は指定IDのユーザーを削除する。
// サービス外（運用作業など）での削除を再現するために使う。
func (r *MemoryUserRepo) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
}

// Count は保持しているユーザー数を返す。
func (r *MemoryUserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
