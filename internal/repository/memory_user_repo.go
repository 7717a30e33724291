package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/tareas/internal/model"
)

// MemoryUserRepo はメモリ上のユーザーリポジトリ。
// テストとSTORE_DRIVER=memory起動で使用する。グローバル状態を持たず、
// インスタンスごとに独立したストアとして注入される。
type MemoryUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users:  make(map[int64]*model.User),
		nextID: 1,
	}
}

// Create はユーザーを作成し、IDとCreatedAtを書き戻す。
// 大文字小文字を区別しない名前の重複はConflictのAPIErrorを返す。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Name, user.Name) {
			return model.NewNameTakenError()
		}
	}

	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}

	copied := *user
	return &copied, nil
}

// FindByName は名前でユーザーを検索する。比較は大文字小文字を区別しない。
func (r *MemoryUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Name, name) {
			copied := *user
			return &copied, nil
		}
	}

	return nil, nil
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
