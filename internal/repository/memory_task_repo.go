package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/tareas/internal/model"
)

// MemoryTaskRepo はメモリ上のタスクリポジトリ。
// IDはインスタンス単位で単調増加し、削除後も再利用されない。
// net/httpはリクエストを並行処理するため、ミューテックスで直列化する。
type MemoryTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]*model.Task
	nextID int64
}

// NewMemoryTaskRepo はMemoryTaskRepoを生成する。
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{
		tasks:  make(map[int64]*model.Task),
		nextID: 1,
	}
}

// Create はタスクを作成し、IDとCreatedAtを書き戻す。
// 同一所有者内の説明文重複はConflictのAPIErrorを返す。
func (r *MemoryTaskRepo) Create(ctx context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsDescriptionLocked(task.OwnerID, task.Description, 0) {
		return model.NewDuplicateDescriptionError()
	}

	task.ID = r.nextID
	r.nextID++
	task.CreatedAt = time.Now()

	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

// FindByOwnerAndID は所有者スコープでタスクを取得する。見つからない場合はnilを返す。
func (r *MemoryTaskRepo) FindByOwnerAndID(ctx context.Context, ownerID, taskID int64) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return nil, nil
	}

	copied := *task
	return &copied, nil
}

// ListByOwner は所有者の全タスクをID昇順で返す。
func (r *MemoryTaskRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tasks []*model.Task
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			copied := *task
			tasks = append(tasks, &copied)
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// ExistsDescription は所有者のタスクに説明文の重複があるか調べる。
func (r *MemoryTaskRepo) ExistsDescription(ctx context.Context, ownerID int64, description string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.existsDescriptionLocked(ownerID, description, excludeID), nil
}

func (r *MemoryTaskRepo) existsDescriptionLocked(ownerID int64, description string, excludeID int64) bool {
	for _, task := range r.tasks {
		if task.OwnerID != ownerID || task.ID == excludeID {
			continue
		}
		if strings.EqualFold(task.Description, description) {
			return true
		}
	}
	return false
}

// Update はタスクの説明文と完了フラグを更新する。
func (r *MemoryTaskRepo) Update(ctx context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return model.NewTaskNotFoundError()
	}

	if r.existsDescriptionLocked(task.OwnerID, task.Description, task.ID) {
		return model.NewDuplicateDescriptionError()
	}

	existing.Description = task.Description
	existing.Completed = task.Completed
	return nil
}

// Delete は所有者スコープでタスクを削除する。削除した場合はtrueを返す。
// 採番済みIDは再利用しない。
func (r *MemoryTaskRepo) Delete(ctx context.Context, ownerID, taskID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return false, nil
	}

	delete(r.tasks, taskID)
	return true, nil
}

// compile-time interface check
var _ TaskRepository = (*MemoryTaskRepo)(nil)
