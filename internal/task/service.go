// Package task はタスクの管理機能を提供する。
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/tareas/internal/model"
	"github.com/hitoshi/tareas/internal/repository"
)

// MutationRecorder はタスクの作成・更新・削除をメトリクスに記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type MutationRecorder interface {
	RecordTaskMutation(operation string)
}

// Service はタスクCRUDのビジネスロジックを提供する。
// 全操作は所有者スコープで動作する。説明文の正規化（トリム・長さ検証）は
// バリデータ層で済んでいる前提で、ここでは一意性と所有権のみを扱う。
type Service struct {
	tasks   repository.TaskRepository
	metrics MutationRecorder // nil可
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(tasks repository.TaskRepository, metrics MutationRecorder) *Service {
	return &Service{
		tasks:   tasks,
		metrics: metrics,
	}
}

// Create は新しいタスクを作成する。
// 同一所有者内で説明文が重複（大文字小文字を区別しない）する場合はConflictを返す。
// 重複チェックは所有者のタスクに限定され、他ユーザーの同一説明文とは衝突しない。
func (s *Service) Create(ctx context.Context, ownerID int64, description string, completed bool) (*model.Task, error) {
	dup, err := s.tasks.ExistsDescription(ctx, ownerID, description, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate description: %w", err)
	}
	if dup {
		return nil, model.NewDuplicateDescriptionError()
	}

	task := &model.Task{
		OwnerID:     ownerID,
		Description: description,
		Completed:   completed,
	}
	// 事前チェックと挿入の競合はリポジトリの一意制約が同じConflictに変換する
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	slog.Info("task created",
		slog.Int64("user_id", ownerID),
		slog.Int64("task_id", task.ID),
	)
	s.record("create")

	return task, nil
}

// Get は所有者スコープでタスクを取得する。
// 他ユーザー所有のタスクは存在しない場合と区別せずNotFoundを返す。
func (s *Service) Get(ctx context.Context, ownerID, taskID int64) (*model.Task, error) {
	task, err := s.tasks.FindByOwnerAndID(ctx, ownerID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}

	return task, nil
}

// List は所有者の全タスクを作成順（ID昇順）で返す。
func (s *Service) List(ctx context.Context, ownerID int64) ([]*model.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Update はリクエストに含まれるフィールドのみを更新する。
// descriptionが他タスク（自分自身は除く）と重複する場合は書き込み前にConflictを返し、
// タスクは元の状態のまま残る。両フィールドともnilの場合は何も変更せず現状を返す。
func (s *Service) Update(ctx context.Context, ownerID, taskID int64, description *string, completed *bool) (*model.Task, error) {
	task, err := s.tasks.FindByOwnerAndID(ctx, ownerID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}

	if description == nil && completed == nil {
		// 認識可能なフィールドがないリクエストはno-op
		return task, nil
	}

	if description != nil {
		dup, err := s.tasks.ExistsDescription(ctx, ownerID, *description, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate description: %w", err)
		}
		if dup {
			return nil, model.NewDuplicateDescriptionError()
		}
		task.Description = *description
	}
	if completed != nil {
		task.Completed = *completed
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	slog.Info("task updated",
		slog.Int64("user_id", ownerID),
		slog.Int64("task_id", taskID),
	)
	s.record("update")

	return task, nil
}

// Delete は所有者スコープでタスクを削除する。IDは再利用されない。
func (s *Service) Delete(ctx context.Context, ownerID, taskID int64) error {
	deleted, err := s.tasks.Delete(ctx, ownerID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError()
	}

	slog.Info("task deleted",
		slog.Int64("user_id", ownerID),
		slog.Int64("task_id", taskID),
	)
	s.record("delete")

	return nil
}

func (s *Service) record(operation string) {
	if s.metrics != nil {
		s.metrics.RecordTaskMutation(operation)
	}
}
