package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/tareas/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// IDの単調増加・非再利用はBIGSERIALのシーケンスが保証する。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Create はタスクを作成し、IDとCreatedAtを書き戻す。
// (usuario_id, lower(descripcion))の一意インデックス違反はConflictのAPIErrorに変換する。
// 事前チェックをすり抜けた並行作成でも409になり、重複行は生まれない。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	now := time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tareas (usuario_id, descripcion, completada, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		task.OwnerID, task.Description, task.Completed, now,
	).Scan(&task.ID)

	if isUniqueViolation(err) {
		return model.NewDuplicateDescriptionError()
	}
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.CreatedAt = now
	return nil
}

// FindByOwnerAndID は所有者スコープでタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByOwnerAndID(ctx context.Context, ownerID, taskID int64) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, usuario_id, descripcion, completada, created_at
		 FROM tareas WHERE usuario_id = $1 AND id = $2`,
		ownerID, taskID,
	).Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListByOwner は所有者の全タスクをID昇順で返す。
func (r *PostgresTaskRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, usuario_id, descripcion, completada, created_at
		 FROM tareas WHERE usuario_id = $1
		 ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task := &model.Task{}
		if err := rows.Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// ExistsDescription は所有者のタスクに説明文の重複があるか調べる。
func (r *PostgresTaskRepo) ExistsDescription(ctx context.Context, ownerID int64, description string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM tareas
			WHERE usuario_id = $1 AND lower(descripcion) = lower($2) AND id <> $3
		)`,
		ownerID, description, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check description: %w", err)
	}

	return exists, nil
}

// Update はタスクの説明文と完了フラグを更新する。
// 一意インデックス違反はConflictのAPIErrorに変換する。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tareas SET descripcion = $1, completada = $2
		 WHERE usuario_id = $3 AND id = $4`,
		task.Description, task.Completed, task.OwnerID, task.ID,
	)
	if isUniqueViolation(err) {
		return model.NewDuplicateDescriptionError()
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewTaskNotFoundError()
	}

	return nil
}

// Delete は所有者スコープでタスクを削除する。削除した場合はtrueを返す。
func (r *PostgresTaskRepo) Delete(ctx context.Context, ownerID, taskID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tareas WHERE usuario_id = $1 AND id = $2`,
		ownerID, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
