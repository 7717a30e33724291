// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/tareas/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、IDとCreatedAtを採番して引数のuserに書き戻す。
	// 大文字小文字を区別しない名前の重複はAPIError（Conflict）を返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByName は名前でユーザーを検索する。比較は大文字小文字を区別しない。
	// 見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// 全操作は所有者スコープで動作し、他ユーザーのタスクは存在しないものとして扱う。
type TaskRepository interface {
	// Create はタスクを作成し、IDとCreatedAtを採番して引数のtaskに書き戻す。
	// IDは単調増加で、削除後も再利用されない。
	// 同一所有者内の説明文重複はAPIError（Conflict）を返す。
	Create(ctx context.Context, task *model.Task) error

	// FindByOwnerAndID は所有者スコープでタスクを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByOwnerAndID(ctx context.Context, ownerID, taskID int64) (*model.Task, error)

	// ListByOwner は所有者の全タスクをID昇順（作成順）で返す。
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Task, error)

	// ExistsDescription は所有者のタスクに説明文の重複があるか調べる。
	// 比較は大文字小文字を区別しない。excludeIDのタスクは対象外（0で除外なし）。
	ExistsDescription(ctx context.Context, ownerID int64, description string, excludeID int64) (bool, error)

	// Update はタスクの説明文と完了フラグを更新する。
	// 同一所有者内の説明文重複はAPIError（Conflict）を返す。
	Update(ctx context.Context, task *model.Task) error

	// Delete は所有者スコープでタスクを削除する。
	// 削除した場合はtrue、対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, ownerID, taskID int64) (bool, error)
}
