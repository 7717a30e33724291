package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/tareas/internal/model"
)

func mustCreateTask(t *testing.T, repo *MemoryTaskRepo, ownerID int64, description string) *model.Task {
	t.Helper()
	task := &model.Task{OwnerID: ownerID, Description: description}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("Create(%q) failed: %v", description, err)
	}
	return task
}

func TestMemoryTaskRepo_Create_IDsAreMonotonicAndNeverReused(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	first := mustCreateTask(t, repo, 1, "Comprar leche")
	second := mustCreateTask(t, repo, 1, "Pagar facturas")

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first.ID, second.ID)
	}

	if _, err := repo.Delete(ctx, 1, second.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// 削除後もIDは巻き戻らない
	third := mustCreateTask(t, repo, 1, "Sacar al perro")
	if third.ID != 3 {
		t.Errorf("third.ID = %d, want 3 (ids must never be reused)", third.ID)
	}
}

func TestMemoryTaskRepo_Create_DuplicateDescriptionSameOwner(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	mustCreateTask(t, repo, 1, "Comprar leche")

	err := repo.Create(ctx, &model.Task{OwnerID: 1, Description: "comprar LECHE"})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateDescription {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateDescription)
	}
}

func TestMemoryTaskRepo_Create_SameDescriptionDifferentOwner_Succeeds(t *testing.T) {
	repo := NewMemoryTaskRepo()

	mustCreateTask(t, repo, 1, "Comprar leche")
	// 別所有者なら同じ説明文でも作成できる
	mustCreateTask(t, repo, 2, "Comprar leche")
}

func TestMemoryTaskRepo_FindByOwnerAndID_ForeignOwner_ReturnsNil(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	task := mustCreateTask(t, repo, 1, "Comprar leche")

	found, err := repo.FindByOwnerAndID(ctx, 2, task.ID)
	if err != nil {
		t.Fatalf("FindByOwnerAndID failed: %v", err)
	}
	if found != nil {
		t.Error("expected nil for foreign-owned task")
	}
}

func TestMemoryTaskRepo_ListByOwner_OrderedByID(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	mustCreateTask(t, repo, 1, "c")
	mustCreateTask(t, repo, 2, "ajena")
	mustCreateTask(t, repo, 1, "a")
	mustCreateTask(t, repo, 1, "b")

	tasks, err := repo.ListByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("len(tasks) = %d, want 3", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID >= tasks[i].ID {
			t.Errorf("tasks not in ascending id order: %d before %d", tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestMemoryTaskRepo_ExistsDescription_ExcludesGivenID(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	task := mustCreateTask(t, repo, 1, "Comprar leche")

	// 自分自身は除外される
	exists, err := repo.ExistsDescription(ctx, 1, "comprar leche", task.ID)
	if err != nil {
		t.Fatalf("ExistsDescription failed: %v", err)
	}
	if exists {
		t.Error("expected no duplicate when excluding the task itself")
	}

	exists, err = repo.ExistsDescription(ctx, 1, "comprar leche", 0)
	if err != nil {
		t.Fatalf("ExistsDescription failed: %v", err)
	}
	if !exists {
		t.Error("expected duplicate without exclusion")
	}
}

func TestMemoryTaskRepo_Update_AppliesFields(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	task := mustCreateTask(t, repo, 1, "Estudiar")

	task.Description = "Estudiar Go"
	task.Completed = true
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, _ := repo.FindByOwnerAndID(ctx, 1, task.ID)
	if updated.Description != "Estudiar Go" || !updated.Completed {
		t.Errorf("updated task = %+v, want description %q completed true", updated, "Estudiar Go")
	}
}

func TestMemoryTaskRepo_Update_ForeignOwner_NotFound(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	task := mustCreateTask(t, repo, 1, "Comprar leche")

	foreign := *task
	foreign.OwnerID = 2
	err := repo.Update(ctx, &foreign)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTaskNotFound {
		t.Errorf("expected TASK_NOT_FOUND, got %v", err)
	}
}

func TestMemoryTaskRepo_Update_DuplicateDescription_Conflict(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	mustCreateTask(t, repo, 1, "Hacer la compra")
	task := mustCreateTask(t, repo, 1, "Sacar al perro")

	task.Description = "hacer LA compra"
	err := repo.Update(ctx, task)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateDescription {
		t.Fatalf("expected DUPLICATE_DESCRIPTION, got %v", err)
	}

	// 失敗した更新は何も書き換えない
	stored, _ := repo.FindByOwnerAndID(ctx, 1, task.ID)
	if stored.Description != "Sacar al perro" {
		t.Errorf("description = %q, want unchanged %q", stored.Description, "Sacar al perro")
	}
}

func TestMemoryTaskRepo_Delete(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	task := mustCreateTask(t, repo, 1, "Prueba borrar")

	deleted, err := repo.Delete(ctx, 1, task.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted = true")
	}

	// 再削除はfalse
	deleted, err = repo.Delete(ctx, 1, task.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("expected deleted = false for missing task")
	}
}

func TestMemoryTaskRepo_Delete_ForeignOwner_ReturnsFalse(t *testing.T) {
	repo := NewMemoryTaskRepo()
	ctx := context.Background()

	task := mustCreateTask(t, repo, 1, "Comprar leche")

	deleted, err := repo.Delete(ctx, 2, task.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("expected deleted = false for foreign owner")
	}

	// 元の所有者からはまだ見える
	found, _ := repo.FindByOwnerAndID(ctx, 1, task.ID)
	if found == nil {
		t.Error("task should still exist for its owner")
	}
}
