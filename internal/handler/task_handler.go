package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/tareas/internal/middleware"
	"github.com/hitoshi/tareas/internal/model"
	"github.com/hitoshi/tareas/internal/validator"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, ownerID int64, description string, completed bool) (*model.Task, error)
	// Get は所有者のタスクを1件取得する。
	Get(ctx context.Context, ownerID, taskID int64) (*model.Task, error)
	// List は所有者のタスク一覧をID昇順で返す。
	List(ctx context.Context, ownerID int64) ([]*model.Task, error)
	// Update はタスクを部分更新する。
	Update(ctx context.Context, ownerID, taskID int64, description *string, completed *bool) (*model.Task, error)
	// Delete はタスクを削除する。
	Delete(ctx context.Context, ownerID, taskID int64) error
}

// TaskHandler はタスクCRUDのHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// taskResponse はタスクのAPIレスポンス。
type taskResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"descripcion"`
	Completed   bool   `json:"completada"`
}

// toTaskResponse はドメインのTaskをレスポンス型に変換する。
func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
	}
}

// Crear はタスク作成を処理する。
// POST /tareas
func (h *TaskHandler) Crear(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	payload, err := validator.ParseTaskPayload(r.Body, false)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	completed := false
	if payload.Completed != nil {
		completed = *payload.Completed
	}

	task, err := h.service.Create(r.Context(), user.ID, *payload.Description, completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/tareas/%d", task.ID))
	writeJSONResponse(w, http.StatusCreated, toTaskResponse(task))
}

// Listar は所有タスクの一覧を返す。
// GET /tareas
func (h *TaskHandler) Listar(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	tasks, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// タスクが無い場合もnullではなく空配列を返す
	results := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, toTaskResponse(t))
	}

	writeJSONResponse(w, http.StatusOK, results)
}

// Obtener はタスク1件の詳細を返す。
// GET /tareas/{id}
func (h *TaskHandler) Obtener(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	task, err := h.service.Get(r.Context(), user.ID, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(task))
}

// Actualizar はタスクの部分更新を処理する。
// PUT /tareas/{id}
func (h *TaskHandler) Actualizar(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	payload, err := validator.ParseTaskPayload(r.Body, true)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), user.ID, taskID, payload.Description, payload.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(task))
}

// Eliminar はタスク削除を処理する。
// DELETE /tareas/{id}
func (h *TaskHandler) Eliminar(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseTaskID はURLパラメータからタスクIDを取り出す。
// 数値でないIDは存在しないリソースとして扱う。
func parseTaskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, model.NewTaskNotFoundError()
	}
	return id, nil
}
