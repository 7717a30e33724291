// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/tareas/internal/model"
	"github.com/hitoshi/tareas/internal/validator"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, name, password string) (*model.User, error)
	// Login は認証情報を検証しトークンを発行する。
	Login(ctx context.Context, name, password string) (string, *model.User, error)
}

// RegistrationRecorder はユーザー登録をメトリクスに記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type RegistrationRecorder interface {
	RecordUserRegistered()
}

// AuthHandler はユーザー登録とログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics RegistrationRecorder // nil可
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, metrics RegistrationRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// userResponse は登録済みユーザーのAPIレスポンス。
type userResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// loginResponse はログイン成功時のAPIレスポンス。
type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"usuario"`
}

// Registro は新規ユーザー登録を処理する。
// POST /registro
func (h *AuthHandler) Registro(w http.ResponseWriter, r *http.Request) {
	creds, err := validator.ParseCredentials(r.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), creds.Name, creds.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}

	writeJSONResponse(w, http.StatusCreated, userResponse{
		ID:   user.ID,
		Name: user.Name,
	})
}

// Login は認証情報を検証しBearerトークンを発行する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := validator.ParseCredentials(r.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), creds.Name, creds.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{
		Token: token,
		User: userResponse{
			ID:   user.ID,
			Name: user.Name,
		},
	})
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
type errorResponseBody struct {
	Error   string `json:"error"`
	Detalle string `json:"detalle,omitempty"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponseBody{
		Error:   apiErr.Category,
		Detalle: apiErr.Detail,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Category: model.CategoryInternal,
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorの分類からHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Category {
	case model.CategoryBadRequest:
		return http.StatusBadRequest
	case model.CategoryUnauthorized:
		return http.StatusUnauthorized
	case model.CategoryNotFound:
		return http.StatusNotFound
	case model.CategoryConflict:
		return http.StatusConflict
	case model.CategoryMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
