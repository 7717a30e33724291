// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// CategoryはHTTPレスポンスの error フィールドにそのまま出力される分類文字列、
// Detailは detalle フィールドに出力される詳細メッセージ。
type APIError struct {
	Code     string // エラーコード（ログ・メトリクス用）
	Category string // 分類: Solicitud invalida, No autorizado, Recurso no encontrado, Conflicto 等
	Detail   string // クライアント向け詳細メッセージ（省略可）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Category)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Detail)
}

// エラー分類文字列。APIレスポンスの error フィールドの値になる。
const (
	CategoryBadRequest       = "Solicitud invalida"
	CategoryUnauthorized     = "No autorizado"
	CategoryNotFound         = "Recurso no encontrado"
	CategoryConflict         = "Conflicto"
	CategoryMethodNotAllowed = "Metodo no permitido"
	CategoryInternal         = "Error interno del servidor"
)

// 定義済みエラーコード
const (
	ErrCodeMalformedBody        = "MALFORMED_BODY"
	ErrCodeMissingDescription   = "MISSING_DESCRIPTION"
	ErrCodeInvalidDescription   = "INVALID_DESCRIPTION"
	ErrCodeInvalidCompleted     = "INVALID_COMPLETED"
	ErrCodeInvalidName          = "INVALID_NAME"
	ErrCodeInvalidPassword      = "INVALID_PASSWORD"
	ErrCodeNameTaken            = "NAME_TAKEN"
	ErrCodeDuplicateDescription = "DUPLICATE_DESCRIPTION"
	ErrCodeTaskNotFound         = "TASK_NOT_FOUND"
	ErrCodeRouteNotFound        = "ROUTE_NOT_FOUND"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
)

// NewMalformedBodyError はJSONオブジェクトとして解釈できないボディに対するエラーを生成する。
func NewMalformedBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeMalformedBody,
		Category: CategoryBadRequest,
		Detail:   "Se esperaba un cuerpo JSON de tipo objeto.",
	}
}

// NewMissingDescriptionError は作成時にdescripcionが欠落している場合のエラーを生成する。
func NewMissingDescriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingDescription,
		Category: CategoryBadRequest,
		Detail:   "El campo 'descripcion' es obligatorio.",
	}
}

// NewInvalidDescriptionError は不正なdescripcion値に対するエラーを生成する。
func NewInvalidDescriptionError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDescription,
		Category: CategoryBadRequest,
		Detail:   detail,
	}
}

// NewInvalidCompletedError は真偽値でないcompletada値に対するエラーを生成する。
func NewInvalidCompletedError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCompleted,
		Category: CategoryBadRequest,
		Detail:   "El campo 'completada' debe ser booleano.",
	}
}

// NewInvalidNameError は不正なnombre値に対するエラーを生成する。
func NewInvalidNameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Category: CategoryBadRequest,
		Detail:   "El campo 'nombre' debe ser una cadena no vacia.",
	}
}

// NewInvalidPasswordError は最小長を満たさないpassword値に対するエラーを生成する。
func NewInvalidPasswordError(minLength int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Category: CategoryBadRequest,
		Detail:   fmt.Sprintf("El campo 'password' debe tener al menos %d caracteres.", minLength),
	}
}

// NewNameTakenError は登録済みユーザー名の重複に対するエラーを生成する。
func NewNameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeNameTaken,
		Category: CategoryConflict,
		Detail:   "Ya existe un usuario con el mismo nombre.",
	}
}

// NewDuplicateDescriptionError は同一所有者内での説明文重複に対するエラーを生成する。
func NewDuplicateDescriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateDescription,
		Category: CategoryConflict,
		Detail:   "Ya existe una tarea con la misma descripcion.",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 他ユーザー所有のタスクも存在しないものとして同じエラーになる。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Category: CategoryNotFound,
		Detail:   "La tarea solicitada no existe.",
	}
}

// NewRouteNotFoundError は未定義ルートへのアクセスに対するエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeRouteNotFound,
		Category: CategoryNotFound,
		Detail:   "La ruta solicitada no existe.",
	}
}

// NewMethodNotAllowedError は定義済みルートへの未対応メソッドに対するエラーを生成する。
func NewMethodNotAllowedError() *APIError {
	return &APIError{
		Code:     ErrCodeMethodNotAllowed,
		Category: CategoryMethodNotAllowed,
		Detail:   "El metodo no esta permitido para esta ruta.",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー不存在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Category: CategoryUnauthorized,
		Detail:   "Credenciales invalidas.",
	}
}

// NewUnauthorizedError はトークン不備による認証失敗エラーを生成する。
// 失敗理由（invalid/expired/incomplete/unknown-user）はログとメトリクスでのみ区別する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Category: CategoryUnauthorized,
		Detail:   "Token de sesion ausente o invalido.",
	}
}
