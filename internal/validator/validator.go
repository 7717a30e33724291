// Package validator はリクエストボディの検証と正規化を提供する。
// ストア層に到達する前に入力を整え、失敗時は理由別のAPIErrorを返す純関数群。
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/tareas/internal/auth"
	"github.com/hitoshi/tareas/internal/model"
)

// TaskPayload は正規化済みのタスクペイロード。
// nilのフィールドはリクエストに含まれていなかったことを表す。
type TaskPayload struct {
	Description *string
	Completed   *bool
}

// Credentials は正規化済みの認証ペイロード。
type Credentials struct {
	Name     string
	Password string
}

// decodeObject はボディを単一のJSONオブジェクトとして読む。
// 配列・スカラー・null・不正なJSONはすべてmalformed-bodyとして扱う。
func decodeObject(r io.Reader) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return nil, model.NewMalformedBodyError()
	}
	if fields == nil {
		return nil, model.NewMalformedBodyError()
	}
	return fields, nil
}

// ParseTaskPayload はタスク作成・更新リクエストのボディを検証する。
// partialがfalseの場合（作成時）はdescripcionが必須。
// descripcionは前後の空白を除去し、空文字と255文字超を拒否する。
// completadaはJSONの真偽値リテラルのみを受け付ける。
func ParseTaskPayload(r io.Reader, partial bool) (*TaskPayload, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return nil, err
	}

	payload := &TaskPayload{}

	if raw, ok := fields["descripcion"]; ok {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			return nil, model.NewInvalidDescriptionError("El campo 'descripcion' debe ser una cadena no vacia.")
		}
		description = strings.TrimSpace(description)
		if description == "" {
			return nil, model.NewInvalidDescriptionError("El campo 'descripcion' debe ser una cadena no vacia.")
		}
		if utf8.RuneCountInString(description) > model.MaxDescriptionLength {
			return nil, model.NewInvalidDescriptionError(
				fmt.Sprintf("La descripcion no puede exceder %d caracteres.", model.MaxDescriptionLength))
		}
		payload.Description = &description
	} else if !partial {
		return nil, model.NewMissingDescriptionError()
	}

	if raw, ok := fields["completada"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return nil, model.NewInvalidCompletedError()
		}
		payload.Completed = &completed
	}

	return payload, nil
}

// ParseCredentials は登録・ログインリクエストのボディを検証する。
// nombreは前後の空白を除去した非空文字列、passwordは最小長以上の文字列。
func ParseCredentials(r io.Reader) (*Credentials, error) {
	fields, err := decodeObject(r)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{}

	raw, ok := fields["nombre"]
	if !ok {
		return nil, model.NewInvalidNameError()
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return nil, model.NewInvalidNameError()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewInvalidNameError()
	}
	creds.Name = name

	raw, ok = fields["password"]
	if !ok {
		return nil, model.NewInvalidPasswordError(auth.MinPasswordLength)
	}
	var password string
	if err := json.Unmarshal(raw, &password); err != nil {
		return nil, model.NewInvalidPasswordError(auth.MinPasswordLength)
	}
	if utf8.RuneCountInString(password) < auth.MinPasswordLength {
		return nil, model.NewInvalidPasswordError(auth.MinPasswordLength)
	}
	creds.Password = password

	return creds, nil
}
