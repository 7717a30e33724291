// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Nameは登録時の表記のまま保持するが、一意性の判定は大文字小文字を区別しない。
// PasswordHashにはbcryptハッシュのみを格納し、平文パスワードは保持しない。
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
