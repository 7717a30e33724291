// Package model はドメインモデルを定義する。
package model

import "time"

// MaxDescriptionLength はタスク説明文の最大文字数。
const MaxDescriptionLength = 255

// Task はユーザーが所有するタスクを表す。
// IDはストア単位で単調増加し、削除後も再利用されない。
// 同一所有者のタスク間では、説明文は大文字小文字を区別せず一意でなければならない。
type Task struct {
	ID          int64
	OwnerID     int64
	Description string
	Completed   bool
	CreatedAt   time.Time
}
