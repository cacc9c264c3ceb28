// Package model はドメインモデルを定義する。
package model

import "time"

// User は認証対象のユーザーを表す。
// Emailは大文字小文字を区別した完全一致で扱い、正規化は行わない。
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser はクライアントに返却してよいユーザー情報。
// パスワードハッシュを含まない。
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Public はUserからPublicUserを生成する。
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Email: u.Email}
}
