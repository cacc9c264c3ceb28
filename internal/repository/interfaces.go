// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/userauth/internal/model"
)

// UserRepository はユーザーデータ（認証情報）の永続化インターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレスの完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDを含むUserを返す。
	// メールアドレスが登録済みの場合はmodel.ErrDuplicateEmailを返す。
	// 重複判定はストレージの一意制約で行い、事前チェックには依存しない。
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
}
