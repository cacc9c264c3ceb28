package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/userauth/internal/model"
)

// BcryptCost はパスワードハッシュのコスト係数。
// 変更すると既存ハッシュとの比較は可能だが新規ハッシュの計算時間が変わる。
const BcryptCost = 10

// maxPasswordBytes はbcryptが扱える入力長の上限。
const maxPasswordBytes = 72

// Hasher はパスワードの一方向ハッシュと照合を行うインターフェース。
type Hasher interface {
	// Hash はソルト付きハッシュを生成する。出力にはアルゴリズム・コスト・ソルトが含まれる。
	Hash(plaintext string) (string, error)
	// Verify は平文とハッシュを照合する。不一致でもエラーにはならずfalseを返す。
	Verify(plaintext, hash string) bool
}

// BcryptHasher はbcryptによるHasher実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はコストBcryptCostのBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: BcryptCost}
}

// Hash はパスワードをbcryptでハッシュ化する。
// 72バイトを超えるパスワードはmodel.ErrPasswordTooLongを返す。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", model.ErrPasswordTooLong
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(b), nil
}

// Verify はパスワードとハッシュを照合する。
// ハッシュが壊れている場合もfalseを返す。
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

var _ Hasher = (*BcryptHasher)(nil)
