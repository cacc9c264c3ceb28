package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/userauth/internal/model"
)

// DefaultTokenTTL はアクセストークンの有効期間。
const DefaultTokenTTL = time.Hour

// MinSecretLength は署名鍵に要求する最小バイト数。
const MinSecretLength = 32

var (
	// ErrInvalidToken はトークンの検証失敗を表す。期限切れも含む。
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired は期限切れを表す。常にErrInvalidTokenと併せてラップされる。
	ErrTokenExpired = errors.New("token expired")
	// ErrWeakSecret は署名鍵が未設定または短すぎることを表す。
	ErrWeakSecret = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
)

// Claims はトークンに埋め込むユーザー識別情報。
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager はトークンの発行と検証を行うインターフェース。
type TokenManager interface {
	Issue(user *model.User) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTManager はHS256署名のJWTを発行・検証する。
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager はJWTManagerを生成する。
// 署名鍵がMinSecretLength未満の場合はErrWeakSecretを返す。デフォルト鍵へのフォールバックはしない。
// ttlが0以下の場合はDefaultTokenTTLを使う。
func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue はユーザーのIDとメールアドレスを含むトークンを発行する。
func (m *JWTManager) Issue(user *model.User) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify は署名・アルゴリズム・有効期限を検証し、Claimsを返す。
// 失敗時は常にErrInvalidTokenをラップしたエラーを返し、
// 期限切れの場合はErrTokenExpiredもラップする。
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

var _ TokenManager = (*JWTManager)(nil)
