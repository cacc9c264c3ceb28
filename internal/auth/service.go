// Package auth はパスワード認証フロー（ユーザー登録、ログイン、トークン検証）を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/userauth/internal/model"
	"github.com/hitoshi/userauth/internal/repository"
)

// 認証処理の種別。メトリクスのラベルに使う。
const (
	OpRegister    = "register"
	OpLogin       = "login"
	OpCurrentUser = "current_user"
)

// 認証処理の結果。メトリクスのラベルに使う。
const (
	OutcomeSuccess            = "success"
	OutcomeMissingFields      = "missing_fields"
	OutcomeDuplicateEmail     = "duplicate_email"
	OutcomePasswordTooLong    = "password_too_long"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeUnauthenticated    = "unauthenticated"
	OutcomeInvalidToken       = "invalid_token"
	OutcomeExpiredToken       = "expired_token"
	OutcomeUserNotFound       = "user_not_found"
	OutcomeError              = "error"
)

// Recorder は認証処理の結果を記録するインターフェース。
// metrics.Collectorが実装する。
type Recorder interface {
	RecordAuthOutcome(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthOutcome(string, string) {}

// timingEqualizerPassword は未登録メールアドレスでのログイン時に照合するダミーパスワード。
const timingEqualizerPassword = "timing-equalizer-not-a-real-password"

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users    repository.UserRepository
	hasher   Hasher
	tokens   TokenManager
	recorder Recorder

	dummyOnce sync.Once
	dummyHash string
}

// NewService はServiceを生成する。recorderがnilの場合は記録しない。
func NewService(
	users repository.UserRepository,
	hasher Hasher,
	tokens TokenManager,
	recorder Recorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorder,
	}
}

// Register はユーザーを登録する。トークンは発行しない。
// 重複判定はリポジトリ（ストレージの一意制約）に委ね、事前検索は行わない。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		s.recorder.RecordAuthOutcome(OpRegister, OutcomeMissingFields)
		return nil, model.NewMissingFieldsError()
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, model.ErrPasswordTooLong) {
		s.recorder.RecordAuthOutcome(OpRegister, OutcomePasswordTooLong)
		return nil, model.NewPasswordTooLongError()
	}
	if err != nil {
		s.recorder.RecordAuthOutcome(OpRegister, OutcomeError)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, hash)
	if errors.Is(err, model.ErrDuplicateEmail) {
		s.recorder.RecordAuthOutcome(OpRegister, OutcomeDuplicateEmail)
		return nil, model.NewDuplicateEmailError()
	}
	if err != nil {
		s.recorder.RecordAuthOutcome(OpRegister, OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.RecordAuthOutcome(OpRegister, OutcomeSuccess)
	slog.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login は認証情報を検証し、アクセストークンを返す。
// メールアドレス未登録とパスワード不一致は同一のエラーを返す。
// 未登録の場合もダミーハッシュと照合し、応答時間から登録有無を推測されないようにする。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		s.recorder.RecordAuthOutcome(OpLogin, OutcomeMissingFields)
		return "", model.NewMissingFieldsError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.recorder.RecordAuthOutcome(OpLogin, OutcomeError)
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		s.hasher.Verify(password, s.timingEqualizerHash())
		s.recorder.RecordAuthOutcome(OpLogin, OutcomeInvalidCredentials)
		return "", model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recorder.RecordAuthOutcome(OpLogin, OutcomeInvalidCredentials)
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.recorder.RecordAuthOutcome(OpLogin, OutcomeError)
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.recorder.RecordAuthOutcome(OpLogin, OutcomeSuccess)
	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return token, nil
}

// CurrentUser はトークンから現在のユーザーを取得する。
// 返却値にパスワードハッシュは含まれない。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.PublicUser, error) {
	if token == "" {
		s.recorder.RecordAuthOutcome(OpCurrentUser, OutcomeUnauthenticated)
		return nil, model.NewUnauthenticatedError()
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		outcome := OutcomeInvalidToken
		if errors.Is(err, ErrTokenExpired) {
			outcome = OutcomeExpiredToken
		}
		s.recorder.RecordAuthOutcome(OpCurrentUser, outcome)
		slog.Debug("token rejected", slog.String("reason", outcome))
		return nil, model.NewInvalidOrExpiredTokenError()
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		s.recorder.RecordAuthOutcome(OpCurrentUser, OutcomeError)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recorder.RecordAuthOutcome(OpCurrentUser, OutcomeUserNotFound)
		return nil, model.NewUserNotFoundError()
	}

	s.recorder.RecordAuthOutcome(OpCurrentUser, OutcomeSuccess)
	return user.Public(), nil
}

// timingEqualizerHash は未登録ユーザー照合用のハッシュを初回呼び出し時に生成する。
func (s *Service) timingEqualizerHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingEqualizerPassword)
		if err != nil {
			slog.Error("failed to prepare timing equalizer hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
