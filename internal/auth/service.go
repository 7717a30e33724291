package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/tareas/internal/model"
	"github.com/hitoshi/tareas/internal/repository"
)

// トークン検証の失敗理由ラベル。ログとメトリクスで使用する。
const (
	ReasonInvalid     = "invalid"
	ReasonExpired     = "expired"
	ReasonIncomplete  = "incomplete"
	ReasonUnknownUser = "unknown_user"
)

// FailureRecorder は認証失敗を理由別に記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type FailureRecorder interface {
	RecordAuthFailure(reason string)
}

// Service はユーザー登録・ログイン・トークン認証のビジネスロジックを提供する。
type Service struct {
	users      repository.UserRepository
	tokens     *TokenService
	bcryptCost int
	metrics    FailureRecorder // nil可
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(users repository.UserRepository, tokens *TokenService, bcryptCost int, metrics FailureRecorder) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    metrics,
	}
}

// Register は新規ユーザーを登録する。
// 名前は前後の空白を除去して保存し、大文字小文字を区別しない重複はConflictになる。
// パスワードの長さ検証はバリデータ層で済んでいる前提で、ここではハッシュ化のみ行う。
func (s *Service) Register(ctx context.Context, name, password string) (*model.User, error) {
	name = strings.TrimSpace(name)

	existing, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user name: %w", err)
	}
	if existing != nil {
		return nil, model.NewNameTakenError()
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		PasswordHash: hash,
	}
	// 事前チェックと挿入の間に同名登録が割り込んだ場合もリポジトリが同じConflictを返す
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// Login は名前とパスワードを検証し、セッショントークンを発行する。
// 未知のユーザー名とパスワード不一致は区別せず同じエラーを返す。
func (s *Service) Login(ctx context.Context, name, password string) (string, *model.User, error) {
	user, err := s.users.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user name: %w", err)
	}
	if user == nil || !VerifyPassword(user.PasswordHash, password) {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
	)

	return token, user, nil
}

// Authenticate はセッショントークンを検証し、対応するユーザーを解決する。
// 失敗理由（invalid/expired/incomplete/unknown_user）はログとメトリクスに記録し、
// クライアントへは一律同じ401エラーを返す。
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.recordFailure(verifyFailureReason(err))
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	if user == nil {
		// トークンは有効だがユーザーがもう存在しない
		s.recordFailure(ReasonUnknownUser)
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

func (s *Service) recordFailure(reason string) {
	slog.Warn("token rejected",
		slog.String("reason", reason),
	)
	if s.metrics != nil {
		s.metrics.RecordAuthFailure(reason)
	}
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, ErrTokenIncomplete):
		return ReasonIncomplete
	default:
		return ReasonInvalid
	}
}
