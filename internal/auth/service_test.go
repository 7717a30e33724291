package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/tareas/internal/model"
)

// --- モック定義 ---

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	createFn     func(ctx context.Context, user *model.User) error
	findByIDFn   func(ctx context.Context, id int64) (*model.User, error)
	findByNameFn func(ctx context.Context, name string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, nil
}

// mockFailureRecorder は認証失敗理由を記録するモック。
type mockFailureRecorder struct {
	reasons []string
}

func (m *mockFailureRecorder) RecordAuthFailure(reason string) {
	m.reasons = append(m.reasons, reason)
}

func newTestService(repo *mockUserRepo, rec FailureRecorder) *Service {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	return NewService(repo, tokens, bcrypt.MinCost, rec)
}

// --- Register ---

func TestService_Register_Success(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 7
			stored = user
			return nil
		},
	}
	svc := newTestService(repo, nil)

	user, err := svc.Register(context.Background(), "  ana  ", "secreto1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.ID != 7 {
		t.Errorf("ID = %d, want 7", user.ID)
	}
	if user.Name != "ana" {
		t.Errorf("Name = %q, want trimmed %q", user.Name, "ana")
	}
	if stored.PasswordHash == "secreto1" {
		t.Error("plaintext password must never be stored")
	}
	if !VerifyPassword(stored.PasswordHash, "secreto1") {
		t.Error("stored hash should verify the original password")
	}
}

func TestService_Register_NameTaken(t *testing.T) {
	repo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: 1, Name: "ana"}, nil
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "ANA", "secreto1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNameTaken {
		t.Errorf("expected NAME_TAKEN, got %v", err)
	}
}

func TestService_Register_RepoConflictPropagates(t *testing.T) {
	// 事前チェック通過後に一意制約違反が起きたケース
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return model.NewNameTakenError()
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "ana", "secreto1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNameTaken {
		t.Errorf("expected NAME_TAKEN, got %v", err)
	}
}

// --- Login ---

func TestService_Login_Success(t *testing.T) {
	hash, _ := HashPassword("secreto1", bcrypt.MinCost)
	repo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: 3, Name: "ana", PasswordHash: hash}, nil
		},
	}
	svc := newTestService(repo, nil)

	token, user, err := svc.Login(context.Background(), "ANA", "secreto1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != 3 {
		t.Errorf("user.ID = %d, want 3", user.ID)
	}

	userID, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if userID != 3 {
		t.Errorf("token userID = %d, want 3", userID)
	}
}

func TestService_Login_UnknownUserAndWrongPassword_SameError(t *testing.T) {
	hash, _ := HashPassword("secreto1", bcrypt.MinCost)

	cases := []struct {
		name string
		repo *mockUserRepo
	}{
		{
			name: "unknown user",
			repo: &mockUserRepo{},
		},
		{
			name: "wrong password",
			repo: &mockUserRepo{
				findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
					return &model.User{ID: 1, Name: "ana", PasswordHash: hash}, nil
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(tc.repo, nil)

			_, _, err := svc.Login(context.Background(), "ana", "incorrecta")

			// 失敗理由を区別しない一律のエラー
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
			}
		})
	}
}

// --- Authenticate ---

func TestService_Authenticate_Success(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Name: "ana"}, nil
		},
	}
	svc := newTestService(repo, nil)

	token, err := svc.tokens.Issue(5)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != 5 {
		t.Errorf("user.ID = %d, want 5", user.ID)
	}
}

func TestService_Authenticate_ExpiredToken(t *testing.T) {
	rec := &mockFailureRecorder{}
	repo := &mockUserRepo{}
	tokens := NewTokenService([]byte("test-secret"), -time.Minute)
	svc := NewService(repo, tokens, bcrypt.MinCost, rec)

	token, err := tokens.Issue(5)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), token)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonExpired {
		t.Errorf("recorded reasons = %v, want [%s]", rec.reasons, ReasonExpired)
	}
}

func TestService_Authenticate_GarbageToken(t *testing.T) {
	rec := &mockFailureRecorder{}
	svc := newTestService(&mockUserRepo{}, rec)

	_, err := svc.Authenticate(context.Background(), "garbage")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonInvalid {
		t.Errorf("recorded reasons = %v, want [%s]", rec.reasons, ReasonInvalid)
	}
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	rec := &mockFailureRecorder{}
	// findByIDFnはnilを返す = ユーザーがもう存在しない
	svc := newTestService(&mockUserRepo{}, rec)

	token, err := svc.tokens.Issue(5)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), token)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != ReasonUnknownUser {
		t.Errorf("recorded reasons = %v, want [%s]", rec.reasons, ReasonUnknownUser)
	}
}

func TestService_Authenticate_RepoError(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(repo, nil)

	token, err := svc.tokens.Issue(5)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), token)
	if err == nil {
		t.Fatal("expected error")
	}

	// インフラ障害はAPIErrorではなく内部エラーとして伝播する
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("expected non-APIError for repo failure, got %v", err)
	}
}
