package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-32bytes-long!!!!")

func TestTokenService_IssueAndVerify_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestTokenService_Verify_NeverReturnsDifferentUser(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	tokenA, err := svc.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, err := svc.Verify(tokenA)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID == 2 {
		t.Error("token for user 1 must never verify as user 2")
	}
	if userID != 1 {
		t.Errorf("userID = %d, want 1", userID)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	// 負のmaxAgeで発行時点から期限切れのトークンを作る
	svc := NewTokenService(testSecret, -time.Minute)

	token, err := svc.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenService_Verify_ExpiredEvenWithValidSignature(t *testing.T) {
	issuer := NewTokenService(testSecret, -time.Second)
	verifier := NewTokenService(testSecret, time.Hour)

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// 署名は正しくても経過時間だけで拒否される
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenService_Verify_Tampered(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := svc.Verify(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-a-secret-a-secret-a-32b!!"), time.Hour)
	verifier := NewTokenService([]byte("secret-b-secret-b-secret-b-32b!!"), time.Hour)

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_Verify_Garbage(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_Verify_MissingUserID(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	// ユーザーIDを持たない署名済みトークンを直接作る
	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	token, err := raw.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenIncomplete) {
		t.Errorf("err = %v, want ErrTokenIncomplete", err)
	}
}

func TestTokenService_Verify_RejectsUnexpectedAlgorithm(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: 1,
	})
	token, err := raw.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
