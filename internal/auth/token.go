// Package auth はユーザー登録、パスワード認証、セッショントークンの発行・検証を提供する。
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗理由。HTTP上はいずれも401になるが、ログとメトリクスで区別する。
var (
	// ErrTokenInvalid は署名不正・改ざん・形式不正を表す。
	ErrTokenInvalid = errors.New("token signature invalid or malformed")
	// ErrTokenExpired は発行からの経過時間が最大有効期間を超えたことを表す。
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenIncomplete は署名は有効だがユーザー識別子を欠くことを表す。
	ErrTokenIncomplete = errors.New("token payload missing user id")
)

// tokenClaims はセッショントークンのペイロード。
// ユーザー識別子と発行時刻を自己完結的に持ち、サーバー側の状態を必要としない。
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid,omitempty"`
}

// TokenService はHMAC署名付きセッショントークンを発行・検証する。
// トークンはステートレスで、発行後は有効期限まで取り消せない。
type TokenService struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenService はTokenServiceを生成する。
// secretはプロセス全体で共有する署名鍵、maxAgeは発行からの最大有効期間。
func NewTokenService(secret []byte, maxAge time.Duration) *TokenService {
	return &TokenService{
		secret: secret,
		maxAge: maxAge,
	}
}

// Issue は指定ユーザーのセッショントークンを発行する。
// 発行時刻と有効期限（発行時刻 + maxAge）をペイロードに埋め込む。
func (s *TokenService) Issue(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
		UserID: userID,
	})

	return token.SignedString(s.secret)
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返す。
// 失敗はErrTokenExpired、ErrTokenInvalid、ErrTokenIncompleteのいずれかを返す。
func (s *TokenService) Verify(tokenString string) (int64, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}
	if claims.UserID == 0 {
		return 0, ErrTokenIncomplete
	}

	return claims.UserID, nil
}
