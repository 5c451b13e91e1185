package authsvc

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "content_studio/internal/api/auth/models"
	"content_studio/internal/common"
)

// Loại token
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const tokenIssuer = "content_studio"

// Claims payload JWT
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
}

// TokenPair cặp token trả về khi đăng nhập / refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// TokenManager ký và xác minh JWT (HS256)
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager tạo TokenManager
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue tạo access + refresh token cho principal
func (m *TokenManager) Issue(p authmodels.Principal) (*TokenPair, error) {
	access, err := m.sign(p, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(p, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *TokenManager) sign(p authmodels.Principal, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.AccountID.Hex(),
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		CompanyID: p.CompanyID.Hex(),
		Role:      p.Role,
		Email:     p.Email,
		TokenType: tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", common.NewInternalError(err)
	}
	return signed, nil
}

// Verify xác minh token và kiểm tra đúng loại; trả về principal
func (m *TokenManager) Verify(tokenString, expectedType string) (authmodels.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authmodels.Principal{}, common.ErrTokenExpired
		}
		return authmodels.Principal{}, common.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != expectedType {
		return authmodels.Principal{}, common.ErrTokenInvalid
	}
	accountID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return authmodels.Principal{}, common.ErrTokenInvalid
	}
	companyID, err := primitive.ObjectIDFromHex(claims.CompanyID)
	if err != nil {
		return authmodels.Principal{}, common.ErrTokenInvalid
	}
	return authmodels.Principal{AccountID: accountID, CompanyID: companyID, Role: claims.Role, Email: claims.Email}, nil
}
