// Package authsvc - service xác thực: tài khoản, token, API key, tích hợp công cụ thiết kế.
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	authdto "content_studio/internal/api/auth/dto"
	authmodels "content_studio/internal/api/auth/models"
	"content_studio/internal/common"
	"content_studio/internal/delivery"
	"content_studio/internal/delivery/channels"
	"content_studio/internal/logger"
	"content_studio/internal/utility"
)

const (
	apiKeyPrefix   = "cs_"
	resetTokenTTL  = time.Hour
	prefixVisibleN = 8
)

// AuthResult tài khoản kèm cặp token
type AuthResult struct {
	Account *authmodels.Account `json:"account"`
	Tokens  *TokenPair          `json:"tokens"`
}

// AuthService nghiệp vụ xác thực
type AuthService struct {
	store       AccountStore
	tokens      *TokenManager
	mailer      delivery.Mailer
	frontendURL string
	now         func() time.Time
}

// NewAuthService tạo AuthService
func NewAuthService(store AccountStore, tokens *TokenManager, mailer delivery.Mailer, frontendURL string) *AuthService {
	if mailer == nil {
		mailer = delivery.LogMailer{}
	}
	return &AuthService{store: store, tokens: tokens, mailer: mailer, frontendURL: frontendURL, now: time.Now}
}

// Tokens trả về TokenManager (middleware dùng để xác minh access token)
func (s *AuthService) Tokens() *TokenManager {
	return s.tokens
}

func (s *AuthService) nowMilli() int64 {
	return s.now().UnixMilli()
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", common.NewInternalError(err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// conflictOnDuplicate đổi lỗi trùng khóa thành ConflictError "email đã tồn tại"
func conflictOnDuplicate(err error, email string) error {
	if err == nil {
		return nil
	}
	if common.IsKind(err, common.KindConflict) {
		return common.NewConflictError("Email đã được sử dụng", map[string]string{"email": email})
	}
	return err
}

// Register tạo công ty mới: người đăng ký là admin, CompanyID = ID của chính họ
func (s *AuthService) Register(ctx context.Context, input *authdto.RegisterInput) (*AuthResult, error) {
	email := utility.NormalizeEmail(input.Email)
	if err := utility.ValidateEmail(email); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.nowMilli()
	id := primitive.NewObjectID()
	account := &authmodels.Account{
		ID:           id,
		Email:        email,
		PasswordHash: hashed,
		Name:         input.Name,
		Role:         authmodels.RoleAdmin,
		CompanyID:    id,
		CompanyName:  input.CompanyName,
		Position:     input.Position,
		Preferences:  authmodels.Preferences{Tone: "professional", Language: "en"},
		Notifications: authmodels.Notifications{
			Email:    true,
			Weekly:   true,
			Mentions: true,
		},
		IsActive:    true,
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, conflictOnDuplicate(err, email)
	}

	tokens, err := s.tokens.Issue(authmodels.PrincipalOf(account))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Tokens: tokens}, nil
}

// Login đăng nhập bằng email + mật khẩu
func (s *AuthService) Login(ctx context.Context, input *authdto.LoginInput) (*AuthResult, error) {
	email := utility.NormalizeEmail(input.Email)
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive || !checkPassword(account.PasswordHash, input.Password) {
		return nil, common.ErrInvalidCredentials
	}

	account.LastLoginAt = s.nowMilli()
	if err := s.store.Save(ctx, account); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.Issue(authmodels.PrincipalOf(account))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Tokens: tokens}, nil
}

// Refresh cấp cặp token mới từ refresh token; vai trò / công ty được đọc lại từ store
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	p, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	account, err := s.activeAccount(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.tokens.Issue(authmodels.PrincipalOf(account))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Tokens: tokens}, nil
}

// activeAccount nạp tài khoản; tài khoản không tồn tại hoặc bị khóa là lỗi xác thực
func (s *AuthService) activeAccount(ctx context.Context, id primitive.ObjectID) (*authmodels.Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, common.NewAuthenticationError("Tài khoản đã bị vô hiệu hóa")
	}
	return account, nil
}

// Authenticate xác minh access token và trả về principal của tài khoản còn hoạt động
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (authmodels.Principal, error) {
	p, err := s.tokens.Verify(accessToken, TokenTypeAccess)
	if err != nil {
		return authmodels.Principal{}, err
	}
	account, err := s.activeAccount(ctx, p.AccountID)
	if err != nil {
		return authmodels.Principal{}, err
	}
	return authmodels.PrincipalOf(account), nil
}

// Profile trả về hồ sơ của tài khoản
func (s *AuthService) Profile(ctx context.Context, accountID primitive.ObjectID) (*authmodels.Account, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, common.NewNotFoundError("tài khoản", accountID.Hex())
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile cập nhật hồ sơ. Mật khẩu chỉ được băm lại khi có mật khẩu mới và khác mật khẩu cũ.
func (s *AuthService) UpdateProfile(ctx context.Context, p authmodels.Principal, input *authdto.UpdateProfileInput) (*authmodels.Account, error) {
	account, err := s.Profile(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		account.Name = *input.Name
	}
	if input.Position != nil {
		account.Position = *input.Position
	}
	if input.CompanyName != nil {
		// Chỉ admin mới đổi được tên công ty
		if !p.IsAdmin() {
			return nil, common.ErrForbiddenRole
		}
		account.CompanyName = *input.CompanyName
	}
	if pref := input.Preferences; pref != nil {
		if pref.Tone != nil {
			account.Preferences.Tone = *pref.Tone
		}
		if pref.Language != nil {
			account.Preferences.Language = *pref.Language
		}
	}
	if n := input.Notifications; n != nil {
		if n.Email != nil {
			account.Notifications.Email = *n.Email
		}
		if n.Weekly != nil {
			account.Notifications.Weekly = *n.Weekly
		}
		if n.Mentions != nil {
			account.Notifications.Mentions = *n.Mentions
		}
	}

	if input.NewPassword != "" && !checkPassword(account.PasswordHash, input.NewPassword) {
		if !checkPassword(account.PasswordHash, input.CurrentPassword) {
			return nil, common.NewAuthenticationError("Mật khẩu hiện tại không chính xác")
		}
		hashed, err := hashPassword(input.NewPassword)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hashed
	}

	account.UpdatedAt = s.nowMilli()
	if err := s.store.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Preferences giọng văn / ngôn ngữ mặc định của tài khoản (dùng khi sinh nội dung)
func (s *AuthService) Preferences(ctx context.Context, accountID primitive.ObjectID) (authmodels.Preferences, error) {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return authmodels.Preferences{}, err
	}
	return account.Preferences, nil
}

// ====================================
// API KEY
// ====================================

// GenerateAPIKey tạo API key mới (thay key cũ). Key chỉ được trả về một lần, store chỉ giữ giá trị băm.
func (s *AuthService) GenerateAPIKey(ctx context.Context, accountID primitive.ObjectID) (*authdto.APIKeyOutput, error) {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	key, err := utility.RandomToken(apiKeyPrefix, 24)
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	prefix := key[:len(apiKeyPrefix)+prefixVisibleN]

	account.APIKeyHash = utility.HashToken(key)
	account.APIKeyPrefix = prefix
	account.UpdatedAt = s.nowMilli()
	if err := s.store.Save(ctx, account); err != nil {
		return nil, err
	}
	return &authdto.APIKeyOutput{APIKey: key, Prefix: prefix}, nil
}

// RevokeAPIKey thu hồi API key hiện tại
func (s *AuthService) RevokeAPIKey(ctx context.Context, accountID primitive.ObjectID) error {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return err
	}
	if account.APIKeyHash == "" {
		return nil
	}
	account.APIKeyHash = ""
	account.APIKeyPrefix = ""
	account.UpdatedAt = s.nowMilli()
	return s.store.Save(ctx, account)
}

// AuthenticateAPIKey xác thực bằng API key
func (s *AuthService) AuthenticateAPIKey(ctx context.Context, key string) (authmodels.Principal, error) {
	if key == "" {
		return authmodels.Principal{}, common.ErrTokenMissing
	}
	account, err := s.store.FindByAPIKeyHash(ctx, utility.HashToken(key))
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return authmodels.Principal{}, common.NewAuthenticationError("API key không hợp lệ")
		}
		return authmodels.Principal{}, err
	}
	if !account.IsActive {
		return authmodels.Principal{}, common.NewAuthenticationError("Tài khoản đã bị vô hiệu hóa")
	}
	return authmodels.PrincipalOf(account), nil
}

// ====================================
// DESIGN TOOL INTEGRATION
// ====================================

// ConnectIntegration lưu token công cụ thiết kế của tài khoản
func (s *AuthService) ConnectIntegration(ctx context.Context, accountID primitive.ObjectID, input *authdto.ConnectIntegrationInput) (*authmodels.Account, error) {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	now := s.nowMilli()
	account.Integration = &authmodels.DesignIntegration{
		AccessToken:  input.AccessToken,
		RefreshToken: input.RefreshToken,
		ExpiresAt:    input.ExpiresAt,
		ConnectedAt:  now,
	}
	account.UpdatedAt = now
	if err := s.store.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DisconnectIntegration xóa token công cụ thiết kế
func (s *AuthService) DisconnectIntegration(ctx context.Context, accountID primitive.ObjectID) error {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return err
	}
	account.Integration = nil
	account.UpdatedAt = s.nowMilli()
	return s.store.Save(ctx, account)
}

// IntegrationToken trả về access token công cụ thiết kế của tài khoản.
// Chưa kết nối hoặc token hết hạn đều là lỗi xác thực.
func (s *AuthService) IntegrationToken(ctx context.Context, accountID primitive.ObjectID) (string, error) {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return "", err
	}
	if !account.HasIntegration() {
		return "", common.ErrIntegrationUnset
	}
	if exp := account.Integration.ExpiresAt; exp > 0 && exp <= s.nowMilli() {
		return "", common.NewAuthenticationError("Token công cụ thiết kế đã hết hạn, vui lòng kết nối lại")
	}
	return account.Integration.AccessToken, nil
}

// MarkSynced ghi nhận thời điểm đồng bộ thiết kế gần nhất
func (s *AuthService) MarkSynced(ctx context.Context, accountID primitive.ObjectID, at int64) error {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Integration == nil {
		return common.ErrIntegrationUnset
	}
	account.Integration.LastSyncAt = at
	return s.store.Save(ctx, account)
}

// ====================================
// PASSWORD RESET
// ====================================

// ForgotPassword gửi email chứa link đặt lại mật khẩu.
// Email không tồn tại vẫn trả về nil để không lộ thông tin tài khoản.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = utility.NormalizeEmail(email)
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			logger.WithModule("auth").WithField("email", email).Debug("Yêu cầu đặt lại mật khẩu cho email không tồn tại")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	account.ResetTokenHash = utility.HashToken(token)
	account.ResetExpiresAt = s.now().Add(resetTokenTTL).UnixMilli()
	account.UpdatedAt = s.nowMilli()
	if err := s.store.Save(ctx, account); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	mail := &channels.RenderedTemplate{
		Subject: "Đặt lại mật khẩu Content Studio",
		Content: fmt.Sprintf("<p>Xin chào %s,</p><p>Link đặt lại mật khẩu có hiệu lực trong 1 giờ.</p>", account.Name),
		CTAs:    []channels.RenderedCTA{{Label: "Đặt lại mật khẩu", Action: link}},
	}
	if err := s.mailer.Send(ctx, account.Email, mail); err != nil {
		return common.NewInternalError(err)
	}
	return nil
}

// ResetPassword đặt mật khẩu mới bằng token trong email; token dùng một lần
func (s *AuthService) ResetPassword(ctx context.Context, input *authdto.ResetPasswordInput) error {
	account, err := s.store.FindByResetTokenHash(ctx, utility.HashToken(input.Token))
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return common.NewValidationError("Token đặt lại mật khẩu không hợp lệ", nil)
		}
		return err
	}
	if account.ResetExpiresAt <= s.nowMilli() {
		return common.NewValidationError("Token đặt lại mật khẩu đã hết hạn", nil)
	}

	hashed, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hashed
	account.ResetTokenHash = ""
	account.ResetExpiresAt = 0
	account.UpdatedAt = s.nowMilli()
	return s.store.Save(ctx, account)
}

// ====================================
// MEMBERS
// ====================================

// AddMember admin tạo tài khoản user / editor trong công ty của mình
func (s *AuthService) AddMember(ctx context.Context, p authmodels.Principal, input *authdto.AddMemberInput) (*authmodels.Account, error) {
	if !p.IsAdmin() {
		return nil, common.ErrForbiddenRole
	}
	if input.Role != authmodels.RoleUser && input.Role != authmodels.RoleEditor {
		return nil, common.NewValidationError("Vai trò thành viên không hợp lệ", map[string]string{"role": input.Role})
	}
	email := utility.NormalizeEmail(input.Email)
	if err := utility.ValidateEmail(email); err != nil {
		return nil, err
	}

	owner, err := s.Profile(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}
	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.nowMilli()
	member := &authmodels.Account{
		Email:         email,
		PasswordHash:  hashed,
		Name:          input.Name,
		Role:          input.Role,
		CompanyID:     p.CompanyID,
		CompanyName:   owner.CompanyName,
		Position:      input.Position,
		Preferences:   owner.Preferences,
		Notifications: authmodels.Notifications{Email: true, Mentions: true},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, member); err != nil {
		return nil, conflictOnDuplicate(err, email)
	}
	return member, nil
}

// ListMembers danh sách thành viên cùng công ty
func (s *AuthService) ListMembers(ctx context.Context, p authmodels.Principal) ([]authmodels.Account, error) {
	if p.CompanyID.IsZero() {
		return nil, common.NewAuthorizationError(common.MsgForbidden)
	}
	members, err := s.store.ListByCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// IsCredentialError lỗi đăng nhập sai (để handler ghi audit log đăng nhập thất bại)
func IsCredentialError(err error) bool {
	return errors.Is(err, common.ErrInvalidCredentials)
}
