package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"

	"ai-chat-be/pkg/events"
	pkgNats "ai-chat-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	RegisterSuperAdmin(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyOtp(ctx context.Context, req *dto.VerifyOtpRequest) (*dto.VerifyResetOtpResponse, error)
	ResendOtp(ctx context.Context, req *dto.ResendOtpRequest) error
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, ipAddress, userAgent string) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userId uuid.UUID, req *dto.ChangePasswordRequest) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	mailPublisher  IMailPublisherService
	eventPublisher *pkgNats.Publisher
	redisClient    *redis.Client
	authCfg        config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	mailPublisher IMailPublisherService,
	eventPublisher *pkgNats.Publisher,
	redisClient *redis.Client,
	authCfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		mailPublisher:  mailPublisher,
		eventPublisher: eventPublisher,
		redisClient:    redisClient,
		authCfg:        authCfg,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *authService) signAccessToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.authCfg.AccessTokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.authCfg.JwtSecret))
}

func (s *authService) issueOtp(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, otpType entity.OtpType) (string, error) {
	// Previous codes of the same kind stop working once a new one is issued
	if err := uow.UserRepository().InvalidateOtps(ctx, userId, string(otpType)); err != nil {
		return "", err
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	otp := &entity.Otp{
		Id:        uuid.New(),
		UserId:    userId,
		Code:      code,
		Type:      otpType,
		ExpiresAt: time.Now().Add(s.authCfg.OtpExpiry),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreateOtp(ctx, otp); err != nil {
		return "", err
	}
	return code, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return s.register(ctx, req, entity.UserRoleUser)
}

// RegisterSuperAdmin bootstraps the first super administrator. It is a
// one-shot endpoint, refused once any super admin exists.
func (s *authService) RegisterSuperAdmin(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.UserRepository().Count(ctx, specification.ByRole{Role: string(entity.UserRoleSuperAdmin)})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrForbidden
	}
	return s.register(ctx, req, entity.UserRoleSuperAdmin)
}

func (s *authService) register(ctx context.Context, req *dto.RegisterRequest, role entity.UserRole) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		Role:         role,
		Status:       entity.UserStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if req.MobileNumber != "" {
		user.MobileNumber = &req.MobileNumber
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	otpCode, err := s.issueOtp(ctx, uow, user.Id, entity.OtpTypeRegistration)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := s.mailPublisher.PublishOtp(ctx, user.Email, otpCode, string(entity.OtpTypeRegistration)); err != nil {
		// Registration already committed, the user can ask for a resend
		fmt.Printf("Error queueing registration email: %v\n", err)
	}

	if s.eventPublisher != nil {
		event := events.NewBaseEvent(events.TypeUserRegistered, map[string]interface{}{
			"user_id": user.Id,
			"email":   user.Email,
			"role":    string(user.Role),
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("Error publishing registration event: %v\n", err)
		}
	}

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) VerifyOtp(ctx context.Context, req *dto.VerifyOtpRequest) (*dto.VerifyResetOtpResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	otp, err := uow.UserRepository().FindOtp(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByOtpType{Type: req.OtpType},
		specification.UnusedOnly{},
	)
	if err != nil {
		return nil, err
	}
	if otp == nil || otp.Code != req.Code {
		return nil, ErrInvalidOtp
	}
	if time.Now().After(otp.ExpiresAt) {
		return nil, ErrOtpExpired
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().MarkOtpUsed(ctx, otp.Id); err != nil {
		return nil, err
	}

	switch entity.OtpType(req.OtpType) {
	case entity.OtpTypeRegistration:
		if err := uow.UserRepository().ActivateUser(ctx, user.Id); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		if err := s.mailPublisher.PublishWelcome(ctx, user.Email, user.FullName); err != nil {
			fmt.Printf("Error queueing welcome email: %v\n", err)
		}
		return nil, nil

	case entity.OtpTypePasswordReset:
		rawToken := uuid.New().String()
		resetToken := &entity.PasswordResetToken{
			Id:        uuid.New(),
			UserId:    user.Id,
			Token:     hashToken(rawToken),
			ExpiresAt: time.Now().Add(s.authCfg.ResetTokenExpiry),
			CreatedAt: time.Now(),
		}
		if err := uow.UserRepository().CreatePasswordResetToken(ctx, resetToken); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &dto.VerifyResetOtpResponse{
			ResetToken: rawToken,
			ExpiresAt:  resetToken.ExpiresAt,
		}, nil
	}

	return nil, ErrInvalidOtp
}

func (s *authService) ResendOtp(ctx context.Context, req *dto.ResendOtpRequest) error {
	if err := s.checkResendCooldown(ctx, req.Email, req.OtpType); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if req.OtpType == string(entity.OtpTypeRegistration) && user.EmailVerified {
		// Nothing to verify, treat as success
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	otpCode, err := s.issueOtp(ctx, uow, user.Id, entity.OtpType(req.OtpType))
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	return s.mailPublisher.PublishOtp(ctx, user.Email, otpCode, req.OtpType)
}

// checkResendCooldown rate limits OTP resends per email and type.
// Without Redis the check is skipped entirely.
func (s *authService) checkResendCooldown(ctx context.Context, email, otpType string) error {
	if s.redisClient == nil {
		return nil
	}
	key := fmt.Sprintf("otp_cooldown:%s:%s", otpType, email)
	ok, err := s.redisClient.SetNX(ctx, key, 1, s.authCfg.OtpResendCooldown).Result()
	if err != nil {
		// Redis being down should not block account recovery
		fmt.Printf("Warn: otp cooldown check failed: %v\n", err)
		return nil
	}
	if !ok {
		return ErrOtpCooldown
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status == entity.UserStatusPending || !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	signedToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	rawRefreshToken := uuid.New().String()
	refreshTokenEntity := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashToken(rawRefreshToken),
		ExpiresAt: time.Now().Add(s.authCfg.RefreshTokenExpiry),
		CreatedAt: time.Now(),
		IpAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	if s.eventPublisher != nil {
		event := events.NewBaseEvent(events.TypeUserLogin, map[string]interface{}{
			"user_id": user.Id,
			"email":   user.Email,
			"ip":      ipAddress,
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("Error publishing login event: %v\n", err)
		}
	}

	return &dto.LoginResponse{
		AccessToken:  signedToken,
		RefreshToken: rawRefreshToken,
		User:         userToProfile(user),
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, ipAddress, userAgent string) (*dto.RefreshTokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.UserRepository().FindRefreshToken(ctx, specification.ByTokenHash{Hash: hashToken(req.RefreshToken)})
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: stored.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}

	signedToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token is spent, hand out a new one
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().RevokeRefreshToken(ctx, stored.TokenHash); err != nil {
		return nil, err
	}

	rawRefreshToken := uuid.New().String()
	rotated := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashToken(rawRefreshToken),
		ExpiresAt: time.Now().Add(s.authCfg.RefreshTokenExpiry),
		CreatedAt: time.Now(),
		IpAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, rotated); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  signedToken,
		RefreshToken: rawRefreshToken,
	}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().RevokeRefreshToken(ctx, hashToken(refreshToken))
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if user == nil {
		// Do not leak which emails exist
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	otpCode, err := s.issueOtp(ctx, uow, user.Id, entity.OtpTypePasswordReset)
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	return s.mailPublisher.PublishOtp(ctx, user.Email, otpCode, string(entity.OtpTypePasswordReset))
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	token, err := uow.UserRepository().FindPasswordResetToken(ctx, specification.ByToken{Token: hashToken(req.ResetToken)})
	if err != nil {
		return err
	}
	if token == nil || token.Used || time.Now().After(token.ExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdatePassword(ctx, token.UserId, string(hash)); err != nil {
		return err
	}
	if err := uow.UserRepository().MarkTokenUsed(ctx, token.Id); err != nil {
		return err
	}
	// Force re-login everywhere after a password reset
	if err := uow.UserRepository().RevokeAllRefreshTokens(ctx, token.UserId); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *authService) ChangePassword(ctx context.Context, userId uuid.UUID, req *dto.ChangePasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil || user.PasswordHash == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return uow.UserRepository().UpdatePassword(ctx, userId, string(hash))
}

func userToProfile(user *entity.User) dto.UserProfileResponse {
	profile := dto.UserProfileResponse{
		Id:         user.Id,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       string(user.Role),
		Status:     string(user.Status),
		IsVerified: user.EmailVerified,
		CreatedAt:  user.CreatedAt,
	}
	if user.MobileNumber != nil {
		profile.MobileNumber = *user.MobileNumber
	}
	return profile
}
