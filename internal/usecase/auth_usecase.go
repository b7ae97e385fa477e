package usecase

import (
	"context"
	"errors"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid user id or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrInvalidRole        = errors.New("invalid role")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session *entity.Session, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Authenticate(ctx context.Context, accessToken string) (*entity.Session, error)
	GetCurrentUser(ctx context.Context, session *entity.Session) (*dto.UserResponse, error)
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, session *entity.Session, req *dto.ChangePasswordRequest) (*dto.TokenResponse, error)
}

type authUsecase struct {
	log        *logrus.Logger
	users      service.UserService
	tokenRepo  repository.TokenRepository
	jwtService *jwt.JWTService
	audit      service.AuditService
}

func NewAuthUsecase(
	log *logrus.Logger,
	users service.UserService,
	tokenRepo repository.TokenRepository,
	jwtService *jwt.JWTService,
	audit service.AuditService,
) AuthUsecase {
	return &authUsecase{
		log:        log,
		users:      users,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		audit:      audit,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.users.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParty) {
			return nil, ErrInvalidCredentials
		}
		u.log.Warnf("Failed to find user %s: %+v", req.UserID, err)
		return nil, err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = u.audit.LogCreate(ctx, user.ID, entity.AuditActionUserLogin, entity.KindUser, user.ID, map[string]interface{}{"role": user.Role})
	u.log.Infof("User logged in: id=%s, role=%s", user.ID, user.Role)
	return tokens, nil
}

// Logout revokes the session's access token and, when given, its refresh token
func (u *authUsecase) Logout(ctx context.Context, session *entity.Session, refreshToken string) error {
	if session == nil {
		return ErrInvalidToken
	}

	if err := u.tokenRepo.Delete(ctx, string(jwt.AccessToken), session.UserID, session.TokenID); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == session.UserID {
			if err := u.tokenRepo.Delete(ctx, string(jwt.RefreshToken), claims.UserID, claims.TokenID); err != nil {
				u.log.Warnf("Failed to delete refresh token: %+v", err)
				return err
			}
		}
	}

	_ = u.audit.LogDelete(ctx, session.UserID, entity.AuditActionUserLogout, entity.KindUser, session.UserID, map[string]interface{}{"token_id": session.TokenID})
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenRepo.Exists(ctx, string(jwt.RefreshToken), claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Delete old refresh token
	if err := u.tokenRepo.Delete(ctx, string(jwt.RefreshToken), claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	// Reload so the new tokens carry the current role and first-login flag
	user, err := u.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParty) {
			return nil, ErrUserNotFound
		}
		u.log.Warnf("Failed to find user %s: %+v", claims.UserID, err)
		return nil, err
	}

	return u.issueTokens(ctx, user)
}

// Authenticate turns a bearer access token into the session every role action needs
func (u *authUsecase) Authenticate(ctx context.Context, accessToken string) (*entity.Session, error) {
	claims, err := u.jwtService.ValidateToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.AccessToken {
		return nil, ErrInvalidToken
	}

	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenRepo.Exists(ctx, string(jwt.AccessToken), claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check access token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	return &entity.Session{
		UserID:             claims.UserID,
		Role:               role,
		TokenID:            claims.TokenID,
		MustChangePassword: claims.FirstLogin,
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, session *entity.Session) (*dto.UserResponse, error) {
	if session == nil {
		return nil, ErrInvalidToken
	}

	user, err := u.users.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParty) {
			return nil, ErrUserNotFound
		}
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// RegisterPatient creates the patient together with an empty medical record
func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	user, err := u.users.Create(ctx, req.ID, service.NewUserInput{
		ID:            req.ID,
		Name:          req.Name,
		Role:          entity.RolePatient,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Password:      req.Password,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		BloodType:     req.BloodType,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return nil, ErrUserAlreadyExists
		}
		u.log.Warnf("Failed to register patient: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// ChangePassword is the one action open to a session that must change its password.
// Every token of the user is revoked and a fresh pair is returned.
func (u *authUsecase) ChangePassword(ctx context.Context, session *entity.Session, req *dto.ChangePasswordRequest) (*dto.TokenResponse, error) {
	if session == nil {
		return nil, ErrInvalidToken
	}

	user, err := u.users.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParty) {
			return nil, ErrUserNotFound
		}
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if req.OldPassword == req.NewPassword {
		return nil, ErrSamePassword
	}

	user, err = u.users.ChangePassword(ctx, user.ID, req.NewPassword)
	if err != nil {
		u.log.Warnf("Failed to change password: %+v", err)
		return nil, err
	}

	if err := u.tokenRepo.DeleteAll(ctx, user.ID); err != nil {
		u.log.Warnf("Failed to revoke tokens of %s: %+v", user.ID, err)
		return nil, err
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	sub := jwt.Subject{UserID: user.ID, Role: string(user.Role), FirstLogin: user.FirstLogin}

	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenRepo.Store(ctx, string(jwt.AccessToken), user.ID, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.tokenRepo.Store(ctx, string(jwt.RefreshToken), user.ID, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:        accessToken,
		RefreshToken:       refreshToken,
		ExpiresIn:          int64(u.jwtService.GetAccessExpiry().Seconds()),
		MustChangePassword: user.FirstLogin,
	}, nil
}
