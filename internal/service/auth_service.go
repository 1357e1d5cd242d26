package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/jwt"
)

// TokenBlacklist 已吊销 Token 存储，为 nil 时登出不吊销
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Register 公开自助注册，只创建学生
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	// EnsureAdmin 初始管理员不存在时创建
	EnsureAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.AuthConfig
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.AuthConfig,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	matricule := strings.TrimSpace(req.Matricule)

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Type:         model.ProfessorTypeNone,
	}
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := ensureEmailFree(ctx, tx, email, ""); err != nil {
			return err
		}
		if err := ensureMatriculeFree(ctx, tx, matricule, ""); err != nil {
			return err
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return tx.Student.Create(ctx, &model.Student{
			UserID:    user.UserID,
			Matricule: matricule,
			Filiere:   strings.TrimSpace(req.Filiere),
			StageType: model.StageType(req.StageType),
			Phone:     strings.TrimSpace(req.Phone),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student registered", zap.String("user_id", user.UserID))
	return s.issueToken(user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{User: toUserResponse(user)}
	switch user.Role {
	case model.RoleStudent:
		if student, err := s.repo.Student.GetByUserID(ctx, userID); err == nil {
			sr := toStudentResponse(student)
			resp.Student = &sr
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("load student profile failed", zap.String("user_id", userID), zap.Error(err))
		}
	case model.RoleProfessor:
		if professor, err := s.repo.Professor.GetByUserID(ctx, userID); err == nil {
			pr := toProfessorResponse(professor)
			resp.Professor = &pr
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("load professor profile failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if err := ensureEmailFree(ctx, tx, email, user.UserID); err != nil {
				return err
			}
			user.Email = email
		}
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}

		switch user.Role {
		case model.RoleStudent:
			if req.Phone == nil {
				return nil
			}
			student, err := tx.Student.GetByUserID(ctx, userID)
			if err != nil {
				return err
			}
			student.Phone = strings.TrimSpace(*req.Phone)
			return tx.Student.Update(ctx, student)
		case model.RoleProfessor:
			if req.Phone == nil && req.Specialite == nil {
				return nil
			}
			professor, err := tx.Professor.GetByUserID(ctx, userID)
			if err != nil {
				return err
			}
			if req.Phone != nil {
				professor.Phone = strings.TrimSpace(*req.Phone)
			}
			if req.Specialite != nil {
				professor.Specialite = strings.TrimSpace(*req.Specialite)
			}
			return tx.Professor.Update(ctx, professor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword.WithField("old_password", "incorrect")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update password failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

func (s *authService) EnsureAdmin(ctx context.Context) error {
	email := normalizeEmail(s.cfg.AdminEmail)
	if email == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := hashPassword(s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	name := s.cfg.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Type:         model.ProfessorTypeNone,
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// ── 辅助函数 ──

func (s *authService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *authService) issueToken(user *model.User) (*dto.TokenResponse, error) {
	token, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}
