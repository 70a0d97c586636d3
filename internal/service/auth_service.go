package service

import (
	"context"
	"errors"
	"time"

	"github.com/pashumitra/internal/cache"
	"github.com/pashumitra/internal/config"
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
// 管理端与代理端各用一套密钥, 互不通用。
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
	agentRepo repository.AgentRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository, agentRepo repository.AgentRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
		agentRepo: agentRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// AdminJWTClaims 管理端 JWT 声明
type AdminJWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AgentJWTClaims 代理端 JWT 声明
type AgentJWTClaims struct {
	AgentID      uint   `json:"agent_id"`
	AgentCode    string `json:"agent_code"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateAdminJWT 生成管理端 Token
func (s *AuthService) GenerateAdminJWT(admin *models.Admin) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)
	claims := AdminJWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		Role:         admin.Role,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAdminJWT 解析管理端 Token
func (s *AuthService) ParseAdminJWT(tokenString string) (*AdminJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &AdminJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AdminJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateAgentJWT 生成代理端 Token
func (s *AuthService) GenerateAgentJWT(agent *models.Agent) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.AgentJWT.ExpireHours) * time.Hour)
	claims := AgentJWTClaims{
		AgentID:      agent.ID,
		AgentCode:    agent.AgentCode,
		TokenVersion: agent.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.AgentJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAgentJWT 解析代理端 Token
func (s *AuthService) ParseAgentJWT(tokenString string) (*AgentJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &AgentJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.AgentJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AgentJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// AdminLogin 管理员登录
func (s *AuthService) AdminLogin(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateAdminJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))

	return admin, token, expiresAt, nil
}

// AgentLogin 代理人登录(手机号 + 密码)
// 待审核的代理人也允许登录, 以便补交 KYC 材料; 拉黑与已拒绝的不允许。
func (s *AuthService) AgentLogin(phone, password string) (*models.Agent, string, time.Time, error) {
	agent, err := s.agentRepo.GetByPhone(phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if agent == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(agent.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if agent.Status == constants.AgentStatusBlocked {
		return nil, "", time.Time{}, ErrAgentBlocked
	}
	if agent.Status == constants.AgentStatusRejected {
		return nil, "", time.Time{}, ErrAgentNotActive
	}

	token, expiresAt, err := s.GenerateAgentJWT(agent)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	agent.LastLoginAt = &now
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAgentAuthState(context.Background(), cache.BuildAgentAuthState(agent))

	return agent, token, expiresAt, nil
}

// ChangeAdminPassword 修改管理员密码
func (s *AuthService) ChangeAdminPassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrAdminNotFound
	}
	if err := s.VerifyPassword(admin.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hashedPassword
	admin.TokenVersion++
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	return nil
}

// ChangeAgentPassword 修改代理人密码
func (s *AuthService) ChangeAgentPassword(agentID uint, oldPassword, newPassword string) error {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return err
	}
	if agent == nil {
		return ErrAgentNotFound
	}
	if err := s.VerifyPassword(agent.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	agent.PasswordHash = hashedPassword
	agent.TokenVersion++
	if err := s.agentRepo.Update(agent); err != nil {
		return err
	}
	_ = cache.SetAgentAuthState(context.Background(), cache.BuildAgentAuthState(agent))
	return nil
}
