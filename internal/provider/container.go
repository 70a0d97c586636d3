package provider

import (
	"github.com/pashumitra/internal/authz"
	"github.com/pashumitra/internal/cache"
	"github.com/pashumitra/internal/config"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/queue"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	AgentRepo        repository.AgentRepository
	PlanRepo         repository.PlanRepository
	PolicyRepo       repository.PolicyRepository
	RuleRepo         repository.CommissionRuleRepository
	CommissionRepo   repository.CommissionRepository
	WithdrawalRepo   repository.WithdrawalRepository
	ClaimRepo        repository.ClaimRepository
	AuditLogRepo     repository.AuditLogRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	CaptchaService        *service.CaptchaService
	AuditService          *service.AuditService
	NotificationService   *service.NotificationService
	AgentService          *service.AgentService
	PlanService           *service.PlanService
	PolicyService         *service.PolicyService
	CommissionService     *service.CommissionService
	CommissionRuleService *service.CommissionRuleService
	WalletService         *service.WalletService
	ClaimService          *service.ClaimService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.AgentRepo = repository.NewAgentRepository(db)
	c.PlanRepo = repository.NewPlanRepository(db)
	c.PolicyRepo = repository.NewPolicyRepository(db)
	c.RuleRepo = repository.NewCommissionRuleRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.ClaimRepo = repository.NewClaimRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.AgentRepo)
	c.AuditService = service.NewAuditService(c.AuditLogRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.AgentService = service.NewAgentService(c.AgentRepo, c.AuditService, c.NotificationService)
	c.PlanService = service.NewPlanService(c.PlanRepo, c.AuditService)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.RuleRepo, c.AgentRepo, c.AuditService, c.NotificationService)
	c.PolicyService = service.NewPolicyService(c.PolicyRepo, c.PlanRepo, c.AgentRepo, c.CommissionService, c.AuditService, c.NotificationService)
	c.CommissionRuleService = service.NewCommissionRuleService(c.RuleRepo, c.AuditService)
	c.WalletService = service.NewWalletService(
		c.CommissionRepo,
		c.WithdrawalRepo,
		c.AgentRepo,
		c.AuditService,
		c.NotificationService,
		models.NewMoneyFromInt(int64(c.Config.Withdrawal.MinAmount)),
	)
	c.ClaimService = service.NewClaimService(c.ClaimRepo, c.PolicyRepo, c.AuditService, c.NotificationService)
}
