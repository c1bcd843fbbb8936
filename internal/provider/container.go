package provider

import (
	"github.com/sgtmake/storefront-api/internal/cache"
	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/queue"
	"github.com/sgtmake/storefront-api/internal/repository"
	"github.com/sgtmake/storefront-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	GuestIdentityRepo repository.GuestIdentityRepository
	AddressRepo       repository.AddressRepository
	ProductRepo       repository.ProductRepository
	CartRepo          repository.CartRepository
	OrderRepo         repository.OrderRepository
	PaymentRecordRepo repository.PaymentRecordRepository

	// Services
	UserAuthService  *service.UserAuthService
	IdentityService  *service.IdentityService
	CartService      *service.CartService
	CartMergeService *service.CartMergeService
	ProductService   *service.ProductService
	AddressService   *service.AddressService
	OrderService     *service.OrderService
	PaymentService   *service.PaymentService
	EmailService     *service.EmailService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.GuestIdentityRepo = repository.NewGuestIdentityRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRecordRepo = repository.NewPaymentRecordRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo)
	c.IdentityService = service.NewIdentityService(c.GuestIdentityRepo, cfg.Guest.ExpireDays)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.CartMergeService = service.NewCartMergeService(c.CartRepo, c.GuestIdentityRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.OrderService = service.NewOrderService(cfg, c.OrderRepo, c.CartRepo, c.ProductRepo, c.AddressRepo)
	c.PaymentService = service.NewPaymentService(cfg, c.OrderRepo, c.CartRepo, c.ProductRepo, c.PaymentRecordRepo, c.QueueClient)
	c.EmailService = service.NewEmailService(&cfg.Email)
}
