package service

import (
	"context"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/config"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options 业务参数
type Options struct {
	OrgCode               string
	CompanyName           string
	CompanyAddress        string
	SupplierName          string
	CartonsPerBatch       int
	PricePerBatch         decimal.Decimal
	SellingPricePerCarton decimal.Decimal
	InvoiceDueDays        int
	Location              *time.Location
	Now                   func() time.Time

	JWTSecret   string
	JWTIssuer   string
	TokenTTL    time.Duration
	AllowSignup bool
}

// OptionsFromConfig 由配置生成业务参数
func OptionsFromConfig(cfg *config.Config) Options {
	l := cfg.Ledger
	return Options{
		OrgCode:               l.OrgCode,
		CompanyName:           l.CompanyName,
		CompanyAddress:        l.CompanyAddress,
		SupplierName:          l.SupplierName,
		CartonsPerBatch:       l.MinimumOrderCartons,
		PricePerBatch:         decimal.NewFromInt(l.PricePerBatch),
		SellingPricePerCarton: decimal.NewFromInt(l.SellingPricePerCarton()),
		InvoiceDueDays:        l.InvoiceDueDays,
		Location:              l.Location(),
		Now:                   time.Now,
		JWTSecret:             cfg.JWT.Secret,
		JWTIssuer:             cfg.JWT.Issuer,
		TokenTTL:              cfg.JWT.AccessTokenExpire,
		AllowSignup:           cfg.Auth.AllowSignup,
	}
}

// DefaultOptions KDMP Penfui Timur 默认参数
func DefaultOptions() Options {
	return Options{
		OrgCode:               "KDMP",
		CompanyName:           "KDMP Penfui Timur",
		CompanyAddress:        "Jln. Matani Raya, Penfui Timur, Kupang, NTT | Telp: 0853-3917-0645",
		SupplierName:          "PT MESA MITRA SOLUSINDO",
		CartonsPerBatch:       2130,
		PricePerBatch:         decimal.NewFromInt(191700000),
		SellingPricePerCarton: decimal.NewFromInt(2800 * 36),
		InvoiceDueDays:        30,
		Location:              time.UTC,
		Now:                   time.Now,
		JWTSecret:             "flowmilk-dev-secret",
		JWTIssuer:             "flowmilk",
		TokenTTL:              24 * time.Hour,
		AllowSignup:           true,
	}
}

// Locker 分布式锁，获取失败时由调用方决定是否继续
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// EventPublisher 变更事件推送
type EventPublisher interface {
	Publish(event string, payload interface{})
	PublishToUser(userID, event string, payload interface{})
}

// Cache JSON缓存
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ObjectStorage 文档归档
type ObjectStorage interface {
	Put(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// Deps 可选的外部依赖，未提供时使用空实现
type Deps struct {
	Locker  Locker
	Events  EventPublisher
	Cache   Cache
	Storage ObjectStorage
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = nopLocker{}
	}
	if d.Events == nil {
		d.Events = nopEvents{}
	}
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	return d
}

type nopLocker struct{}

func (nopLocker) Obtain(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

type nopEvents struct{}

func (nopEvents) Publish(string, interface{})               {}
func (nopEvents) PublishToUser(string, string, interface{}) {}

type nopCache struct{}

func (nopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (nopCache) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (nopCache) Delete(context.Context, ...string) error { return nil }

// Services 服务集合
type Services struct {
	Procurement  *ProcurementService
	Distribution *DistributionService
	Invoice      *InvoiceService
	Coordinator  *CoordinatorService
	Kitchen      *KitchenService
	Auth         *AuthService
	Dashboard    *DashboardService
	Report       *ReportService
	Document     *DocumentService
	State        *StateService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, opts Options, deps Deps, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &base{repos: repos, opts: opts, deps: deps.withDefaults(), logger: logger}

	report := NewReportService(b)
	return &Services{
		Procurement:  NewProcurementService(b),
		Distribution: NewDistributionService(b),
		Invoice:      NewInvoiceService(b),
		Coordinator:  NewCoordinatorService(b),
		Kitchen:      NewKitchenService(b),
		Auth:         NewAuthService(b),
		Dashboard:    NewDashboardService(b),
		Report:       report,
		Document:     NewDocumentService(b, report),
		State:        NewStateService(b),
	}
}

// lockTTL 账务锁超时
const lockTTL = 30 * time.Second

// base 各服务共享的依赖
type base struct {
	repos  *repository.Repositories
	opts   Options
	deps   Deps
	logger *zap.Logger
}

func (b *base) now() time.Time {
	return b.opts.Now().In(b.opts.Location)
}

// today 业务时区当日零点
func (b *base) today() time.Time {
	return startOfDay(b.now(), b.opts.Location)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// parseDate 解析 yyyy-mm-dd，空串返回零值
func (b *base) parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, b.opts.Location)
	if err != nil {
		return time.Time{}, ErrInvalidInput
	}
	return t, nil
}

// lock 尽力获取锁，Redis不可用时继续执行，由事务内行锁兜底
func (b *base) lock(ctx context.Context, key string) func() {
	release, err := b.deps.Locker.Obtain(ctx, key, lockTTL)
	if err != nil {
		b.logger.Warn("could not obtain ledger lock; proceeding with row locks only",
			zap.String("key", key), zap.Error(err))
		return func() {}
	}
	return release
}

// changed 写操作成功后：失效快照缓存并推送事件
func (b *base) changed(ctx context.Context, event string, payload interface{}) {
	if err := b.deps.Cache.Delete(ctx, stateCacheKey, dashboardCacheKey); err != nil {
		b.logger.Warn("failed to invalidate cache", zap.Error(err))
	}
	b.deps.Events.Publish(event, payload)
}
