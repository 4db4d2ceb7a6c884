package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenweb/api/internal/platform/config"
	"github.com/lumenweb/api/internal/platform/observability"
	"github.com/lumenweb/api/internal/repositories"
	"github.com/lumenweb/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete
// implementations are assembled via dependency injection in NewContainer.
type Services struct {
	Catalogs services.CatalogService
	Quotes   services.QuoteService
	Currency services.CurrencyService
	Projects services.ProjectService
	Invoices services.InvoiceService
	Tickets  services.TicketService
	Users    services.UserService
	Content  services.ContentService
	System   services.SystemService
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services

	publisher services.NotificationPublisher
	geoip     services.GeoIPResolver
	logger    *zap.Logger
	closers   []func(context.Context) error
}

// Option customises container construction.
type Option func(*Container)

// WithNotificationPublisher injects the async event publisher used by the
// project, invoice, and ticket services.
func WithNotificationPublisher(publisher services.NotificationPublisher) Option {
	return func(c *Container) {
		c.publisher = publisher
	}
}

// WithGeoIPResolver injects the IP-to-country resolver used for currency resolution.
func WithGeoIPResolver(resolver services.GeoIPResolver) Option {
	return func(c *Container) {
		c.geoip = resolver
	}
}

// WithLogger injects the process logger used for service-level log hooks.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithCloser registers an extra shutdown hook invoked on Close (topic stop,
// client close).
func WithCloser(closer func(context.Context) error) Option {
	return func(c *Container) {
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}

// NewContainer constructs the runtime dependencies. Production wiring provides
// real implementations, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	c := &Container{Config: cfg, Repositories: reg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	svc, err := c.buildServices()
	if err != nil {
		return nil, err
	}
	c.Services = svc
	return c, nil
}

// Close releases repository clients and any registered shutdown hooks.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var firstErr error
	for _, closer := range c.closers {
		if err := closer(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Repositories != nil {
		if err := c.Repositories.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Container) buildServices() (Services, error) {
	var svc Services
	reg := c.Repositories
	logFunc := observability.ServiceLogFunc(c.logger)

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalogs: reg.Catalogs(),
		CacheTTL: c.Config.Pricing.CatalogCacheTTL,
		Clock:    time.Now,
		Logger:   logFunc,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalogs = catalogSvc

	engine := services.NewQuoteEngine(services.QuoteEngineDeps{Logger: logFunc})

	quoteSvc, err := services.NewQuoteService(services.QuoteServiceDeps{
		Catalogs: catalogSvc,
		Engine:   engine,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build quote service: %w", err)
	}
	svc.Quotes = quoteSvc

	currencySvc, err := services.NewCurrencyService(services.CurrencyServiceDeps{
		GeoIP:           c.geoip,
		DefaultCurrency: c.Config.Pricing.DefaultCurrency,
		LookupTimeout:   c.Config.GeoIP.Timeout,
		Logger:          logFunc,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build currency service: %w", err)
	}
	svc.Currency = currencySvc

	projectSvc, err := services.NewProjectService(services.ProjectServiceDeps{
		Projects:  reg.Projects(),
		Invoices:  reg.Invoices(),
		Counters:  reg.Counters(),
		Catalogs:  catalogSvc,
		Engine:    engine,
		Publisher: c.publisher,
		Clock:     time.Now,
		Logger:    logFunc,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build project service: %w", err)
	}
	svc.Projects = projectSvc

	invoiceSvc, err := services.NewInvoiceService(services.InvoiceServiceDeps{
		Invoices:  reg.Invoices(),
		Publisher: c.publisher,
		Clock:     time.Now,
		Logger:    logFunc,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build invoice service: %w", err)
	}
	svc.Invoices = invoiceSvc

	ticketSvc, err := services.NewTicketService(services.TicketServiceDeps{
		Tickets:   reg.Tickets(),
		Publisher: c.publisher,
		Clock:     time.Now,
		Logger:    logFunc,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build ticket service: %w", err)
	}
	svc.Tickets = ticketSvc

	userSvc, err := services.NewUserService(services.UserServiceDeps{
		Users:  reg.Users(),
		Clock:  time.Now,
		Logger: logFunc,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build user service: %w", err)
	}
	svc.Users = userSvc

	contentSvc, err := services.NewContentService(services.ContentServiceDeps{
		Content: reg.Content(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build content service: %w", err)
	}
	svc.Content = contentSvc

	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
		Health: reg.Health(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}
	svc.System = systemSvc

	return svc, nil
}
