package siigo

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/metrics"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/redis"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/siigo"
)

// Status probes are cached briefly so a dashboard polling the endpoint does
// not burn through the SIIGO rate limit.
const statusCacheTTL = 30 * time.Second

const recentInvoicesPageSize = 10

// customerAPI is the slice of the SIIGO client the consulta service uses.
type customerAPI interface {
	GetCustomerByNIT(ctx context.Context, nit string) (*siigo.Customer, error)
	SearchCustomers(ctx context.Context, term string) ([]siigo.Customer, error)
	GetCustomerInvoices(ctx context.Context, customerID string, pageSize int) ([]siigo.Invoice, error)
	TestConnection(ctx context.Context) siigo.ConnectionStatus
}

// statusCache is the slice of the redis client used for status caching.
type statusCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// CustomerInfo bundles a SIIGO customer with its receivables summary.
type CustomerInfo struct {
	Customer        *siigo.Customer `json:"customer"`
	RecentInvoices  []siigo.Invoice `json:"recentInvoices"`
	Receivables     []siigo.Invoice `json:"receivables"`
	TotalReceivable decimal.Decimal `json:"totalReceivable"`
}

// ConsultaServiceParams groups dependencies for the customer lookup service.
type ConsultaServiceParams struct {
	API     customerAPI
	Cache   statusCache
	Metrics *metrics.SiigoMetrics
	Logger  *logger.Logger
}

// ConsultaService answers customer and invoice lookups for the wallet desk.
type ConsultaService struct {
	api     customerAPI
	cache   statusCache
	metrics *metrics.SiigoMetrics
	logger  *logger.Logger
}

// NewConsultaService builds the lookup service. Cache and metrics are
// optional.
func NewConsultaService(params ConsultaServiceParams) (*ConsultaService, error) {
	if params.API == nil {
		return nil, stderrors.New("siigo client is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	return &ConsultaService{
		api:     params.API,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

func (s *ConsultaService) observe(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.Observe(operation, outcome, time.Since(start))
}

// CustomerByNIT resolves a customer and summarizes their open balance from
// the most recent invoices.
func (s *ConsultaService) CustomerByNIT(ctx context.Context, nit string) (*CustomerInfo, error) {
	start := time.Now()
	customer, err := s.api.GetCustomerByNIT(ctx, nit)
	s.observe("customer_by_nit", start, err)
	if err != nil {
		return nil, err
	}

	invoices, err := s.api.GetCustomerInvoices(ctx, customer.ID, recentInvoicesPageSize)
	if err != nil {
		// The customer lookup already succeeded; a failed invoice fetch
		// degrades to an empty statement instead of hiding the customer.
		s.logger.Error(ctx, "fetching customer invoices", err)
		invoices = nil
	}

	info := &CustomerInfo{
		Customer:        customer,
		RecentInvoices:  invoices,
		TotalReceivable: decimal.Zero,
	}
	for _, inv := range invoices {
		if inv.Balance.IsPositive() {
			info.Receivables = append(info.Receivables, inv)
			info.TotalReceivable = info.TotalReceivable.Add(inv.Balance)
		}
	}
	return info, nil
}

// Search finds customers by name or identification fragment.
func (s *ConsultaService) Search(ctx context.Context, term string) ([]siigo.Customer, error) {
	start := time.Now()
	results, err := s.api.SearchCustomers(ctx, term)
	s.observe("search_customers", start, err)
	return results, err
}

// Status reports SIIGO connectivity, serving a cached probe when fresh.
func (s *ConsultaService) Status(ctx context.Context) siigo.ConnectionStatus {
	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.CacheKey("siigo", "status")
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var status siigo.ConnectionStatus
			if jsonErr := json.Unmarshal([]byte(cached), &status); jsonErr == nil {
				return status
			}
		} else if !redis.IsNil(err) {
			s.logger.Error(ctx, "reading cached siigo status", err)
		}
	}

	start := time.Now()
	status := s.api.TestConnection(ctx)
	s.observe("test_connection", start, nil)

	if s.cache != nil {
		payload, err := json.Marshal(status)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, statusCacheTTL); err != nil {
				s.logger.Error(ctx, "caching siigo status", err)
			}
		}
	}
	return status
}
