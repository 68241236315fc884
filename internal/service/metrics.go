package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"phoneapi/internal/repository"
)

const catalogScrapeTimeout = 2 * time.Second

// RegisterCatalogMetrics exposes the number of stored phones as the phones_total gauge.
func RegisterCatalogMetrics(reg prometheus.Registerer, repo repository.PhoneRepository, logger *log.Logger) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "phones_total",
			Help: "Number of phones currently stored.",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), catalogScrapeTimeout)
			defer cancel()
			phones, err := repo.FindAll(ctx)
			if err != nil {
				if logger != nil {
					logger.Warn("catalog_metrics_query_failed", "err", err)
				}
				return 0
			}
			return float64(len(phones))
		},
	))
}
