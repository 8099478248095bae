package app

import (
	"fmt"
	"net/http"

	"github.com/datametrics/matchdesk/external/wyscout"
	"github.com/datametrics/matchdesk/internal/config"
	"github.com/datametrics/matchdesk/internal/infrastructure/directory"
	"github.com/datametrics/matchdesk/internal/infrastructure/repository/memory"
	"github.com/datametrics/matchdesk/internal/interfaces/httpapi"
	"github.com/datametrics/matchdesk/internal/platform/cache"
	"github.com/datametrics/matchdesk/internal/platform/logging"
	"github.com/datametrics/matchdesk/internal/platform/resilience"
	"github.com/datametrics/matchdesk/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	var providerCache *cache.Store
	if cfg.CacheEnabled {
		providerCache = cache.NewStore(cfg.CacheTTL)
	}

	provider := wyscout.NewClient(wyscout.ClientConfig{
		BaseURLV2:  cfg.WyscoutBaseURLV2,
		BaseURLV3:  cfg.WyscoutBaseURLV3,
		Username:   cfg.WyscoutUsername,
		Password:   cfg.WyscoutPassword,
		Timeout:    cfg.WyscoutTimeout,
		MaxRetries: cfg.WyscoutMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.WyscoutCircuitEnabled,
			FailureThreshold: cfg.WyscoutCircuitFailureCount,
			OpenTimeout:      cfg.WyscoutCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.WyscoutCircuitHalfOpenMax,
		},
		Cache: providerCache,
	})

	staffDirectory := directory.NewClient(directory.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.DirectoryTimeout},
		BaseURL:        cfg.DirectoryBaseURL,
		IntrospectPath: cfg.DirectoryIntrospectPath,
		UsersPath:      cfg.DirectoryUsersPath,
		PrincipalTTL:   cfg.DirectoryPrincipalTTL,
		UsersTTL:       cfg.DirectoryUsersTTL,
		Logger:         logger,
	})

	sessions := memory.NewSessionRepository()

	enrichmentSvc := usecase.NewEnrichmentService(provider, logger)
	searchSvc := usecase.NewSearchService(provider, logger)
	fixtureSvc := usecase.NewFixtureService(provider, enrichmentSvc, sessions, logger)
	assignmentSvc := usecase.NewAssignmentService(sessions, staffDirectory, logger)
	calendarSvc := usecase.NewCalendarService(sessions)
	ganttSvc := usecase.NewGanttService(sessions, logger)
	exportSvc := usecase.NewExportService(sessions, staffDirectory)

	handler := httpapi.NewHandler(
		searchSvc,
		fixtureSvc,
		assignmentSvc,
		calendarSvc,
		ganttSvc,
		exportSvc,
		cfg.ExportFilenamePrefix,
		logger,
	)
	router := httpapi.NewRouter(handler, staffDirectory, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
