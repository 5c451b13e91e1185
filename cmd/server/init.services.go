package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"content_studio/config"
	aisvc "content_studio/internal/api/ai/service"
	analyticssvc "content_studio/internal/api/analytics/service"
	authsvc "content_studio/internal/api/auth/service"
	contentsvc "content_studio/internal/api/content/service"
	designsvc "content_studio/internal/api/design/service"
	"content_studio/internal/cache"
	"content_studio/internal/delivery"
	"content_studio/internal/designtool"
	"content_studio/internal/llm"
	"content_studio/internal/metrics"
)

// Services các service đã nối dây, dùng chung cho router và worker
type Services struct {
	Metrics   *metrics.Metrics
	Cache     cache.Cache
	Auth      *authsvc.AuthService
	AI        *aisvc.Orchestrator
	Content   *contentsvc.ContentService
	Analytics *analyticssvc.AnalyticsService
	Design    *designsvc.DesignService
}

// Close giải phóng tài nguyên giữ kết nối
func (s *Services) Close() {
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			logrus.WithError(err).Warn("Đóng cache thất bại")
		}
	}
}

type stores struct {
	accounts  authsvc.AccountStore
	contents  contentsvc.ContentStore
	analytics analyticssvc.AnalyticsStore
}

// initStores chọn store theo STORE_DRIVER
func initStores(cfg *config.Configuration) stores {
	if cfg.StoreDriver == config.StoreMemory {
		return stores{
			accounts:  authsvc.NewMemoryAccountStore(),
			contents:  contentsvc.NewMemoryContentStore(),
			analytics: analyticssvc.NewMemoryAnalyticsStore(),
		}
	}

	accounts, err := authsvc.NewMongoAccountStore()
	if err != nil {
		logrus.Fatalf("Failed to create account store: %v", err)
	}
	contents, err := contentsvc.NewMongoContentStore()
	if err != nil {
		logrus.Fatalf("Failed to create content store: %v", err)
	}
	analytics, err := analyticssvc.NewMongoAnalyticsStore()
	if err != nil {
		logrus.Fatalf("Failed to create analytics store: %v", err)
	}
	return stores{accounts: accounts, contents: contents, analytics: analytics}
}

// initCache Redis khi có REDIS_ADDR, ngược lại cache trong bộ nhớ
func initCache(cfg *config.Configuration) cache.Cache {
	if cfg.Redis_Addr == "" {
		logrus.Info("REDIS_ADDR trống, dùng cache trong bộ nhớ")
		return cache.NewMemoryCache(time.Minute)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := cache.Dial(ctx, cfg.Redis_Addr, cfg.Redis_Password, cfg.Redis_DB, "content_studio:")
	if err != nil {
		logrus.WithError(err).Warn("Không kết nối được Redis, dùng cache trong bộ nhớ")
		return cache.NewMemoryCache(time.Minute)
	}
	logrus.Infof("Connected to Redis at %s", cfg.Redis_Addr)
	return c
}

// InitServices tạo toàn bộ service theo cấu hình
func InitServices(cfg *config.Configuration) *Services {
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New("content_studio")
	}

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		logrus.Fatalf("Invalid REPORT_TIMEZONE: %v", err)
	}

	st := initStores(cfg)
	c := initCache(cfg)

	tokens := authsvc.NewTokenManager(cfg.JwtSecret,
		time.Duration(cfg.JwtAccessTTL)*time.Second,
		time.Duration(cfg.JwtRefreshTTL)*time.Second)
	authService := authsvc.NewAuthService(st.accounts, tokens, delivery.NewMailer(cfg), cfg.FrontendURL)

	orchestrator := aisvc.NewOrchestrator(llm.NewClient(llm.Config{
		APIURL:  cfg.LLM_APIURL,
		APIKey:  cfg.LLM_APIKey,
		Model:   cfg.LLM_Model,
		Timeout: time.Duration(cfg.LLM_Timeout) * time.Second,
	}), aisvc.DefaultCatalog(), m)

	designService := designsvc.NewDesignService(designtool.NewClient(designtool.Config{
		APIURL:  cfg.Design_APIURL,
		Timeout: time.Duration(cfg.Design_Timeout) * time.Second,
	}), authService, c, time.Duration(cfg.CacheTTL)*time.Second, m)

	analyticsService := analyticssvc.NewAnalyticsService(st.analytics, st.contents, orchestrator, m, loc)

	contentService := contentsvc.NewContentService(contentsvc.Dependencies{
		Store:       st.contents,
		Generator:   orchestrator,
		Designer:    designService,
		Analytics:   analyticsService,
		Preferences: authService,
		Metrics:     m,
	})

	return &Services{
		Metrics:   m,
		Cache:     c,
		Auth:      authService,
		AI:        orchestrator,
		Content:   contentService,
		Analytics: analyticsService,
		Design:    designService,
	}
}
