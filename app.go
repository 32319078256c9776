package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/dao"
	"collab-backend/pkg/auth"
	"collab-backend/pkg/gpt"
	"collab-backend/pkg/logger"
	"collab-backend/pkg/metrics"
	"collab-backend/pkg/social"
	"collab-backend/usecase"
)

// app holds the wired dependencies shared by all commands.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *sql.DB
	metrics *metrics.Metrics
	jwt     *auth.JWTService

	users     *usecase.UserUsecase
	profiles  *usecase.ProfileUsecase
	inquiries *usecase.InquiryUsecase
	campaigns *usecase.CampaignUsecase
	idle      *usecase.IdleUsecase
	social    *social.Service
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	// 1. DB connection
	conn, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.Database.MaxOpenConns)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("connected to database", zap.String("name", cfg.Database.Name))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 2. Dependency injection
	userRepo := dao.NewUserRepository(conn)
	influencerRepo := dao.NewInfluencerRepository(conn)
	businessRepo := dao.NewBusinessRepository(conn)
	socialRepo := dao.NewSocialAccountRepository(conn)
	inquiryRepo := dao.NewInquiryRepository(conn)
	messageRepo := dao.NewMessageRepository(conn)
	campaignRepo := dao.NewCampaignRepository(conn)

	llm := gpt.NewClient(cfg.OpenAI, m, log)
	jwt := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT secret not set, authenticated routes will reject every request")
	}

	inquiries := usecase.NewInquiryUsecase(userRepo, influencerRepo, businessRepo, inquiryRepo, messageRepo, llm, cfg.Agent, m, log)
	a := &app{
		cfg:     cfg,
		log:     log,
		db:      conn,
		metrics: m,
		jwt:     jwt,
		users: usecase.NewUserUsecase(userRepo, influencerRepo, businessRepo, jwt,
			auth.Providers(cfg.Auth.Providers), auth.NewStateStore(0, cfg.Auth.StateTTL), log),
		profiles:  usecase.NewProfileUsecase(userRepo, influencerRepo, businessRepo, cfg.Agent, log),
		inquiries: inquiries,
		campaigns: usecase.NewCampaignUsecase(userRepo, influencerRepo, businessRepo, campaignRepo, inquiries, llm, cfg.Matching, log),
		idle:      usecase.NewIdleUsecase(inquiryRepo, cfg.Idle.Threshold, m, log),
		social: social.NewService(social.Platforms(cfg.Social), socialRepo, influencerRepo,
			auth.NewStateStore(0, cfg.Auth.StateTTL), cfg.Social.CacheSize, cfg.Social.CacheTTL, m, log.Named("social")),
	}
	return a, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
	_ = a.log.Sync()
}
