package server

import (
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/application"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/auth"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/config"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/document"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/job"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/session"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/stream"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Tracking *tracking.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	policy := session.PolicyFromMinutes(cfg.TrackingLeadMinutes, cfg.AutoCancelMinutes, cfg.WarningThresholdMinutes)
	hub := stream.NewHub(redisClient)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   hub,
		Tracking: tracking.NewService(db, hub, policy, cfg.GeofenceRadiusKm),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	doctorOnly := auth.RequireRole(auth.RoleDoctor)
	hospitalOnly := auth.RequireRole(auth.RoleHospital)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	job.RegisterRoutes(s.App.Group("/jobs"), job.NewService(s.DB, s.Cfg.GeofenceRadiusKm), jwtMiddleware, hospitalOnly)
	application.RegisterRoutes(s.App.Group("/applications"), application.NewService(s.DB), jwtMiddleware, doctorOnly, hospitalOnly)
	tracking.RegisterRoutes(s.App.Group("/sessions"), s.Tracking, jwtMiddleware, doctorOnly)
	document.RegisterRoutes(s.App.Group("/documents"), document.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
