package server

import (
	"github.com/aleksishere/wsb-GymManager/internal/auth"
	"github.com/aleksishere/wsb-GymManager/internal/class"
	"github.com/aleksishere/wsb-GymManager/internal/config"
	"github.com/aleksishere/wsb-GymManager/internal/email"
	"github.com/aleksishere/wsb-GymManager/internal/membership"
	"github.com/aleksishere/wsb-GymManager/internal/stats"
	"github.com/aleksishere/wsb-GymManager/internal/user"
	"github.com/aleksishere/wsb-GymManager/internal/visit"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	visitRepo := visit.NewRepository(db)
	classRepo := class.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	userHandler := user.NewHandler(user.NewService(userRepo, cfg.JWTSecret))
	membershipHandler := membership.NewHandler(membership.NewService(membershipRepo), userRepo, emailService)
	visitHandler := visit.NewHandler(visit.NewService(visitRepo, membershipRepo, userRepo))
	classHandler := class.NewHandler(class.NewService(classRepo, membershipRepo), userRepo, emailService)
	statsHandler := stats.NewHandler(statsRepo)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/memberships", membershipHandler.ListMy)
		protected.GET("/memberships/types", membershipHandler.ListTypes)
		protected.POST("/memberships/buy/:typeID", membershipHandler.Purchase)
		protected.GET("/visits", visitHandler.ListMy)
		protected.GET("/classes", classHandler.Schedule)
		protected.POST("/classes/:classID/signup", classHandler.Signup)
		protected.DELETE("/classes/:classID/signup", classHandler.Cancel)
	}

	staff := router.Group("/reception")
	staff.Use(authMiddleware, auth.RequireStaff())
	{
		staff.GET("", visitHandler.Panel)
		staff.POST("/toggle/:userID", visitHandler.Toggle)
		staff.POST("/sweep", visitHandler.Sweep)
		staff.POST("/memberships/grant", membershipHandler.Grant)
	}

	staffClasses := router.Group("/classes")
	staffClasses.Use(authMiddleware, auth.RequireStaff())
	{
		staffClasses.POST("", classHandler.Create)
		staffClasses.DELETE("/:classID", classHandler.Delete)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/membership-types", membershipHandler.CreateType)
		admin.GET("/dashboard", statsHandler.Dashboard)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	addr := ":" + port
	return s.router.Run(addr)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
