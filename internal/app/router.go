package app

import (
	"quiz_backend/docs"
	"quiz_backend/internal/config"
	"quiz_backend/internal/middleware"
	"quiz_backend/internal/model"
	"quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/sign-up", c.auth.SignUp)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/tests", c.test.ListTests)
	rg.GET("/tests/:id/paper", c.test.GetTestPaper)
	rg.GET("/tests/:id/leaderboard", c.result.GetLeaderboard)
	rg.POST("/tests/submit", c.result.SubmitTest)
	rg.GET("/results/me", c.result.MyResults)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/tests", c.test.CreateTest)
		admin.GET("/tests/:id", c.test.GetTestDetail)
		admin.DELETE("/tests/:id", c.test.DeleteTest)
		admin.POST("/tests/:id/questions", c.test.AddQuestion)
		admin.DELETE("/questions/:id", c.test.DeleteQuestion)

		admin.GET("/results", c.result.ListResults)
		admin.POST("/results/export", c.result.ExportResults)
		admin.GET("/results/ws", c.result.ResultFeed)
	}
}
