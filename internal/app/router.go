package app

import (
	"raid_checker_backend/docs"
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/middleware"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/pkg/monitoring"

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
		a.registerMemberRoutes(authGroup, c)
	}

	// 3. 管理员接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 副本目录
		public.GET("/raids", c.raid.ListRaids)
		public.GET("/raids/available", c.raid.ListAvailable)
		public.GET("/raids/:id", c.raid.GetRaid)

		// 角色查询
		public.GET("/characters/search", c.character.Search)
		public.GET("/characters/:id", c.character.GetCharacter)

		// 周清单查询
		public.GET("/completions/reset-info", c.completion.GetResetInfo)
		public.GET("/completions/character/:id", c.completion.GetChecklist)
		public.GET("/completions/character/:id/total-gold", c.completion.GetTotalGold)

		// 组队查询
		public.GET("/party/available/:raidId", c.party.GetAvailableCharacters)
		public.GET("/party/recommend/all", c.party.RecommendAll)
		public.GET("/party/recommend/:raidId", c.party.RecommendParties)
		public.GET("/party/completed", c.party.ListCompletedParties)
	}
}

func (a *App) registerMemberRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.GetProfile)

	characters := group.Group("/characters")
	{
		characters.POST("/import", c.character.ImportCharacter)
		characters.POST("/:id/sync", c.character.SyncCharacter)
		characters.PUT("/:id/gold-priority", c.character.UpdateGoldPriority)
		characters.DELETE("/:id", c.character.DeleteCharacter)
	}

	completions := group.Group("/completions")
	{
		completions.POST("/character/:id/checklist", c.completion.EnsureChecklist)
		completions.POST("/gate/:id/complete", c.completion.CompleteGate)
		completions.POST("/gate/:id/uncomplete", c.completion.UncompleteGate)
	}

	party := group.Group("/party")
	{
		party.POST("/manual", c.party.CreateManualParty)
		party.POST("/complete", c.party.CompleteParty)
		party.DELETE("/complete/:id", c.party.CancelPartyCompletion)
	}

	accounts := group.Group("/accounts/:accountId")
	accounts.Use(middleware.AccountScope("accountId"))
	{
		accounts.GET("/characters", c.character.ListByAccount)
		accounts.GET("/summary", c.account.Summary)
		accounts.GET("/raid-comparison", c.account.RaidComparison)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Master))
	{
		admin.GET("/stats", c.admin.Stats)
		admin.GET("/accounts", c.admin.ListAccounts)
		admin.DELETE("/accounts/:id", c.admin.DeleteAccount)
		admin.POST("/accounts/:id/sync", c.admin.SyncAccount)
		admin.GET("/parties", c.admin.PartyHistory)
		admin.DELETE("/week", c.admin.PurgeCurrentWeek)
		admin.POST("/prune", c.admin.Prune)
	}
}
