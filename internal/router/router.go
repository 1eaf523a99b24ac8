package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/arcwardens/outreach-backend/internal/agent"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/database/repository"
	"github.com/arcwardens/outreach-backend/internal/handlers"
	"github.com/arcwardens/outreach-backend/internal/middleware"
	"github.com/arcwardens/outreach-backend/internal/services"
	"github.com/arcwardens/outreach-backend/internal/services/auth"
	"github.com/arcwardens/outreach-backend/internal/services/excel"
	"github.com/arcwardens/outreach-backend/internal/tools"
)

// SetupRouter wires repositories, services, the tool registry and the
// agent, and mounts the HTTP surface.
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	// Services
	authService := auth.NewAuthService(cfg.Auth, userRepo)
	campaignService := services.NewCampaignService(campaignRepo, analyticsRepo, responseRepo)
	geminiService := services.NewGeminiService(cfg.Gemini)
	apolloService := services.NewApolloService(cfg.Apollo)
	gmailService := services.NewGmailService(cfg.Email)
	walletService := services.NewWalletService(cfg.Circle)
	excelService := excel.NewExcelService()

	// Tool registry
	registry := tools.NewRegistry()
	repliesExecutor := tools.NewRepliesExecutor(gmailService, campaignService, campaignService, cfg.Email.TestAddresses)
	mustRegister(registry, "apollo_search_people", tools.NewApolloSearchExecutor(apolloService, campaignService))
	mustRegister(registry, "filter_contacts_by_company_criteria", tools.NewFilterExecutor(geminiService, campaignService))
	mustRegister(registry, "gmail_tool", tools.NewGmailExecutor(gmailService, campaignService, campaignService))
	mustRegister(registry, "check_campaign_replies", repliesExecutor)
	mustRegister(registry, "ask_for_clarification", tools.NewClarifyExecutor())
	mustRegister(registry, "repeat_campaign_action", tools.NewRepeatExecutor(campaignService, registry))

	campaignAgent := agent.NewAgent(geminiService, registry, campaignService, cfg.Agent)

	// Middleware and handlers
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService)
	campaignHandler := handlers.NewCampaignHandler(campaignService, campaignAgent, repliesExecutor, excelService)
	walletHandler := handlers.NewWalletHandler(walletService)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/google", authHandler.GoogleAuth)

		authed := api.Group("")
		authed.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			authed.POST("/campaign/chat", campaignHandler.Chat)
			authed.POST("/campaign/pay", campaignHandler.Pay)
			authed.POST("/campaign/create", campaignHandler.Create)
			authed.PUT("/campaign/update", campaignHandler.Update)
			authed.DELETE("/campaign/delete", campaignHandler.Delete)

			authed.GET("/campaigns", campaignHandler.List)
			authed.GET("/campaigns/:id/analytics", campaignHandler.Analytics)
			authed.POST("/campaigns/:id/verify_status", campaignHandler.VerifyStatus)
			authed.GET("/campaigns/:id/contacts/export", campaignHandler.ExportContacts)

			authed.GET("/wallet/balance", walletHandler.Balance)
			authed.GET("/wallet/info", walletHandler.Info)
			authed.GET("/wallet/transactions", walletHandler.Transactions)
			authed.POST("/wallet/send", walletHandler.Send)
			authed.POST("/wallet/faucet", walletHandler.Faucet)
		}
	}

	logrus.Info("Router configured")
	return r
}

func mustRegister(registry *tools.Registry, name string, executor tools.Executor) {
	if err := registry.Register(name, executor); err != nil {
		logrus.Fatalf("Failed to register tool %s: %v", name, err)
	}
}
