package main

import (
	"log"
	"net/http"
	"time"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/controllers"
	"github.com/coachline-hq/coachline-api/middleware"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/coachline-hq/coachline-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Basic logging
	log.Println("Starting Coachline API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Application{},
		&models.Trainer{},
		&models.Session{},
		&models.Payout{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize collaborator services
	services.InitMailService(cfg)
	if cfg.PaymentBaseURL != "" {
		services.InitPaymentService(cfg.PaymentBaseURL, cfg.PaymentAPIKey)
	} else {
		log.Println("PAYMENT_BASE_URL not set, payout processing disabled")
	}
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Printf("Failed to initialize S3 service: %v", err)
		}
	} else {
		log.Println("AWS_S3_BUCKET not set, attachments disabled")
	}
	if cfg.RedisAddr != "" {
		services.InitUnreadCache(cfg.RedisAddr, time.Duration(cfg.UnreadCacheTTL)*time.Second)
	} else {
		log.Println("REDIS_ADDR not set, unread badge served from the database")
	}

	// Start the payout background job
	if cfg.PayoutJobInterval > 0 && cfg.PaymentBaseURL != "" {
		job := services.NewPayoutJob(time.Duration(cfg.PayoutJobInterval) * time.Second)
		job.Start()
		defer job.Stop()
	}

	router := setupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all routes and middleware
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Webhook-Token")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.POST("/applications", controllers.SubmitApplication)
		v1.POST("/webhooks/inbound", controllers.ReceiveInboundMessage)

		// Inbox endpoints (operators and admins)
		inbox := v1.Group("", middleware.EnsureValidToken(cfg), middleware.RequireRole("operator"))
		{
			inbox.POST("/conversations", controllers.CreateConversation)
			inbox.GET("/conversations", controllers.ListConversations)
			inbox.GET("/conversations/:id/messages", controllers.ListNewMessages)
			inbox.POST("/conversations/:id/messages", controllers.SendMessage)
			inbox.POST("/conversations/:id/read", controllers.MarkConversationRead)
			inbox.GET("/messages/unread", controllers.GetUnreadCount)
			inbox.POST("/attachments", controllers.UploadAttachment)
		}

		// Review and marketplace endpoints (admins only)
		admin := v1.Group("", middleware.EnsureValidToken(cfg), middleware.RequireRole("admin"))
		{
			admin.GET("/applications", controllers.ListApplications)
			admin.POST("/applications/:id/approve", controllers.ApproveApplication)
			admin.POST("/applications/:id/reject", controllers.RejectApplication)
			admin.GET("/trainers", controllers.ListTrainers)
			admin.PATCH("/trainers/:id/status", controllers.SetTrainerStatus)
			admin.GET("/trainers/:id/payouts", controllers.ListTrainerPayouts)
			admin.POST("/trainers/:id/payouts", controllers.CreateTrainerPayout)
			// Moving money requires a dedicated token scope on top of the admin role
			admin.POST("/payouts/:id/process", middleware.RequireScope("process:payouts"), controllers.ProcessPayout)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Coachline API is running",
	})
}
