package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bounty-marketplace-system/engine"
	"bounty-marketplace-system/handlers"
	"bounty-marketplace-system/middleware"
	"bounty-marketplace-system/models"
	"bounty-marketplace-system/services"
	"bounty-marketplace-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — bounty payloads are small JSON
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Bounty{},
		&models.Submission{},
		&models.TransferRecord{},
		&models.EngineConfig{},
		&models.WalletMirror{},
		&models.TalentProfile{},
		&models.TalentReputation{},
		&models.BadgeType{},
		&models.UserBadge{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	custody := services.NewCustodyClient()
	eng := engine.New(db, custody)

	adminAddress := os.Getenv("ADMIN_ADDRESS")
	if adminAddress == "" {
		log.Fatal("ADMIN_ADDRESS environment variable not set")
	}
	feeAccountAddress := os.Getenv("FEE_ACCOUNT_ADDRESS")
	if feeAccountAddress == "" {
		log.Fatal("FEE_ACCOUNT_ADDRESS environment variable not set")
	}
	if err := eng.EnsureConfig(adminAddress, feeAccountAddress); err != nil {
		log.Fatal("failed to seed engine config:", err)
	}

	reputationService := services.NewReputationService(db)
	if err := reputationService.SeedBadgeTypes(); err != nil {
		log.Fatal("failed to seed badge types:", err)
	}

	bountyService := services.NewBountyService(db, eng)
	submissionService := services.NewSubmissionService(db, eng, reputationService)
	settlementService := services.NewSettlementService(db, eng, reputationService)
	adminService := services.NewAdminService(eng)
	walletService := services.NewWalletService(db)

	// --- Profile sync worker configuration ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("BOUNTY_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("BOUNTY_SERVICE_TOKEN environment variable not set")
	}

	talentSyncWorker := workers.NewTalentSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	walletSyncClient := workers.NewWalletSyncClient(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollWallets(ctx, walletSyncClient, 10*time.Second)

	talentSyncWorker.Start(ctx)

	settlementService.StartJudgingScheduler()

	handlers.SetupBountyRoutes(app, bountyService, submissionService, settlementService)
	handlers.SetupAdminRoutes(app, adminService)
	handlers.SetupTalentRoutes(app, reputationService, walletService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Talent Sync Worker running")
	log.Println("✅ Wallet polling running (every 10s)")
	log.Println("✅ Judging deadline sweep running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
