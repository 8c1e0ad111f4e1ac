package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/UziB26/leagueladder-sub000/handlers"
	"github.com/UziB26/leagueladder-sub000/middleware"
	"github.com/UziB26/leagueladder-sub000/models"
	"github.com/UziB26/leagueladder-sub000/services"
	"github.com/UziB26/leagueladder-sub000/utils"
	"github.com/UziB26/leagueladder-sub000/workers"

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
		BodyLimit: 64 * 1024 * 1024, // 64MB — dispute evidence uploads
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	evidenceEnabled, err := utils.InitEvidenceStore()
	if err != nil {
		log.Fatal("failed to initialize R2 evidence store:", err)
	}
	if !evidenceEnabled {
		log.Println("⚠️  R2 not configured — dispute evidence uploads disabled")
	}

	// TranslateError surfaces unique-constraint violations as
	// gorm.ErrDuplicatedKey, which the confirmation path relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.LadderPlayer{},
		&models.League{},
		&models.PlayerRating{},
		&models.Challenge{},
		&models.Contest{},
		&models.Confirmation{},
		&models.RatingUpdate{},
		&models.DisputeResolution{},
		&models.DisputeEvidence{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	eloConfig := services.LoadEloConfig()
	ratingEngine := services.NewRatingEngine(eloConfig)

	contestService := services.NewContestService(db)
	disputeService := services.NewDisputeService(db, ratingEngine)
	confirmationService := services.NewConfirmationService(db, ratingEngine, disputeService)
	leagueService := services.NewLeagueService(db)
	playerService := services.NewPlayerService(db)
	challengeService := services.NewChallengeService(db)

	// --- CONFIGURE audit sink for dispute resolutions ---
	auditSinkURL := os.Getenv("AUDIT_SINK_URL")
	if auditSinkURL == "" {
		log.Fatal("AUDIT_SINK_URL environment variable not set")
	}
	serviceToken := os.Getenv("LADDER_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("LADDER_SERVICE_TOKEN environment variable not set")
	}

	auditWorker := workers.NewAuditExportWorker(db, auditSinkURL, "/api/v1/admin-actions", serviceToken)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	auditWorker.Start(ctx)

	sweepInterval := 5 * time.Minute
	if v := os.Getenv("CHALLENGE_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			sweepInterval = d
		} else {
			log.Printf("⚠️  Invalid CHALLENGE_SWEEP_INTERVAL %q, using default %s", v, sweepInterval)
		}
	}
	challengeService.StartExpirySweeper(sweepInterval)

	handlers.SetupContestRoutes(app, contestService, confirmationService, disputeService)
	handlers.SetupLeagueRoutes(app, leagueService, playerService, challengeService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Audit Export Worker running")
	log.Printf("✅ Challenge expiry sweeper running (every %s)", sweepInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
