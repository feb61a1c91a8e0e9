package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"monadmons-arena/config"
	"monadmons-arena/handlers"
	"monadmons-arena/middleware"
	"monadmons-arena/models"
	"monadmons-arena/services"
	"monadmons-arena/utils"
	"monadmons-arena/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// roomBackend is what the server needs from a room store.
type roomBackend interface {
	services.RoomStore
	workers.StaleRoomStore
}

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(recover.New())

	// 🔐 Gateway token check (skipped when GAME_SERVICE_TOKEN is unset)
	app.Use(middleware.GatewayAuthMiddleware(cfg.GameServiceToken))

	allowedOrigins := cfg.Origins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control, X-Wallet-Address",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	if err := utils.InitR2(cfg.R2); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	catalog, err := services.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		log.Fatal("failed to load card catalog:", err)
	}

	var (
		rooms     roomBackend
		inventory services.Inventory
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Println("⚠️  STORE_DRIVER=memory, rooms and cards are lost on restart")
		rooms = services.NewMemoryRoomStore()
		inventory = services.NewMemoryInventory()
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		if err := db.AutoMigrate(
			&models.Room{},
			&models.OwnedCard{},
			&models.MatchResult{},
		); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		rooms = services.NewGormRoomStore(db, cfg.RoomPollInterval)
		inventory = services.NewGormInventory(db)
	default:
		log.Fatalf("unknown STORE_DRIVER %q (want postgres or memory)", cfg.StoreDriver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitor := workers.NewRoomJanitor(rooms, utils.ArchiveBattleLog, cfg.RoomTTL)
	if err := janitor.Start(ctx, cfg.JanitorInterval); err != nil {
		log.Fatal("failed to start room janitor:", err)
	}

	handlers.SetupHealthRoutes(app)
	handlers.SetupCatalogRoutes(app, catalog)
	handlers.SetupRoomRoutes(app, rooms)
	handlers.SetupPlayerRoutes(app, services.NewInventoryService(inventory, catalog))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s (store: %s)", cfg.Port, cfg.StoreDriver)
	log.Printf("✅ Room janitor running (every %s, ttl %s, archive to R2: %t)", cfg.JanitorInterval, cfg.RoomTTL, utils.R2Enabled())
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
