package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/openbid/auctionhouse/internal/auth"
	"github.com/openbid/auctionhouse/internal/db"
	"github.com/openbid/auctionhouse/internal/handlers"
	"github.com/openbid/auctionhouse/internal/middleware"
	"github.com/openbid/auctionhouse/internal/services"
	"github.com/openbid/auctionhouse/internal/storage"
	"github.com/openbid/auctionhouse/internal/store"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logrus.SetOutput(os.Stdout)

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	database, err := db.Connect(getenv("MONGO_URI", "mongodb://localhost:27017"), getenv("MONGO_DB", "auctionhouse"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to MongoDB")
	}
	logrus.Info("connected to MongoDB")

	images, err := storage.NewMinioStorage(
		getenv("MINIO_ENDPOINT", "localhost:9000"),
		getenv("MINIO_ACCESS_KEY", "minioadmin"),
		getenv("MINIO_SECRET_KEY", "minioadmin"),
		"auction-images",
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to MinIO")
	}

	st := store.NewMongoStore(database)
	tokens := auth.NewTokenManager(jwtSecret, 24*time.Hour)
	authService := services.NewAuthService(st, auth.BcryptHasher{}, tokens)
	auctionService := services.NewAuctionService(st, images)

	authHandler := handlers.NewAuthHandler(authService, tokens)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	adminHandler := handlers.NewAdminHandler(auctionService, st)

	app := fiber.New()
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     getenv("CORS_ORIGIN", "http://localhost:5173"),
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/check", authHandler.Check)

	auctions := api.Group("/auctions")
	auctions.Get("/", auctionHandler.List)
	auctions.Get("/:id", auctionHandler.Get)
	auctions.Get("/:id/image", auctionHandler.ImageURL)
	auctions.Post("/", middleware.RequireAuth(tokens), auctionHandler.Create)
	auctions.Post("/:id/bid", middleware.RequireAuth(tokens), auctionHandler.Bid)
	auctions.Post("/:id/close", middleware.RequireAuth(tokens), auctionHandler.Close)
	auctions.Post("/:id/image", middleware.RequireAuth(tokens), auctionHandler.UploadImage)

	admin := api.Group("/admin", middleware.RequireAuth(tokens), middleware.RequireAdmin)
	admin.Get("/auctions", adminHandler.ListAuctions)
	admin.Get("/users", adminHandler.ListUsers)

	port := getenv("PORT", "8080")
	logrus.WithField("port", port).Info("starting server")
	logrus.Fatal(app.Listen(":" + port))
}
