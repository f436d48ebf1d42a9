package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"inkwell/auth"
	"inkwell/database"
	"inkwell/handlers"
	"inkwell/media"
	"inkwell/routes"
	"inkwell/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on environment")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	jwtSecret := os.Getenv("JWT_SECRET")
	cloudinaryURL := os.Getenv("CLOUDINARY_URL")
	if mongoURI == "" || jwtSecret == "" || cloudinaryURL == "" {
		log.Fatal("MONGODB_URI, JWT_SECRET and CLOUDINARY_URL must be set")
	}

	client, err := database.Connect(mongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}()
	log.Info("connected to MongoDB")

	mediaStore, err := media.NewCloudinary(cloudinaryURL, "inkwell")
	if err != nil {
		log.WithError(err).Fatal("failed to configure media store")
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := auth.NewTokenService(jwtSecret, 24*time.Hour)
	api := handlers.New(store.NewMongo(client.Database("inkwell")), mediaStore, tokens, log)
	router := routes.SetupRouter(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("forced shutdown")
	}
	log.Info("server stopped")
}
