package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/rorschach/staybooking/internal/adapter/handler"
	"github.com/rorschach/staybooking/internal/adapter/imagestore"
	"github.com/rorschach/staybooking/internal/adapter/repository/postgres"
	"github.com/rorschach/staybooking/internal/core/services"
	"github.com/rorschach/staybooking/internal/pkg/clock"
	"github.com/rorschach/staybooking/internal/platform/config"
	"github.com/rorschach/staybooking/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	log.Printf("Connecting to Redis at %s:%s...", cfg.Redis.Host, cfg.Redis.Port)

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		DB:   0,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully!")

	images, err := imagestore.NewLocal("./data/images")
	if err != nil {
		log.Fatalf("Failed to set up image store: %v", err)
	}

	ledger := postgres.NewAvailabilityRepository(db)
	reservations := postgres.NewReservationRepository(db)
	atomic := postgres.NewAtomicRunner(db, cfg.Booking.TxMaxRetries)

	reservationService := services.NewReservationService(ledger, reservations, atomic, redisClient, cfg.Booking.CacheTTL)
	stayService := services.NewStayService(ledger, reservations, images, clock.NewRealClock(), redisClient, cfg.Booking.WindowDays)

	bookingHandler := handler.NewBookingHandler(reservationService)
	stayHandler := handler.NewStayHandler(stayService)

	mux := http.NewServeMux()

	mux.HandleFunc("/reservations", bookingHandler.Reservations)
	mux.HandleFunc("/availability", bookingHandler.Availability)
	mux.HandleFunc("/stays", stayHandler.Stays)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on port :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
