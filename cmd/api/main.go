package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/thejerf/abtime"

	"github.com/preetk/blogapi/internal/auth"
	"github.com/preetk/blogapi/internal/config"
	"github.com/preetk/blogapi/internal/db"
	"github.com/preetk/blogapi/internal/handlers"
	"github.com/preetk/blogapi/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxOpen, cfg.DBMaxIdle, cfg.DBMaxLifetime)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	clock := abtime.NewRealTime()
	issuer := auth.NewIssuer(cfg.SecretKey, cfg.AccessTTL, cfg.RefreshTTL, clock)

	h := handlers.New(cfg, store.NewUserStore(dbConn), store.NewPostStore(dbConn), issuer, clock)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h.Routes(),
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
