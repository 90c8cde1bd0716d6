package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mklatt/careport/internal/backup"
	"github.com/mklatt/careport/internal/database"
	"github.com/mklatt/careport/internal/logging"
	"github.com/mklatt/careport/internal/push"
	"github.com/mklatt/careport/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("CAREPORT_LOG_LEVEL"))

	port := os.Getenv("CAREPORT_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CAREPORT_DB_PATH")
	if dbPath == "" {
		dbPath = "careport.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("CAREPORT_S3_ENDPOINT"),
			Bucket:    os.Getenv("CAREPORT_S3_BUCKET"),
			Region:    os.Getenv("CAREPORT_S3_REGION"),
			AccessKey: os.Getenv("CAREPORT_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CAREPORT_S3_SECRET_KEY"),
		},
		DBPath:     dbPath,
		Passphrase: os.Getenv("CAREPORT_BACKUP_PASSPHRASE"),
	}

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("CAREPORT_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("CAREPORT_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, backupCfg, pushCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx)
	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Careport running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	if sched := srv.PushScheduler(); sched != nil {
		sched.Stop()
	}
	srv.BackupManager().Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
