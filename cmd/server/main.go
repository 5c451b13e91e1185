package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"content_studio/internal/database"
	"content_studio/internal/global"
	"content_studio/internal/logger"
	"content_studio/internal/utility"
	"content_studio/internal/worker"
)

// Hàm main
func main() {
	initLogger()
	defer logger.Shutdown()

	// Khởi tạo các biến toàn cục và registry
	InitGlobal()
	InitRegistry()

	cfg := global.ServerConfig
	svc := InitServices(cfg)
	defer svc.Close()

	log := logger.GetAppLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Worker đăng nội dung theo lịch
	publishWorker := worker.NewScheduledPublishWorker(svc.Content, time.Duration(cfg.ScheduleWorkerInterval)*time.Second, svc.Metrics)
	go utility.GoProtect(func() { publishWorker.Start(ctx) })

	app := InitFiberApp(cfg, svc)
	address := ":" + cfg.Address

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
		"store":    cfg.StoreDriver,
	}).Info("Starting Fiber server")
	if err := app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	if global.MongoDB_Session != nil {
		_ = database.CloseInstance(global.MongoDB_Session)
	}
	log.Info("Server stopped")
}
