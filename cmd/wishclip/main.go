package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/wishclip/wishclip/internal/pkg/cache"
	"github.com/wishclip/wishclip/internal/pkg/database"
	"github.com/wishclip/wishclip/internal/pkg/env"
	"github.com/wishclip/wishclip/internal/pkg/jobqueue"
	"github.com/wishclip/wishclip/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Stop the queue workers on shutdown so in-flight cleanup/notify jobs
	// are finished or safely requeued.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "wishclip",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER (also wires repositories, services and the job queue deps)
	router.InstallRouter(app)

	// background workers for remote cleanup + order notifications
	jobqueue.GetManager().Start()

	return app
}
