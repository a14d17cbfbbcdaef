package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/cache"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/db"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/email"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/notify"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/storage"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/tasks"
)

func main() {
	runMode := flag.String("m", "all", "run mode: api, bg, img or all")
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	isAPI := *runMode == "api" || *runMode == "all"
	isBgWorker := *runMode == "bg" || *runMode == "all"
	isImageWorker := *runMode == "img" || *runMode == "all"
	if !isAPI && !isBgWorker && !isImageWorker {
		log.Fatalf("unknown run mode %q", *runMode)
	}

	mongoClient, database, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("error disconnecting from MongoDB: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	cancel()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(rdb); err != nil {
			log.Printf("error disconnecting from Redis: %v", err)
		}
	}()

	mediaStorage, err := storage.NewMediaStorage(cfg)
	if err != nil {
		log.Fatalf("failed to initialize media storage: %v", err)
	}

	emailSender := buildEmailSender(cfg, rdb)

	taskClient := tasks.NewClient(rdb)
	defer taskClient.Close()
	notifier := notify.NewTaskNotifier(taskClient)

	shutdownChan := make(chan struct{}, 1)
	var wg sync.WaitGroup

	var apiServer, serviceServer *http.Server
	if isAPI {
		router := api.SetupRouter(cfg, database, notifier, mediaStorage, taskClient)
		apiServer = &http.Server{Addr: ":" + cfg.ApiPort, Handler: router}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("API listening on :%s", cfg.ApiPort)
			if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("API server error: %v", err)
			}
		}()

		serviceRouter := api.SetupServiceRouter(rdb, shutdownChan)
		serviceServer = &http.Server{Addr: ":" + cfg.ServiceApiPort, Handler: serviceRouter}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("service API listening on :%s", cfg.ServiceApiPort)
			if err := serviceServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("service API server error: %v", err)
			}
		}()
	}

	var taskServer *asynq.Server
	if isBgWorker || isImageWorker {
		processor := tasks.NewTaskProcessor(cfg, emailSender, mediaStorage)
		taskServer = tasks.SetupServer(rdb, isImageWorker, isBgWorker)
		mux := processor.Mux(isImageWorker, isBgWorker)
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("task worker starting (bg=%v img=%v)", isBgWorker, isImageWorker)
			if err := taskServer.Run(mux); err != nil {
				log.Fatalf("task server error: %v", err)
			}
		}()
	}

	// Block until a signal or a service-API shutdown request.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Printf("received signal %v, shutting down", sig)
	case <-shutdownChan:
		log.Print("shutdown requested via service API")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}
	if serviceServer != nil {
		if err := serviceServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("service API server shutdown error: %v", err)
		}
	}
	if taskServer != nil {
		taskServer.Shutdown()
	}
	wg.Wait()
	log.Print("shutdown complete")
}

// buildEmailSender assembles the delivery chain. MOCK_SERVICES stores
// emails in Redis for test retrieval, LOG_EMAILS appends them to a file,
// and otherwise SMTP delivers for real. Multiple sinks compose.
func buildEmailSender(cfg *config.Config, rdb *redis.Client) email.Sender {
	composite := email.NewCompositeEmailSender()
	wired := false

	if os.Getenv("MOCK_SERVICES") == "true" {
		composite.AddSender(email.NewRedisSender(rdb, cfg))
		wired = true
	}
	if path := os.Getenv("LOG_EMAILS"); path != "" {
		fileSender, err := email.NewFileEmailSender(path, cfg)
		if err != nil {
			log.Printf("failed to set up file email sender: %v", err)
		} else {
			composite.AddSender(fileSender)
			wired = true
		}
	}
	if !wired {
		composite.AddSender(email.NewSMTPSender(cfg))
	}
	return composite
}
