// File: voicetable/main.go
package main

import (
	"time"

	"voicetable/config"
	"voicetable/cron"
	"voicetable/database"
	recordsRepo "voicetable/database/repository/records"
	"voicetable/handlers"
	"voicetable/middleware"
	"voicetable/routes"
	"voicetable/services/dialogue"
	"voicetable/services/nlu"
	"voicetable/services/records"
	"voicetable/services/reservation"
	"voicetable/services/session"
	"voicetable/services/speech"
	"voicetable/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSlotStore()
	utils.InitQueueStore()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
		MaxAge:       12 * time.Hour,
	}))

	// Shared slot store and record queue.
	slotEngine := reservation.NewRedisSlotEngine(
		utils.GetSlotClient(),
		time.Duration(config.AppConfig.SlotLockTTLSec)*time.Second,
	)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	// Record sinks drained by the background worker.
	archiveRepo := recordsRepo.NewMongoArchiveRepo()
	cron.InitRecordWorker(records.NewSheetsAppender(), archiveRepo)

	// Dialogue core.
	dialogueService := dialogue.NewDialogueService(
		session.NewMemorySessionStore(),
		slotEngine,
		nlu.NewRegexParser(),
		records.NewAsynqDispatcher(queueClient),
		int64(config.AppConfig.SlotCapacity),
	)

	// Speech collaborators.
	stt := speech.NewGoogleSTT()
	tts := speech.NewElevenLabsTTS()

	audioHandler := handlers.NewAudioHandler(dialogueService, stt, tts)
	routes.RegisterRoutes(router, audioHandler)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSlotClient(), utils.GetQueueClient()},
		database.MongoClient,
	)

	logger.Sugar().Infof("main: voice line listening on port %s", config.AppConfig.AppPort)
	if err := router.Run(":" + config.AppConfig.AppPort); err != nil {
		logger.Sugar().Fatalf("main: server exited: %v", err)
	}
}
