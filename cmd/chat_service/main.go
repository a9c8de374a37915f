package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/internal/chat/router"
	"marketplace_chat_service/pkg/config"
	"marketplace_chat_service/pkg/database"
	"marketplace_chat_service/pkg/logger"
	testtool "marketplace_chat_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	testtool.StartPprof()

	ctx := context.Background()

	// mongo holds the messages
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval) * time.Second,
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// redis carries pub/sub fan-out and the presence store
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// minio keeps the attachment objects
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	// rabbitmq hands offline-receiver notifications to the notifier workers
	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.Rabbit.URL,
		RetryCount:    cfg.Rabbit.RetryCount,
		RetryInterval: time.Duration(cfg.Rabbit.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect rabbitmq err : %v", err))
	}
	defer rabbitConn.Close()
	rabbitCh, err := database.GetRabbitMQChannelWithRetry(rabbitConn, cfg.Rabbit.RetryCount, time.Duration(cfg.Rabbit.RetryInterval))
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("rabbitmq channel err : %v", err))
	}
	defer rabbitCh.Close()

	// kafka receives the message lifecycle activity stream
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
	}
	defer kafkaWriter.Close()

	// repositories
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	if err := msgRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("ensure indexes err : %v", err))
	}
	presRepo := repository.NewRedisPresenceRepository(redisClient)
	attachRepo := repository.NewMinioAttachmentRepository(minioClient)
	pubSub := repository.NewRedisPubSub(redisClient)
	notifyQueue, err := repository.NewRabbitNotificationQueue(database.NewRabbitRepository(rabbitCh), cfg.Rabbit.Queue)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("declare notification queue err : %v", err))
	}
	activity := repository.NewKafkaActivityProducer(kafkaWriter)

	// usecases
	deliveryUC := app.NewDeliveryUseCase(msgRepo, pubSub)
	messageUC := app.NewMessageUseCase(msgRepo, attachRepo, presRepo, pubSub, notifyQueue, activity)
	convUC := app.NewConversationUseCase(msgRepo, pubSub)
	presenceUC := app.NewPresenceUseCase(presRepo, pubSub, deliveryUC)

	r := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxAttachmentSize) + 1024*1024,
	})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		app.NewChatHTTPHandler(messageUC, convUC, deliveryUC, presenceUC, cfg.MaxAttachmentSize),
		app.NewChatWebsocketHandler(presenceUC, deliveryUC, pubSub),
	)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
