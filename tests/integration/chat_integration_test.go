package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"testing"
	"time"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/internal/chat/router"
	"marketplace_chat_service/pkg/database"
	"marketplace_chat_service/pkg/logger"
	testtool "marketplace_chat_service/pkg/test_tool"
	"marketplace_chat_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// needs docker, run with CHAT_INTEGRATION=1 go test ./tests/integration/

var chatApp *fiber.App

func TestMain(m *testing.M) {
	if os.Getenv("CHAT_INTEGRATION") == "" {
		fmt.Println("CHAT_INTEGRATION not set, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	logger.SetNewNop()
	var err error

	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start MongoDB container: %v", err)
	}

	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start Redis container: %v", err)
	}

	mongo, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 5,
	}, "test_chat_db")
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongo.Close(ctx)

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort),
		DB:   0,
	})

	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	if err := msgRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	presRepo := repository.NewRedisPresenceRepository(redisClient)
	pubSub := repository.NewRedisPubSub(redisClient)

	// no minio/rabbit/kafka here, text-only flows cover the wire behavior
	deliveryUC := app.NewDeliveryUseCase(msgRepo, pubSub)
	messageUC := app.NewMessageUseCase(msgRepo, nil, presRepo, pubSub, nil, nil)
	convUC := app.NewConversationUseCase(msgRepo, pubSub)
	presenceUC := app.NewPresenceUseCase(presRepo, pubSub, deliveryUC)

	chatApp = fiber.New()
	router.RegisterRoutes(chatApp,
		app.NewChatHTTPHandler(messageUC, convUC, deliveryUC, presenceUC, 10*1024*1024),
		app.NewChatWebsocketHandler(presenceUC, deliveryUC, pubSub),
	)

	go func() {
		if err := chatApp.Listen(":8081"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	time.Sleep(5 * time.Second)

	code := m.Run()

	_ = mongoContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	chatApp.Shutdown()

	os.Exit(code)
}

func dialWS(t *testing.T, userID string) *gws.Conn {
	jwt, err := token.GenerateJWT(userID, "user", "chat-test")
	assert.NoError(t, err)

	conn, _, err := gws.DefaultDialer.Dial("ws://127.0.0.1:8081/ws?auth="+jwt, nil)
	assert.NoError(t, err, "WebSocket dial failed")
	return conn
}

func readEvent(t *testing.T, conn *gws.Conn, want domain.EventType) domain.WSResponse {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, raw, err := conn.ReadMessage()
		assert.NoError(t, err)

		var resp domain.WSResponse
		assert.NoError(t, json.Unmarshal(raw, &resp))
		if resp.Event == want {
			return resp
		}
		// presence broadcasts interleave with the event under test
	}
	t.Fatalf("never received %s", want)
	return domain.WSResponse{}
}

func postForm(t *testing.T, url, jwt string, fields map[string]string) (int, []byte) {
	form := neturl.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(form.Encode()))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+jwt)

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, body
}

func TestWebSocketTypingRelay(t *testing.T) {
	connX := dialWS(t, "it-user-x")
	defer connX.Close()
	connY := dialWS(t, "it-user-y")
	defer connY.Close()
	time.Sleep(time.Second)

	req := []byte(`{"event": "typing_start", "receiver_id": "it-user-y"}`)
	assert.NoError(t, connX.WriteMessage(gws.TextMessage, req))

	resp := readEvent(t, connY, domain.EventTypingStart)
	assert.Equal(t, "it-user-x", resp.Payload["user_id"])
}

func TestSendDeliversToOnlineReceiver(t *testing.T) {
	connX := dialWS(t, "it-sender")
	defer connX.Close()
	connY := dialWS(t, "it-receiver")
	defer connY.Close()
	time.Sleep(time.Second)

	jwt, err := token.GenerateJWT("it-sender", "user", "chat-test")
	assert.NoError(t, err)

	status, body := postForm(t, "http://127.0.0.1:8081/send", jwt, map[string]string{
		"receiverId": "it-receiver",
		"content":    "integration hello",
	})
	assert.Equal(t, 201, status)
	assert.Contains(t, string(body), `"success":true`)

	// receiver sees the message, sender sees the delivered receipt
	resp := readEvent(t, connY, domain.EventNewMessage)
	msg := resp.Payload["message"].(map[string]interface{})
	assert.Equal(t, "integration hello", msg["content"])
	assert.Equal(t, string(domain.StatusDelivered), msg["messageStatus"])

	receipt := readEvent(t, connX, domain.EventMessageDelivered)
	assert.Equal(t, msg["id"], receipt.Payload["message_id"])
}

func TestUnknownEventGetsError(t *testing.T) {
	conn := dialWS(t, "it-user-z")
	defer conn.Close()
	time.Sleep(time.Second)

	assert.NoError(t, conn.WriteMessage(gws.TextMessage, []byte(`{"event": "join_room"}`)))

	resp := readEvent(t, conn, domain.EventError)
	assert.False(t, resp.Success)
}
