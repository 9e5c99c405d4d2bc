package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sharehood/sharehoodback/api/auth"
	"github.com/sharehood/sharehoodback/env"
	"github.com/sharehood/sharehoodback/middleware"
	dataloader "github.com/sharehood/sharehoodback/middleware/loaders"
	"github.com/sharehood/sharehoodback/services/bus"
	"github.com/sharehood/sharehoodback/services/dispatch"
	mongosvc "github.com/sharehood/sharehoodback/services/mongo"
	"github.com/sharehood/sharehoodback/services/notify"
	redissvc "github.com/sharehood/sharehoodback/services/redis"
	"github.com/sharehood/sharehoodback/services/s3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPort = "8080"

func main() {
	port := env.GetEnv("PORT", defaultPort)
	mongoURI := env.GetEnv("MONGO_URI", "mongodb://localhost:27017")
	dbName := env.GetEnv("MONGO_DB", "sharehood")
	redisHost := env.GetEnv("REDIS_HOST", "localhost:6379")
	redisPassword := env.GetEnv("REDIS_PASSWORD", "")
	redisDB := env.GetEnv("REDIS_DB", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("MongoDB is unreachable: %v", err)
	}
	db := client.Database(dbName)
	log.Println("MongoDB connected")

	base := mongosvc.New(db)
	notificationService := mongosvc.NewNotificationService(base)
	messageService := mongosvc.NewMessageService(base)
	bookingService := mongosvc.NewBookingService(base)
	userService := mongosvc.NewUserService(base)
	postService := mongosvc.NewPostService(base)

	if err := notificationService.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure notification indexes: %v", err)
	}

	redisClient := redissvc.NewRedisClient(redisHost, redisPassword, redisDB)
	if err := redisClient.Ping(ctx); err != nil {
		log.Fatalf("Redis is unreachable: %v", err)
	}
	log.Println("Redis connected")
	unreadIndex := redissvc.NewUnreadIndex(redisClient)

	pushSender := dispatch.NewHTTPPushSender(env.GetEnv("PUSH_GATEWAY_URL", ""))
	mailSender := dispatch.NewSMTPMailSender(dispatch.SMTPConfig{
		Host:     env.GetEnv("SMTP_HOST", ""),
		Port:     env.GetEnv("SMTP_PORT", "587"),
		From:     env.GetEnv("SMTP_FROM", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
	})
	notifier := dispatch.NewNotifier(pushSender, mailSender, userService)

	messageBus := bus.NewMemoryBus()

	notifyService := notify.NewService(
		notificationService,
		messageService,
		bookingService,
		userService,
		postService,
		unreadIndex,
		messageBus,
		notifier,
	)

	var imageService *s3.S3Service
	if endpoint := env.GetEnv("AWS_ENDPOINT", ""); endpoint != "" {
		imageService, err = s3.NewS3Service(&s3.S3ClientConfig{
			Bucket:    env.GetEnv("AWS_BUCKET", ""),
			Endpoint:  endpoint,
			Region:    env.GetEnv("AWS_REGION", ""),
			AccessKey: env.GetEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: env.GetEnv("AWS_SECRET_ACCESS_KEY", ""),
		})
		if err != nil {
			log.Fatalf("Failed to create S3 service: %v", err)
		}
		log.Println("S3 connected")
	}

	jwtManager := auth.NewJWTManager(
		env.GetEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		24*time.Hour,
	)

	handler := &Handler{Notify: notifyService, Images: imageService}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /notifications", handler.CreateNotification)
	mux.HandleFunc("GET /notifications", handler.ListNotifications)
	mux.HandleFunc("GET /notifications/chat", handler.FindChatNotification)
	mux.HandleFunc("GET /notifications/unread", handler.HasUnread)
	mux.HandleFunc("GET /notifications/{id}", handler.GetNotification)
	mux.HandleFunc("POST /messages", handler.CreateMessage)
	mux.HandleFunc("PUT /bookings/{id}", handler.UpdateBooking)
	mux.HandleFunc("POST /images", handler.UploadImage)
	mux.HandleFunc("DELETE /images/{key...}", handler.DeleteImage)
	mux.HandleFunc("GET /ws/messages", handler.StreamMessages)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: false,
		AllowedHeaders:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	})

	chain := c.Handler(
		middleware.AuthMiddleware(jwtManager)(
			dataloader.Middleware(userService, postService)(mux),
		),
	)

	log.Printf("Starting server on :%s", port)
	if err := http.ListenAndServe(":"+port, chain); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
