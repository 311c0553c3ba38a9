package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"lostfound/internal/adapter/api"
	"lostfound/internal/adapter/api/handler"
	apimiddleware "lostfound/internal/adapter/api/middleware"
	"lostfound/internal/adapter/api/router"
	"lostfound/internal/adapter/repository"
	"lostfound/internal/infrastructure/websocket"
	"lostfound/internal/usecase"
	"lostfound/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if path := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", path)
		}
		log.Printf("Using Firebase service account from file: %s", path)
		opts = append(opts, option.WithCredentialsFile(path))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	itemRepo := repository.NewFirestoreItemRepository(firestoreClient)
	profileRepo := repository.NewFirestoreProfileRepository(firestoreClient)

	realtimeManager := websocket.NewManager()

	messagingUseCase := usecase.NewMessagingUseCase(messageRepo, itemRepo, profileRepo, realtimeManager)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	chatHandler := handler.NewChatHandler(messagingUseCase)
	wsHandler := handler.NewWebSocketHandler(messagingUseCase, authMiddleware)

	e.GET("/health", handler.HealthCheck)

	router.SetupChatRouter(e, chatHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s (%s)...", cfg.ServerPort, cfg.Environment)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
