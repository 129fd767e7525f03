package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"wegochat/backend/internal/api/handler"
	"wegochat/backend/internal/chathub"
	"wegochat/backend/internal/config"
	"wegochat/backend/internal/friend"
	"wegochat/backend/internal/group"
	"wegochat/backend/internal/models"
	"wegochat/backend/internal/storage"
	"wegochat/backend/internal/unread"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Group{},
		&models.FriendRequest{},
		&models.ReadCursor{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting WeGoChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	// 1. Dependencies
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// 2. Hub and domain services
	hub := chathub.NewManagerService(s)
	messages := chathub.NewMessageService(hub, s)
	friends := friend.NewService(s, hub)
	groups := group.NewService(s, hub, messages)
	unreadSvc := unread.NewService(s)

	h := handler.NewHandler(hub, messages, friends, groups, unreadSvc, s, cfg.JWTSecret)
	hub.OnPresenceChange = h.NotifyPresence

	go hub.Run()
	defer hub.Stop()

	// 3. Gin routing
	r := gin.Default()

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.AuthRequired())
	{
		api.GET("/users/search", h.SearchUsers)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/profile", h.UpdateProfile)

		api.POST("/friends/request", h.SendFriendRequest)
		api.GET("/friends/requests", h.ListFriendRequests)
		api.PUT("/friends/request/:id", h.ResolveFriendRequest)
		api.GET("/friends", h.ListFriends)

		api.POST("/groups", h.CreateGroup)
		api.GET("/groups", h.ListGroups)
		api.GET("/groups/:id", h.GetGroup)
		api.PUT("/groups/:id", h.UpdateGroup)
		api.POST("/groups/:id/members", h.AddGroupMembers)
		api.DELETE("/groups/:id/members/:memberId", h.RemoveGroupMember)
		api.POST("/groups/:id/admins", h.SetGroupAdmin)
		api.DELETE("/groups/:id/admins/:memberId", h.UnsetGroupAdmin)
		api.DELETE("/groups/:id/leave", h.LeaveGroup)

		api.GET("/chats", h.ListChats)
		api.GET("/chats/history/:roomId", h.GetHistory)
		api.GET("/chats/unread", h.GetUnread)
		api.POST("/chats/read/:roomId", h.MarkRead)
	}

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
