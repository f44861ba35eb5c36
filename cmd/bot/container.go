// container.go
package main

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/openai/openai-go/v3/option"
	"github.com/redis/go-redis/v9"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/ai/llm"
	aiopenai "github.com/hoshino-dev/hoshi/pkg/ai/providers/openai"
	"github.com/hoshino-dev/hoshi/pkg/auth"
	"github.com/hoshino-dev/hoshi/pkg/broadcast/broadcastapi"
	"github.com/hoshino-dev/hoshi/pkg/broadcast/broadcastsrv"
	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/chat/chatapi"
	"github.com/hoshino-dev/hoshi/pkg/chat/chatinfra"
	"github.com/hoshino-dev/hoshi/pkg/chat/chatsrv"
	"github.com/hoshino-dev/hoshi/pkg/config"
	"github.com/hoshino-dev/hoshi/pkg/fsx"
	"github.com/hoshino-dev/hoshi/pkg/fsx/fsxlocal"
	"github.com/hoshino-dev/hoshi/pkg/fsx/fsxs3"
	"github.com/hoshino-dev/hoshi/pkg/logx"
	"github.com/hoshino-dev/hoshi/pkg/memory"
	"github.com/hoshino-dev/hoshi/pkg/memory/memoryinfra"
	"github.com/hoshino-dev/hoshi/pkg/memory/memorysrv"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB        *sqlx.DB
	Redis     *redis.Client
	Assets    fsx.FileSystem
	S3Client  *s3.Client
	Transport chat.Transport

	// AI
	LLMClient *llm.Client
	Generator *genx.Generator

	// Domain Services
	MemoryStore      *memorysrv.Store
	Compactor        *memorysrv.Compactor
	ReplyService     *chatsrv.ReplyService
	BroadcastService *broadcastsrv.Service

	// API Handlers
	MessageHandlers   *chatapi.MessageHandlers
	BroadcastHandlers *broadcastapi.BroadcastHandlers

	// Middleware
	AuthMiddleware *auth.TokenMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing dependency container...")

	c := &Container{
		Config: cfg,
	}

	c.initInfrastructure()
	c.initServices()

	logx.Info("✅ Container initialized successfully")
	return c
}

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Memory Store Backend (optional, the bot degrades to stateless)
	switch c.Config.Memory.Store {
	case config.MemoryStorePostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Config.Database.Host,
			c.Config.Database.Port,
			c.Config.Database.User,
			c.Config.Database.Password,
			c.Config.Database.Name,
			c.Config.Database.SSLMode,
		)

		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Info("✅ Database connected")

	case config.MemoryStoreRedis:
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			// Not fatal: the memory adapter falls back to empty records
			logx.Warnf("⚠️  Failed to connect to Redis: %v (running stateless)", err)
		} else {
			logx.Info("✅ Redis connected")
		}

	case config.MemoryStoreNone:
		logx.Warn("⚠️  MEMORY_STORE=none, conversations will not be remembered")
	}

	// 2. Asset Storage (Local or S3)
	c.initAssetStorage()

	// 3. Chat Transport
	if c.Config.Chat.BaseURL == "console" {
		c.Transport = chatinfra.NewConsoleTransport(c.Config.Chat.GuildID, c.Config.Chat.ChannelID)
		logx.Warn("⚠️  Console chat transport, nothing will actually be sent")
	} else {
		c.Transport = chatinfra.NewRestTransport(c.Config.Chat.BaseURL, c.Config.Chat.BotToken)
		logx.Infof("✅ Chat transport configured (%s)", c.Config.Chat.BaseURL)
	}

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initAssetStorage() {
	switch c.Config.Broadcast.AssetStore {
	case config.AssetStoreS3:
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(),
			awsConfig.WithRegion(c.Config.Broadcast.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.Assets = fsxs3.NewS3FileSystem(c.S3Client, c.Config.Broadcast.AssetsBucket, "")
		logx.Infof("✅ S3 asset store configured (bucket: %s, region: %s)",
			c.Config.Broadcast.AssetsBucket, c.Config.Broadcast.AWSRegion)

	case config.AssetStoreLocal:
		localFS, err := fsxlocal.NewLocalFileSystem(c.Config.Broadcast.AssetsDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local asset store: %v", err)
		}
		c.Assets = localFS
		logx.Infof("✅ Local asset store configured (path: %s)", localFS.GetBasePath())

	case config.AssetStoreNone:
		logx.Info("Asset store disabled, broadcasts go out text-only")

	default:
		logx.Fatalf("Unknown ASSET_STORE: %s (use 'local', 's3' or 'none')", c.Config.Broadcast.AssetStore)
	}
}

func (c *Container) initServices() {
	logx.Info("🗄️  Initializing repositories and services...")

	// --- AI ---
	providerOpts := []option.RequestOption{}
	if c.Config.LLM.BaseURL != "" {
		providerOpts = append(providerOpts, option.WithBaseURL(c.Config.LLM.BaseURL))
	}
	provider := aiopenai.NewOpenAIProvider(c.Config.LLM.APIKey, providerOpts...)
	c.LLMClient = llm.NewClient(provider)

	llmOpts := []llm.Option{llm.WithModel(c.Config.LLM.Model)}
	if c.Config.LLM.MaxTokens > 0 {
		llmOpts = append(llmOpts, llm.WithMaxTokens(c.Config.LLM.MaxTokens))
	}
	c.Generator = genx.New(c.LLMClient,
		genx.WithAttempts(c.Config.LLM.RetryAttempts),
		genx.WithRetryDelay(c.Config.LLM.RetryDelay),
		genx.WithLLMOptions(llmOpts...),
	)
	logx.Infof("✅ Generator configured (model: %s)", c.Config.LLM.Model)

	// --- Memory ---
	var memoryRepo memory.Repository
	switch c.Config.Memory.Store {
	case config.MemoryStoreRedis:
		memoryRepo = memoryinfra.NewRedisMemoryRepository(c.Redis, c.Config.Memory.Collection)
		logx.Info("✅ Using Redis memory repository")
	case config.MemoryStorePostgres:
		memoryRepo = memoryinfra.NewPostgresMemoryRepository(c.DB, c.Config.Memory.Collection)
		logx.Info("✅ Using Postgres memory repository")
	default:
		memoryRepo = memoryinfra.NewNoopMemoryRepository()
		logx.Warn("⚠️  No memory repository configured, replies are stateless")
	}

	c.MemoryStore = memorysrv.NewStore(memoryRepo)
	c.Compactor = memorysrv.NewCompactor(
		c.Generator,
		c.Config.Memory.MaxChars,
		c.Config.Memory.MaxMessages,
		c.Config.Memory.KeepMessages,
	)

	// --- Domain Services ---
	c.ReplyService = chatsrv.NewReplyService(
		c.Transport,
		c.Generator,
		c.MemoryStore,
		c.Compactor,
		c.Config.Chat,
		c.Config.Memory.KeepMessages,
	)

	broadcastSvc, err := broadcastsrv.NewService(
		c.Transport,
		c.Generator,
		c.Assets,
		c.Config.Broadcast,
		c.Config.Chat,
	)
	if err != nil {
		logx.Fatalf("Failed to initialize broadcast service: %v", err)
	}
	c.BroadcastService = broadcastSvc

	// --- API Handlers ---
	c.MessageHandlers = chatapi.NewMessageHandlers(c.ReplyService)
	c.BroadcastHandlers = broadcastapi.NewBroadcastHandlers(c.BroadcastService)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewTokenMiddleware(c.Config.Auth)
}

// Cleanup closes all connections
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup completed")
}
