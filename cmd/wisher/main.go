// main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/openai/openai-go/v3/option"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/ai/llm"
	aiopenai "github.com/hoshino-dev/hoshi/pkg/ai/providers/openai"
	"github.com/hoshino-dev/hoshi/pkg/broadcast"
	"github.com/hoshino-dev/hoshi/pkg/broadcast/broadcastsrv"
	"github.com/hoshino-dev/hoshi/pkg/chat/chatinfra"
	"github.com/hoshino-dev/hoshi/pkg/config"
	"github.com/hoshino-dev/hoshi/pkg/fsx"
	"github.com/hoshino-dev/hoshi/pkg/fsx/fsxlocal"
	"github.com/hoshino-dev/hoshi/pkg/fsx/fsxs3"
	"github.com/hoshino-dev/hoshi/pkg/logx"
)

// wisher is the one-shot broadcast runner, meant to be invoked from cron or
// a scheduler. It wires just enough of the stack to run a single broadcast
// and exits.
func main() {
	timeOfDay := flag.String("time", "", "time-of-day label (morning, noon, afternoon, evening, night); derived from the clock when empty")
	test := flag.Bool("test", false, "resolve everything but send nothing")
	targetID := flag.String("target-id", "", "restrict DMs to this member id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.LogLevel == "debug" {
		logx.SetLevel(logx.LevelDebug)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := buildService(ctx, cfg)
	if err != nil {
		logx.Fatalf("Failed to wire broadcast service: %v", err)
	}

	params := broadcast.NewRunParams()
	params.TimeOfDay = *timeOfDay
	params.Test = *test
	params.TargetID = *targetID

	outcome, err := svc.Run(ctx, params)
	if err != nil {
		logx.Errorf("Broadcast failed: %v", err)
		os.Exit(1)
	}

	logx.Infof("Broadcast finished in %s: %d delivered, %d skipped, %d failed",
		outcome.FinishedAt.Sub(outcome.StartedAt).Round(time.Second),
		outcome.Delivered, outcome.Skipped, len(outcome.Failed))
}

func buildService(ctx context.Context, cfg *config.Config) (*broadcastsrv.Service, error) {
	transport := chatinfra.NewRestTransport(cfg.Chat.BaseURL, cfg.Chat.BotToken)

	providerOpts := []option.RequestOption{}
	if cfg.LLM.BaseURL != "" {
		providerOpts = append(providerOpts, option.WithBaseURL(cfg.LLM.BaseURL))
	}
	provider := aiopenai.NewOpenAIProvider(cfg.LLM.APIKey, providerOpts...)

	llmOpts := []llm.Option{llm.WithModel(cfg.LLM.Model)}
	if cfg.LLM.MaxTokens > 0 {
		llmOpts = append(llmOpts, llm.WithMaxTokens(cfg.LLM.MaxTokens))
	}
	gen := genx.New(llm.NewClient(provider),
		genx.WithAttempts(cfg.LLM.RetryAttempts),
		genx.WithRetryDelay(cfg.LLM.RetryDelay),
		genx.WithLLMOptions(llmOpts...),
	)

	assets, err := buildAssetStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return broadcastsrv.NewService(transport, gen, assets, cfg.Broadcast, cfg.Chat)
}

func buildAssetStore(ctx context.Context, cfg *config.Config) (fsx.FileSystem, error) {
	switch cfg.Broadcast.AssetStore {
	case config.AssetStoreS3:
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Broadcast.AWSRegion))
		if err != nil {
			return nil, err
		}
		return fsxs3.NewS3FileSystem(s3.NewFromConfig(awsCfg), cfg.Broadcast.AssetsBucket, ""), nil
	case config.AssetStoreLocal:
		return fsxlocal.NewLocalFileSystem(cfg.Broadcast.AssetsDir)
	default:
		return nil, nil
	}
}
