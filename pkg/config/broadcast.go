package config

import "time"

type AssetStoreKind string

const (
	AssetStoreLocal AssetStoreKind = "local"
	AssetStoreS3    AssetStoreKind = "s3"
	AssetStoreNone  AssetStoreKind = "none"
)

type BroadcastConfig struct {
	Timezone      string
	Pacing        time.Duration
	MaxMessageLen int
	PackBudget    int
	AssetStore    AssetStoreKind
	AssetsDir     string
	AssetsBucket  string
	AWSRegion     string
}

func loadBroadcastConfig() BroadcastConfig {
	return BroadcastConfig{
		Timezone:      getEnv("BROADCAST_TIMEZONE", "Asia/Kolkata"),
		Pacing:        getEnvDuration("BROADCAST_PACING", 1500*time.Millisecond),
		MaxMessageLen: getEnvInt("BROADCAST_MAX_MESSAGE_LEN", 2000),
		PackBudget:    getEnvInt("BROADCAST_PACK_BUDGET", 1900),
		AssetStore:    AssetStoreKind(getEnv("ASSET_STORE", "local")),
		AssetsDir:     getEnv("ASSETS_DIR", "./assets"),
		AssetsBucket:  getEnv("ASSETS_BUCKET", "hoshi-assets"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
	}
}
