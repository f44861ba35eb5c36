package config

type MemoryStoreKind string

const (
	MemoryStoreRedis    MemoryStoreKind = "redis"
	MemoryStorePostgres MemoryStoreKind = "postgres"
	MemoryStoreNone     MemoryStoreKind = "none"
)

type MemoryConfig struct {
	Store        MemoryStoreKind
	Collection   string
	MaxChars     int
	MaxMessages  int
	KeepMessages int
}

func loadMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Store:        MemoryStoreKind(getEnv("MEMORY_STORE", "redis")),
		Collection:   getEnv("MEMORY_COLLECTION", "hoshi"),
		MaxChars:     getEnvInt("MEMORY_MAX_CHAR", 8000),
		MaxMessages:  getEnvInt("MEMORY_MAX_MESSAGES", 30),
		KeepMessages: getEnvInt("MEMORY_KEEP_MESSAGES", 10),
	}
}
