package app

import (
	"strings"
	"time"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/utils"
)

type AuthMode string

const (
	AuthModeSimulated AuthMode = "simulated"
	AuthModeDelegated AuthMode = "delegated"
)

type StoreDriver string

const (
	StoreDriverMemory   StoreDriver = "memory"
	StoreDriverFile     StoreDriver = "file"
	StoreDriverRedis    StoreDriver = "redis"
	StoreDriverPostgres StoreDriver = "postgres"
)

type StorageMode string

const (
	StorageModeGCS   StorageMode = "gcs"
	StorageModeLocal StorageMode = "local"
)

type Config struct {
	Environment string
	ServiceName string
	Version     string

	Addr        string
	AppBaseURL  string
	CORSOrigins []string

	AuthMode       AuthMode
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	StoreDriver   StoreDriver
	StoreFilePath string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageMode StorageMode
	UploadDir   string
}

func LoadConfig(log *logger.Logger) Config {
	env := utils.GetEnv("ENV", "development", log)
	port := utils.GetEnv("PORT", "8080", log)

	corsRaw := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	var origins []string
	for _, o := range strings.Split(corsRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	accessTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)

	return Config{
		Environment: env,
		ServiceName: utils.GetEnv("SERVICE_NAME", "eaas-backend", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),

		Addr:        ":" + strings.TrimPrefix(port, ":"),
		AppBaseURL:  utils.GetEnv("APP_BASE_URL", "http://localhost:"+strings.TrimPrefix(port, ":"), log),
		CORSOrigins: origins,

		AuthMode:       AuthMode(strings.ToLower(utils.GetEnv("AUTH_MODE", string(AuthModeSimulated), log))),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: time.Duration(accessTTLSeconds) * time.Second,

		StoreDriver:   StoreDriver(strings.ToLower(utils.GetEnv("STORE_DRIVER", string(StoreDriverMemory), log))),
		StoreFilePath: utils.GetEnv("STORE_FILE_PATH", "data/store.json", log),
		RedisAddr:     utils.GetEnv("REDIS_ADDR", "localhost:6379", log),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:       utils.GetEnvAsInt("REDIS_DB", 0, log),

		StorageMode: StorageMode(strings.ToLower(utils.GetEnv("STORAGE_MODE", string(StorageModeLocal), log))),
		UploadDir:   utils.GetEnv("UPLOAD_DIR", "uploads", log),
	}
}

func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}
