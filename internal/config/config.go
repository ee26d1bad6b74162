package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env           string
	ServerAddress string

	MongoURI string
	MongoDB  string
	DataDir  string

	JWTSecret     string
	JWTExpiration time.Duration

	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UseSSL        bool

	NATSUrl string

	GeocodingEndpoint string
	GeocodingAPIKey   string

	MaxUploadSizeMB int64
}

func Load() *Config {
	return &Config{
		Env:           getEnv("APP_ENV", "dev"),
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),

		MongoURI: getEnv("MONGODB_URI", ""),
		MongoDB:  getEnv("MONGODB_DB", "campuslink"),
		DataDir:  getEnv("DATA_DIR", "./data"),

		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration: 24 * time.Hour,

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Bucket:        getEnv("S3_BUCKET", "campuslink-uploads"),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		S3UseSSL:        getEnvBool("S3_USE_SSL", true),

		NATSUrl: getEnv("NATS_URL", ""),

		GeocodingEndpoint: getEnv("GEOCODING_ENDPOINT", "https://api.geoapify.com/v1/geocode"),
		GeocodingAPIKey:   getEnv("GEOCODING_API_KEY", ""),

		MaxUploadSizeMB: 10,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
