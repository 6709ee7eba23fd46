package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Analytics AnalyticsConfig
	Upload    UploadConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	ReportTTLSec int
}

type AuthConfig struct {
	SessionTTLHours int
	BcryptCost      int
}

type AnalyticsConfig struct {
	ClusterCount      int
	PredictionHorizon int
	LowPercentile     float64
	HighPercentile    float64
}

type UploadConfig struct {
	MaxFileSize  int
	MaxSubjects  int
	MaxSemesters int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/student-insight")

	viper.SetEnvPrefix("STUDENT_INSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 5242880)

	viper.SetDefault("sqlite.path", "./data/insight.db")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.reportTTLSec", 3600)

	viper.SetDefault("auth.sessionTTLHours", 24)
	viper.SetDefault("auth.bcryptCost", 10)

	viper.SetDefault("analytics.clusterCount", 3)
	viper.SetDefault("analytics.predictionHorizon", 1)
	viper.SetDefault("analytics.lowPercentile", 33)
	viper.SetDefault("analytics.highPercentile", 67)

	viper.SetDefault("upload.maxFileSize", 2097152)
	viper.SetDefault("upload.maxSubjects", 50)
	viper.SetDefault("upload.maxSemesters", 16)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
