package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Source kinds for the raffle snapshot
const (
	SourceChain   = "chain"
	SourceMongoDB = "mongodb"
	SourceSQLite  = "sqlite"
	SourceS3      = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	SQLite  SQLiteConfig
	S3      S3Config
	Source  SourceConfig
	Chain   ChainConfig
	Store   StoreConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Admin   AdminConfig
	Log     LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	Mode            string // gin mode: debug, release or test
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// SQLiteConfig holds the path of the local raffle database
type SQLiteConfig struct {
	Path string
}

// S3Config locates a published raffle snapshot object
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // optional, for S3 compatible stores
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// SourceConfig selects where raffle snapshots are read from
type SourceConfig struct {
	Kind string
}

// ChainConfig holds the raffle programme RPC settings
type ChainConfig struct {
	RPCURL            string
	ProgramID         string
	MockAPI           bool
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxRetries        int // retries of rate limited calls
}

// StoreConfig holds the raffle store settings
type StoreConfig struct {
	FetchTimeout    time.Duration
	RefreshInterval time.Duration // 0 disables periodic refresh
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// AuthConfig holds wallet sign-in configuration
type AuthConfig struct {
	ChallengeTTL time.Duration
}

// AdminConfig holds the bcrypt hash of the admin key
type AdminConfig struct {
	APIKeyHash string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string
	File       string
	ErrorFile  string
	Console    bool
	MaxSizeMB  int
	MaxBackups int
}

// LoadConfig loads configuration from config.yaml in path and the environment.
// Environment keys use underscores, e.g. MONGODB_URI or CHAIN_RPCURL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(path + "/config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceChain:
		if !c.Chain.MockAPI && c.Chain.ProgramID == "" {
			return errors.New("config: chain.programid is required unless chain.mockapi is set")
		}
	case SourceMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("config: mongodb.uri is required for the mongodb source")
		}
	case SourceSQLite:
		if c.SQLite.Path == "" {
			return errors.New("config: sqlite.path is required for the sqlite source")
		}
	case SourceS3:
		if c.S3.Bucket == "" || c.S3.Key == "" {
			return errors.New("config: s3.bucket and s3.key are required for the s3 source")
		}
	default:
		return errors.New("config: unknown source.kind " + c.Source.Kind)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.Mode", "release")
	v.SetDefault("Server.AllowedHosts", []string{"http://localhost:3000"})
	v.SetDefault("Server.ShutdownTimeout", 5*time.Second)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "raffle-explorer")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("SQLite.Path", "raffles.db")
	v.SetDefault("S3.Bucket", "")
	v.SetDefault("S3.Key", "raffles/snapshot.yaml")
	v.SetDefault("S3.Region", "us-east-1")
	v.SetDefault("S3.Endpoint", "")
	v.SetDefault("S3.AccessKeyID", "")
	v.SetDefault("S3.SecretAccessKey", "")
	v.SetDefault("S3.PathStyle", false)
	v.SetDefault("Source.Kind", SourceChain)
	v.SetDefault("Chain.RPCURL", "https://api.mainnet-beta.solana.com")
	v.SetDefault("Chain.ProgramID", "2gPKWB9obxygRWPxEbA1ZHexUsQNHMH7EZ71WER8cc61")
	v.SetDefault("Chain.MockAPI", false)
	v.SetDefault("Chain.RequestsPerSecond", 5.0)
	v.SetDefault("Chain.Timeout", 15*time.Second)
	v.SetDefault("Chain.MaxRetries", 3)
	v.SetDefault("Store.FetchTimeout", 30*time.Second)
	v.SetDefault("Store.RefreshInterval", time.Duration(0))
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("Auth.ChallengeTTL", 5*time.Minute)
	v.SetDefault("Admin.APIKeyHash", "")
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.File", "")
	v.SetDefault("Log.ErrorFile", "")
	v.SetDefault("Log.Console", true)
	v.SetDefault("Log.MaxSizeMB", 100)
	v.SetDefault("Log.MaxBackups", 5)
}
