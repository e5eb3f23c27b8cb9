package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	ListenAddr  string   `yaml:"listen_addr"`
	LogLevel    string   `yaml:"log_level"`
	LogJSON     bool     `yaml:"log_json"`
	CorsOrigins []string `yaml:"cors_origins"`
	// Session lifetime. Changing it requires a redeploy; there is no
	// token refresh.
	JwtTTLHours int `yaml:"jwt_ttl_hours"`
	S3          S3  `yaml:"s3"`
}

type S3 struct {
	Bucket                string `yaml:"bucket"`
	Region                string `yaml:"region"`
	BaseEndpoint          string `yaml:"base_endpoint"` // set for MinIO-style stores, empty for AWS
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	// Optional static credentials; the default AWS chain is used when empty.
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
}

func (c *Config) JwtKey() string {
	return c.private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	if c.Public.JwtTTLHours <= 0 {
		return 0 // token codec applies its default
	}
	return time.Duration(c.Public.JwtTTLHours) * time.Hour
}

func (c *Config) S3Credentials() (accessKeyID, secretAccessKey string) {
	return c.private.S3AccessKeyID, c.private.S3SecretAccessKey
}

func (c *Config) S3RequestTimeout() time.Duration {
	if c.Public.S3.RequestTimeoutSeconds <= 0 {
		return 0 // store applies its default
	}
	return time.Duration(c.Public.S3.RequestTimeoutSeconds) * time.Second
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
