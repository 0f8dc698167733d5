package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    int      `yaml:"port"`
		APIKeys []string `yaml:"apiKeys"`
	} `yaml:"server"`

	// Store selects the analysis persistence backend.
	// driver: file | mysql | postgres
	Store struct {
		Driver   string `yaml:"driver"`
		File     string `yaml:"file"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"store"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey            string `yaml:"apiKey"`
		Model             string `yaml:"model"`
		DeepResearchModel string `yaml:"deepResearchModel"`
	} `yaml:"openai"`
}

// Load reads the config.yaml file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "file"
	}
	if cfg.Store.File == "" {
		cfg.Store.File = "data/analyses.json"
	}
	return &cfg, nil
}

// MySQLDSN builds the MySQL connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Store.User,
		c.Store.Password,
		c.Store.Host,
		c.Store.Port,
		c.Store.Name,
	)
}

// PostgresDSN builds the Postgres connection string
func (c *Config) PostgresDSN() string {
	ssl := c.Store.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Store.Host,
		c.Store.Port,
		c.Store.User,
		c.Store.Password,
		c.Store.Name,
		ssl,
	)
}
