package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
	Tags   Tags   `yaml:"tags"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Store struct {
	// BaseURL of the remote document store, e.g.
	// https://punchline-default-rtdb.firebaseio.com
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type Tags struct {
	// Match controls how candidate labels are compared against the
	// registry: "fold" (case-insensitive, the default) or "exact".
	Match string `yaml:"match"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Store.Timeout == 0 {
		config.Store.Timeout = 3 * time.Second
	}
	if config.Tags.Match == "" {
		config.Tags.Match = "fold"
	}

	return config, nil
}
