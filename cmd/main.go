package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"cardioscore/db"
	qhttp "cardioscore/http"
	"cardioscore/logging"
	"cardioscore/ml"
)

type ModelConfig struct {
	Name    string             `yaml:"name"`
	Type    string             `yaml:"type"`
	Path    string             `yaml:"path"`
	Metrics map[string]float64 `yaml:"metrics"`
}

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		CacheSize      int      `yaml:"cache_size"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log    logging.Config `yaml:"log"`
	Scaler struct {
		Path string `yaml:"path"`
	} `yaml:"scaler"`
	Models []ModelConfig `yaml:"models"`
}

func main() {
	// Look for config in root even if run from cmd/
	configPath := "config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = filepath.Join("..", "config.yaml")
	}

	config, err := loadConfig(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()

	audit := config.Database.Path != ""
	if audit {
		if err := db.InitDB(config.Database.Path); err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("database initialized", zap.String("path", config.Database.Path))
	}

	registry, artifactPaths, err := buildRegistry(config)
	if err != nil {
		logger.Fatal("failed to build model registry", zap.Error(err))
	}
	logger.Info("model registry built", zap.Int("models", registry.Len()))

	if audit {
		for _, model := range registry.Models() {
			if err := db.SaveModelMetrics(model.Name(), model.Metrics()); err != nil {
				logger.Warn("failed to record model metrics",
					zap.String("model", model.Name()), zap.Error(err))
			}
		}
	}

	watcher, err := ml.WatchArtifacts(artifactPaths, logger)
	if err != nil {
		logger.Warn("artifact watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds != 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}
	if config.Http.CacheSize != 0 {
		serverConfig.CacheSize = config.Http.CacheSize
	}
	serverConfig.Audit = audit

	server := qhttp.NewServer(serverConfig, registry, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// buildRegistry loads the shared scaler and every configured classifier
// and binds them into the process-wide adapter registry.
func buildRegistry(config *Config) (*ml.Registry, []string, error) {
	scaler, err := ml.LoadScaler(config.Scaler.Path)
	if err != nil {
		return nil, nil, err
	}

	schema := ml.HeartFeatureNames()
	paths := []string{config.Scaler.Path}
	models := make([]*ml.Model, 0, len(config.Models))
	for _, spec := range config.Models {
		classifier, err := ml.LoadClassifier(spec.Type, spec.Path)
		if err != nil {
			return nil, nil, err
		}
		model, err := ml.NewModel(spec.Name, classifier, scaler, schema, spec.Metrics)
		if err != nil {
			return nil, nil, err
		}
		models = append(models, model)
		paths = append(paths, spec.Path)
	}

	registry, err := ml.NewRegistry(models)
	if err != nil {
		return nil, nil, err
	}
	return registry, paths, nil
}
