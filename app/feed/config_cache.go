package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lysyi3m/newsdesk/app/news"
	"github.com/lysyi3m/newsdesk/app/textfmt"
	"gopkg.in/yaml.v3"
)

const defaultMaxItems = 20

type ConfigCache struct {
	importsDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(importsDir string) *ConfigCache {
	return &ConfigCache{
		importsDir: importsDir,
		cache:      make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.importsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.importsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		sourceName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(sourceName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Import source loaded", "source", sourceName, "enabled", config.Settings.Enabled, "city", config.City, "topic", config.Topic)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(sourceName string) (*Config, error) {
	configFile := cc.getConfigFilePath(sourceName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = sourceName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	if !filepath.IsAbs(config.Path) {
		config.Path = filepath.Join(cc.importsDir, config.Path)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(sourceName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[sourceName]
	if !ok {
		return nil, fmt.Errorf("import source with name '%s' not found", sourceName)
	}
	return config, nil
}

// GetConfigs returns every loaded source ordered by name.
func (cc *ConfigCache) GetConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, config := range cc.cache {
		configs = append(configs, config)
	}
	slices.SortFunc(configs, func(a, b *Config) int {
		return strings.Compare(a.Name, b.Name)
	})
	return configs
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.MaxItems == 0 {
		config.Settings.MaxItems = defaultMaxItems
	}

	// Topic names are matched case-insensitively
	if topic, err := news.ParseTopic(string(config.Topic)); err == nil {
		config.Topic = topic
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	requiredFields := map[string]string{
		"source name":    config.Name,
		"path":           config.Path,
		"city":           strings.TrimSpace(config.City),
		"publisher name": strings.TrimSpace(config.PublisherName),
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if !config.Topic.Valid() {
		return fmt.Errorf("invalid topic: '%s'", config.Topic)
	}

	if digits := textfmt.DigitsOnly(config.PublisherPhone); len(digits) != news.PhoneDigits {
		return fmt.Errorf("publisher phone must have %d digits", news.PhoneDigits)
	}

	if config.Settings.MaxItems < 0 {
		return fmt.Errorf("max items must be non-negative")
	}

	for i, filter := range config.Filters {
		if !validFilterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(sourceName string) string {
	return filepath.Join(cc.importsDir, sourceName+".yml")
}
