package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefinitionTypeInventoryItem = "DestinyInventoryItemLiteDefinition"
	DefinitionTypeActivity      = "DestinyActivityDefinition"
)

type Config struct {
	Bungie      BungieConfig    `mapstructure:"bungie"`
	Languages   []string        `mapstructure:"languages" validate:"min=2,unique,dive,required,bungie_language"`
	Definitions Definitions     `mapstructure:"definitions" validate:"min=1,unique=Name,dive"`
	Overrides   OverridesConfig `mapstructure:"overrides"`
	Output      OutputConfig    `mapstructure:"output"`
	Publish     PublishConfig   `mapstructure:"publish"`
	Database    DatabaseConfig  `mapstructure:"database"`
}

type BungieConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	ManifestPath    string        `mapstructure:"manifest_path" validate:"required,startswith=/"`
	APIKey          string        `mapstructure:"api_key" validate:"required"`
	RequestInterval time.Duration `mapstructure:"request_interval" validate:"gte=0"`
}

// DefinitionConfig names one manifest definition type and its category rule.
// A non-empty IncludeCategories switches the type to category filtering.
type DefinitionConfig struct {
	Name              string   `mapstructure:"name" validate:"required"`
	IncludeCategories []uint32 `mapstructure:"include_categories"`
	ExcludeCategories []uint32 `mapstructure:"exclude_categories"`
}

type OverridesConfig struct {
	File string `mapstructure:"file"`
}

type OutputConfig struct {
	File         string `mapstructure:"file" validate:"required"`
	MetadataFile string `mapstructure:"metadata_file"`
	YAMLFile     string `mapstructure:"yaml_file"`
	CatalogFile  string `mapstructure:"catalog_file" validate:"required"`
	Source       string `mapstructure:"source"`
}

type PublishConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Key          string `mapstructure:"key" validate:"required_with=Bucket"`
	Region       string `mapstructure:"region"`
	CacheSeconds int    `mapstructure:"cache_seconds" validate:"gte=0"`
}

// Enabled reports whether an S3 upload is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type DatabaseConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// Definition returns the configured definition type with the given name.
func (cfg Config) Definition(name string) (DefinitionConfig, bool) {
	for _, def := range cfg.Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return DefinitionConfig{}, false
}

// Definitions are definition types in processing order.
type Definitions []DefinitionConfig

// Names returns the definition type names in processing order.
func (defs Definitions) Names() []string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/d2glossary")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("bungie.base_url", "https://www.bungie.net")
	v.SetDefault("bungie.manifest_path", "/Platform/Destiny2/Manifest/")
	v.SetDefault("bungie.request_interval", 3*time.Second)
	v.SetDefault("languages", []string{"en", "zh-chs"})
	v.SetDefault("definitions", []map[string]any{
		{
			"name":               DefinitionTypeInventoryItem,
			"include_categories": []uint32{1, 20, 39, 40, 41, 42, 43, 59, 1112488720, 2088636411},
			"exclude_categories": []uint32{44, 1742617626},
		},
		{
			"name": DefinitionTypeActivity,
		},
	})
	v.SetDefault("overrides.file", "myself.json")
	v.SetDefault("output.file", "Destiny2_term.json")
	v.SetDefault("output.metadata_file", "")
	v.SetDefault("output.yaml_file", "")
	v.SetDefault("output.catalog_file", "item-list.json")
	v.SetDefault("output.source", "Bungie Destiny 2 Manifest")
	v.SetDefault("publish.s3.cache_seconds", 300)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "d2glossary")
	v.SetDefault("database.username", "user")

	// Secrets are bound to environment variables only (not from config file)
	if err := v.BindEnv("bungie.api_key", "BUNGIE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind BUNGIE_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "D2GLOSSARY_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind D2GLOSSARY_DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
