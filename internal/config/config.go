package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Content ContentConfig `yaml:"content"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" env:"JOURNAL_LOG_LEVEL"`
	Format string `yaml:"format" default:"console"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"The Journal"`
	Description string `yaml:"description" default:"Posts, comments and the occasional spotlight"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600" env:"JOURNAL_PORT"`
}

type StorageConfig struct {
	// One of "memory", "file", "sqlite" or "s3".
	Backend string `yaml:"backend" default:"file" env:"JOURNAL_STORAGE_BACKEND"`
	// Namespace key the snapshot is stored under.
	Key string `yaml:"key" default:"journal.posts"`
	// One of "none", "gzip" or "zstd".
	Compression string `yaml:"compression" default:"none"`

	Dir        string   `yaml:"dir" default:"./data"`
	SQLitePath string   `yaml:"sqlite_path" default:"./journal.db"`
	S3         S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" env:"JOURNAL_S3_BUCKET"`
	Endpoint        string `yaml:"endpoint" env:"JOURNAL_S3_ENDPOINT"`
	Region          string `yaml:"region" default:"auto"`
	AccessKeyID     string `yaml:"access_key_id" env:"JOURNAL_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"JOURNAL_S3_SECRET_ACCESS_KEY"`
}

type ContentConfig struct {
	InitialViews int `yaml:"initial_views" default:"0"`
	// Bodies longer than this many bytes are kept out of the listing representation.
	FullContentThreshold int    `yaml:"full_content_threshold" default:"4096"`
	ExcerptLength        int    `yaml:"excerpt_length" default:"160"`
	SpotlightLimit       int    `yaml:"spotlight_limit" default:"3"`
	DefaultSort          string `yaml:"default_sort" default:"recent"`
	DefaultOrder         string `yaml:"default_order" default:"desc"`
	SyntaxTheme          string `yaml:"syntax_theme" default:"gruvbox"`
	Seed                 bool   `yaml:"seed" default:"true"`
	// "classic" or "mmark".
	MarkdownRenderer string `yaml:"markdown_renderer" default:"classic"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
	// "ed25519" verifies a signed challenge; "header" trusts identity headers and is for development only.
	Type       string `yaml:"type" default:"ed25519"`
	HeaderName string `yaml:"header_name" default:"Authorization"`
	PublicKey  string `yaml:"public_key" env:"ED25519_PUBKEY"`

	Owner OwnerConfig `yaml:"owner"`
}

// OwnerConfig is the identity granted to a request with a valid signature.
type OwnerConfig struct {
	ID     string `yaml:"id" default:"admin"`
	Name   string `yaml:"name" default:"Admin"`
	Avatar string `yaml:"avatar"`
	Role   string `yaml:"role" default:"admin"`
}

var AppConfig *Config

// LoadConfig reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config, os.LookupEnv)

	AppConfig = config
	return config, nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	walkFields(config, "default", func(field reflect.Value, name, value string) {
		setField(field, name, value, true)
	})
}

// applyEnv overrides fields tagged `env:"NAME"` when NAME is set.
func applyEnv(config interface{}, lookup func(string) (string, bool)) {
	walkFields(config, "env", func(field reflect.Value, name, key string) {
		if value, ok := lookup(key); ok {
			setField(field, name, value, false)
		}
	})
}

func walkFields(config interface{}, tag string, fn func(field reflect.Value, name, tagValue string)) {
	if config == nil {
		return
	}

	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			walkFields(field.Addr().Interface(), tag, fn)
			continue
		}

		tagValue := fieldType.Tag.Get(tag)
		if tagValue == "" {
			continue
		}

		fn(field, fieldType.Name, tagValue)
	}
}

func setField(field reflect.Value, name, value string, onlyEmptySlices bool) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if val, err := strconv.ParseBool(value); err == nil {
			field.SetBool(val)
		}
	case reflect.Int:
		if val, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(val)
		}
	case reflect.Float64:
		if val, err := strconv.ParseFloat(value, 64); err == nil {
			field.SetFloat(val)
		}
	case reflect.Slice:
		if onlyEmptySlices && field.Len() != 0 {
			return
		}
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
			for j, part := range parts {
				slice.Index(j).SetString(strings.TrimSpace(part))
			}
			field.Set(slice)
		}
	default:
		configLogger.Warn().
			Str("field_name", name).
			Str("field_type", field.Kind().String()).
			Msg("Unsupported field type for configured value")
	}
}
