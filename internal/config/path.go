package config

const (
	DefaultConfigPath = "config.yaml"
	ExampleConfigPath = "config.example.yaml"
)
