// Command generate-config writes an example config.yaml with every default filled in.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/the-journal/internal/config"
)

const header = `# The Journal configuration example
# Copy this file to config.yaml and customize as needed.
# Secrets are better kept in the environment (or .env):
#   ED25519_PUBKEY, JOURNAL_S3_ACCESS_KEY_ID, JOURNAL_S3_SECRET_ACCESS_KEY

`

// exampleConfig renders the defaults as YAML. Secrets are left empty.
func exampleConfig() ([]byte, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return append([]byte(header), data...), nil
}

func main() {
	output, err := exampleConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	outputFile := config.ExampleConfigPath
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		os.Stdout.Write(output)
		return
	}

	if err := os.WriteFile(outputFile, output, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
