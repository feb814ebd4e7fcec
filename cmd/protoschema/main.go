package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"hexwake/server/internal/net/proto"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

// buildSchema reflects every message that crosses the websocket into a
// single oneOf document for client authors.
func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	messages := []any{
		&proto.ClientMessage{},
		&proto.Init{},
		&proto.PlayerJoined{},
		&proto.PlayerLeft{},
		&proto.NavPlan{},
		&proto.NavEnd{},
		&proto.Debug{},
	}
	variants := make([]*jsonschema.Schema, 0, len(messages))
	for _, msg := range messages {
		variant := reflector.Reflect(msg)
		variant.Version = ""
		variants = append(variants, variant)
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Hexwake Wire Protocol",
		Description: "Messages exchanged over /ws between clients and the room server.",
		OneOf:       variants,
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
