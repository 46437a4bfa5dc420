package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cruz1171975/amazonenrichment/internal/jsonvalue"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// readInput reads a file, or stdin when path is "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func isStructured(path string) bool {
	return isYAML(path) || strings.EqualFold(filepath.Ext(path), ".json")
}

// loadDocument decodes a JSON or YAML document into plain Go values
func loadDocument(cmd *cobra.Command, path string) (any, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	var doc any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
		}
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON %s: %w", path, err)
	}
	return doc, nil
}

// loadValue decodes a document keeping JSON member order
func loadValue(cmd *cobra.Command, path string) (jsonvalue.Value, error) {
	if isYAML(path) {
		doc, err := loadDocument(cmd, path)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.FromAny(doc), nil
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := jsonvalue.Parse(data)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("failed to parse JSON %s: %w", path, err)
	}
	return v, nil
}

// loadInto decodes a JSON or YAML document into target via its JSON tags
func loadInto(cmd *cobra.Command, path string, target any) error {
	doc, err := loadDocument(cmd, path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// productNameOf returns the product_name of a facts document, or ""
func productNameOf(doc any) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := obj["product_name"].(string)
	return strings.TrimSpace(name)
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeJSON writes v as indented JSON to the command output
func (a *app) writeJSON(cmd *cobra.Command, v any) error {
	text, err := encodeJSON(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return a.write(cmd, text)
}

// write sends text to --out, or to stdout when --out is unset.
// Files are written through a temporary sibling and renamed into place.
func (a *app) write(cmd *cobra.Command, text string) error {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if a.out == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	if _, err := os.Stat(a.out); err == nil && !a.force {
		return fmt.Errorf("refusing to overwrite existing file: %s (use --force)", a.out)
	}
	if dir := filepath.Dir(a.out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := a.out + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, a.out)
}
