package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

func marshalRecords(records []backupRecord, format string, pretty bool) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		if pretty {
			return json.MarshalIndent(records, "", "  ")
		}
		return json.Marshal(records)
	case "yaml", "yml":
		return yaml.Marshal(records)
	default:
		return nil, &usageError{fmt.Errorf("unknown format %q", format)}
	}
}

func unmarshalRecords(data []byte, format string) ([]backupRecord, error) {
	var records []backupRecord
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse backup: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse backup: %w", err)
		}
	default:
		return nil, &usageError{fmt.Errorf("unknown format %q", format)}
	}
	return records, nil
}

func marshalPrettyJSON(doc any) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func readAllStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
