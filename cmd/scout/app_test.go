package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/scout"
)

func TestExactArgsMarksUsageErrors(t *testing.T) {
	cmd := &cobra.Command{Use: "get"}
	validate := exactArgs(1)
	if err := validate(cmd, []string{"key"}); err != nil {
		t.Fatalf("correct arity rejected: %v", err)
	}
	err := validate(cmd, nil)
	if err == nil {
		t.Fatal("missing argument accepted")
	}
	var usage *usageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected usageError, got %T", err)
	}
}

func TestMaxArgsMarksUsageErrors(t *testing.T) {
	cmd := &cobra.Command{Use: "ls"}
	validate := maxArgs(1)
	if err := validate(cmd, nil); err != nil {
		t.Fatalf("zero args rejected: %v", err)
	}
	if err := validate(cmd, []string{"a", "b"}); err == nil {
		t.Fatal("excess args accepted")
	}
}

func TestMarshalRecordsRoundTrip(t *testing.T) {
	records := []backupRecord{
		{Key: "a", Flags: 1, Value: "one"},
		{Key: "b", Value: "two"},
	}
	for _, format := range []string{"json", "yaml"} {
		data, err := marshalRecords(records, format, false)
		if err != nil {
			t.Fatalf("marshal %s: %v", format, err)
		}
		parsed, err := unmarshalRecords(data, format)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", format, err)
		}
		if len(parsed) != 2 || parsed[0] != records[0] || parsed[1] != records[1] {
			t.Fatalf("%s round trip = %+v", format, parsed)
		}
	}
}

func TestMarshalRecordsRejectsUnknownFormat(t *testing.T) {
	_, err := marshalRecords(nil, "toml", false)
	if err == nil {
		t.Fatal("unknown format accepted")
	}
	var usage *usageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected usageError, got %T", err)
	}
}

func TestFormatValue(t *testing.T) {
	if got := formatValue("plain"); got != "plain" {
		t.Fatalf("string = %q", got)
	}
	if got := formatValue(nil); got != "" {
		t.Fatalf("nil = %q", got)
	}
	got := formatValue(map[string]any{"a": 1})
	if !strings.Contains(got, `"a": 1`) {
		t.Fatalf("object = %q", got)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand(nil)
	for _, name := range []string{"kv", "service", "acl", "run-once"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"api-addr", "api-scheme", "api-host", "api-port", "datacenter", "token", "timeout"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("persistent flag %q not registered", flag)
		}
	}
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv(scout.EnvHost, "env-host")
	root := newRootCommand(nil)
	if got := viper.GetString("api-host"); got != "env-host" {
		t.Fatalf("env binding = %q, want env-host", got)
	}
	if err := root.PersistentFlags().Set("api-host", "flag-host"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got := viper.GetString("api-host"); got != "flag-host" {
		t.Fatalf("flag did not win over env: got %q", got)
	}
}
