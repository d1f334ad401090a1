package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Name  string `yaml:"name" toml:"name"`
	Port  int    `yaml:"port" toml:"port"`
	Inner struct {
		Token string `yaml:"token" toml:"token"`
	} `yaml:"inner" toml:"inner"`
}

type checked struct {
	Port int `yaml:"port"`
}

func (c *checked) Validate() error {
	if c.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadYAMLAndTOML(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "s3cret")

	want := sample{Name: "viewer", Port: 8080}
	want.Inner.Token = "s3cret"

	tests := map[string]string{
		"config.yaml": "name: viewer\nport: 8080\ninner:\n  token: ${SAMPLE_TOKEN}\n",
		"config.toml": "name = \"viewer\"\nport = 8080\n[inner]\ntoken = \"${SAMPLE_TOKEN}\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			var got sample
			if err := Load(write(t, name, content), &got); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadRunsValidator(t *testing.T) {
	var c checked
	err := Load(write(t, "c.yaml", "port: 0\n"), &c)
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	def := write(t, "default.yaml", "name: fallback\n")
	var got sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &got); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if got.Name != "fallback" {
		t.Errorf("name = %q, want fallback", got.Name)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &got); err == nil {
		t.Error("expected error without default file")
	}
}
