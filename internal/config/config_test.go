package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeTempConfig(t, "master: k8s://cluster.example:6443\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Namespace != "default" {
		t.Errorf("expected default namespace, got %q", cfg.Namespace)
	}
	if cfg.UIPort != DefaultUIPort {
		t.Errorf("expected default UI port %d, got %d", DefaultUIPort, cfg.UIPort)
	}
	if cfg.DriverSubmitTimeout() != DefaultDriverSubmitTimeout {
		t.Errorf("expected default timeout, got %v", cfg.DriverSubmitTimeout())
	}
}

func TestLoadFile_MissingMaster(t *testing.T) {
	path := writeTempConfig(t, "namespace: spark\n")

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for missing master")
	}
}

func TestLoadFile_ForwardsUnrecognizedKeysAsProperties(t *testing.T) {
	path := writeTempConfig(t, `
master: k8s://cluster.example:6443
namespace: spark
spark.executor.memory: 2g
spark.executor.cores: "4"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Properties["spark.executor.memory"] != "2g" {
		t.Errorf("expected property forwarded, got %q", cfg.Properties["spark.executor.memory"])
	}
	if cfg.Properties["spark.executor.cores"] != "4" {
		t.Errorf("expected property forwarded, got %q", cfg.Properties["spark.executor.cores"])
	}
	if _, ok := cfg.Properties["master"]; ok {
		t.Error("recognized key 'master' should not appear in Properties")
	}
}

func TestLoadFile_ExplicitOverrides(t *testing.T) {
	path := writeTempConfig(t, `
master: k8s://cluster.example:6443
ui-port: 8080
expose-ingress: true
ingress-base-path: edge.example/spark
wait-for-app-completion: true
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.UIPort != 8080 {
		t.Errorf("expected ui-port 8080, got %d", cfg.UIPort)
	}
	if !cfg.ExposeIngress {
		t.Error("expected expose-ingress true")
	}
	if cfg.IngressBasePath != "edge.example/spark" {
		t.Errorf("unexpected ingress base path %q", cfg.IngressBasePath)
	}
	if !cfg.WaitForAppCompletion {
		t.Error("expected wait-for-app-completion true")
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
