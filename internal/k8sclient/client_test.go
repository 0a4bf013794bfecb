package k8sclient

import "testing"

func TestBuildRESTConfig_UsesMasterURLAndTLSFiles(t *testing.T) {
	cfg, err := buildRESTConfig(Options{
		MasterURL:      "https://cluster.example:6443",
		CACertFile:     "/tmp/ca.crt",
		ClientCertFile: "/tmp/client.crt",
		ClientKeyFile:  "/tmp/client.key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "https://cluster.example:6443" {
		t.Errorf("unexpected host: %s", cfg.Host)
	}
	if cfg.TLSClientConfig.CAFile != "/tmp/ca.crt" {
		t.Errorf("unexpected ca file: %s", cfg.TLSClientConfig.CAFile)
	}
	if cfg.TLSClientConfig.CertFile != "/tmp/client.crt" || cfg.TLSClientConfig.KeyFile != "/tmp/client.key" {
		t.Errorf("unexpected client cert/key: %+v", cfg.TLSClientConfig)
	}
}
