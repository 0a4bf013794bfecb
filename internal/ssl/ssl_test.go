package ssl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sparkctl/sparkctl/internal/submit"
)

func TestNoopProvider_ReturnsEmptyBundle(t *testing.T) {
	bundle, err := NoopProvider{}.Bundle(context.Background(), "myapp-1", "default", submit.Selectors{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bundle.Empty() {
		t.Errorf("expected empty bundle, got %+v", bundle)
	}
	if bundle.Scheme() != "http" {
		t.Errorf("expected http scheme, got %s", bundle.Scheme())
	}
}

func TestStaticFileProvider_BuildsSecretAndVolumes(t *testing.T) {
	dir := t.TempDir()
	ca := filepath.Join(dir, "ca.crt")
	caPEM, _, _ := generateTestCertPair(t)
	if err := os.WriteFile(ca, caPEM, 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	p := StaticFileProvider{CACertFile: ca}
	bundle, err := p.Bundle(context.Background(), "myapp-1700000000000", "default", submit.Selectors{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bundle.Empty() {
		t.Fatal("expected non-empty bundle")
	}
	if bundle.Scheme() != "https" {
		t.Errorf("expected https scheme, got %s", bundle.Scheme())
	}
	if len(bundle.Secrets) != 1 {
		t.Fatalf("expected one ssl secret, got %d", len(bundle.Secrets))
	}
	if string(bundle.Secrets[0].Data["ca.crt"]) != string(caPEM) {
		t.Errorf("unexpected ca cert contents: %s", bundle.Secrets[0].Data["ca.crt"])
	}
	if len(bundle.Volumes) != 1 || len(bundle.VolumeMounts) != 1 {
		t.Errorf("expected one volume and mount, got %+v / %+v", bundle.Volumes, bundle.VolumeMounts)
	}
	if bundle.ClientTrustCtx == nil {
		t.Error("expected a populated trust pool")
	}
}

func TestStaticFileProvider_IncludesClientCertWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	ca := filepath.Join(dir, "ca.crt")
	cert := filepath.Join(dir, "client.crt")
	key := filepath.Join(dir, "client.key")

	caPEM, certPEM, keyPEM := generateTestCertPair(t)
	if err := os.WriteFile(ca, caPEM, 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(cert, certPEM, 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(key, keyPEM, 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	p := StaticFileProvider{CACertFile: ca, ClientCertFile: cert, ClientKeyFile: key}
	bundle, err := p.Bundle(context.Background(), "myapp-1700000000000", "default", submit.Selectors{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.ClientSocketCtx == nil || len(bundle.ClientSocketCtx.Certificates) != 1 {
		t.Errorf("expected client socket context to carry the client certificate, got %+v", bundle.ClientSocketCtx)
	}
}

func TestStaticFileProvider_MissingFileErrors(t *testing.T) {
	p := StaticFileProvider{CACertFile: "/nonexistent/ca.crt"}
	if _, err := p.Bundle(context.Background(), "myapp-1", "default", submit.Selectors{}); err == nil {
		t.Fatal("expected error for missing ca file")
	}
}
