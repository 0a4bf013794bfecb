// Package ssl supplies the SSL material installed on the driver's submission
// server and the client-side contexts the submission RPC client uses to
// reach it over HTTPS.
package ssl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/sparkctl/sparkctl/internal/submit"
)

const (
	sslVolumeName  = "sparkctl-ssl"
	sslMountDir    = "/var/run/secrets/sparkctl-ssl"
	caCertKey      = "ca.crt"
	clientCertKey  = "tls.crt"
	clientKeyKey   = "tls.key"
	envSslEnabled  = "SPARKCTL_SSL_ENABLED"
	envSslCertDir  = "SPARKCTL_SSL_CERT_DIR"
)

// NoopProvider returns an empty SslBundle; used when no SSL files are
// configured and the submission server is reached over plain HTTP.
type NoopProvider struct{}

func (NoopProvider) Bundle(ctx context.Context, appID, namespace string, selectors submit.Selectors) (submit.SslBundle, error) {
	return submit.SslBundle{Options: submit.SslOptions{Enabled: false, Scheme: "http"}}, nil
}

// StaticFileProvider reads CA/client certificate/client key files from disk
// and builds the Secret, Volume/VolumeMount/Env, and client-side TLS
// contexts the rest of the submission pipeline needs: the driver Pod mounts
// the Secret and reports SPARKCTL_SSL_ENABLED/SPARKCTL_SSL_CERT_DIR, while
// the RPC client dials the driver using the same CA pool and an optional
// client certificate.
type StaticFileProvider struct {
	CACertFile     string
	ClientCertFile string
	ClientKeyFile  string
}

func (p StaticFileProvider) Bundle(ctx context.Context, appID, namespace string, selectors submit.Selectors) (submit.SslBundle, error) {
	if p.CACertFile == "" && p.ClientCertFile == "" && p.ClientKeyFile == "" {
		return submit.SslBundle{Options: submit.SslOptions{Enabled: false, Scheme: "http"}}, nil
	}

	data := map[string][]byte{}
	trustPool := x509.NewCertPool()

	if p.CACertFile != "" {
		ca, err := os.ReadFile(p.CACertFile)
		if err != nil {
			return submit.SslBundle{}, fmt.Errorf("failed to read ca cert file %q: %w", p.CACertFile, err)
		}
		if !trustPool.AppendCertsFromPEM(ca) {
			return submit.SslBundle{}, fmt.Errorf("failed to parse ca cert file %q as PEM", p.CACertFile)
		}
		data[caCertKey] = ca
	}

	var clientCert tls.Certificate
	haveClientCert := p.ClientCertFile != "" && p.ClientKeyFile != ""
	if haveClientCert {
		cert, err := os.ReadFile(p.ClientCertFile)
		if err != nil {
			return submit.SslBundle{}, fmt.Errorf("failed to read client cert file %q: %w", p.ClientCertFile, err)
		}
		key, err := os.ReadFile(p.ClientKeyFile)
		if err != nil {
			return submit.SslBundle{}, fmt.Errorf("failed to read client key file %q: %w", p.ClientKeyFile, err)
		}
		pair, err := tls.X509KeyPair(cert, key)
		if err != nil {
			return submit.SslBundle{}, fmt.Errorf("failed to load client key pair: %w", err)
		}
		clientCert = pair
		data[clientCertKey] = cert
		data[clientKeyKey] = key
	}

	secretName := submit.SecretName(appID) + "-ssl"
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      secretName,
			Namespace: namespace,
			Labels:    selectors.Labels(),
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}

	clientSocketCtx := &tls.Config{RootCAs: trustPool} //nolint:gosec
	if haveClientCert {
		clientSocketCtx.Certificates = []tls.Certificate{clientCert}
	}

	bundle := submit.SslBundle{
		Options: submit.SslOptions{Enabled: true, Scheme: "https"},
		Secrets: []*corev1.Secret{secret},
		Volumes: []corev1.Volume{{
			Name:         sslVolumeName,
			VolumeSource: corev1.VolumeSource{Secret: &corev1.SecretVolumeSource{SecretName: secretName}},
		}},
		VolumeMounts: []corev1.VolumeMount{{
			Name: sslVolumeName, MountPath: sslMountDir, ReadOnly: true,
		}},
		Env: []corev1.EnvVar{
			{Name: envSslEnabled, Value: "true"},
			{Name: envSslCertDir, Value: sslMountDir},
		},
		ClientSocketCtx: clientSocketCtx,
		ClientTrustCtx:  trustPool,
	}
	return bundle, nil
}
