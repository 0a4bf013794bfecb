package submit

import (
	"fmt"
	"net/url"
	"strings"
)

// masterURLPrefix is the scheme every --master value must carry; it marks
// the value as a Kubernetes API server address rather than e.g. a Spark
// standalone or Mesos master URL.
const masterURLPrefix = "k8s://"

// ResolveMasterURL turns a "--master k8s://..." value into the bare
// https://host[:port] address client-go needs to build a rest.Config.
//
// Three forms are accepted after the k8s:// prefix:
//
//	k8s://host:port          -> https://host:port (scheme defaults to https)
//	k8s://http://host:port   -> http://host:port  (scheme carried through)
//	k8s://https://host:port  -> https://host:port
func ResolveMasterURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, masterURLPrefix) {
		return "", fmt.Errorf("%w: %q must start with %q", ErrInvalidMasterURL, raw, masterURLPrefix)
	}

	rest := strings.TrimPrefix(raw, masterURLPrefix)
	if rest == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidMasterURL, raw)
	}

	if !strings.Contains(rest, "://") {
		rest = "https://" + rest
	}

	u, err := url.Parse(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidMasterURL, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q: unsupported scheme %q", ErrInvalidMasterURL, raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidMasterURL, raw)
	}

	return u.Scheme + "://" + u.Host, nil
}
