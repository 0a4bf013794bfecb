// Package handlers implements the business logic behind each CLI command.
// Commands parse and validate flags; handlers wire up the submission
// client's collaborators and run the actual work.
package handlers

import (
	"context"
	"fmt"

	"github.com/sparkctl/sparkctl/internal/config"
	"github.com/sparkctl/sparkctl/internal/k8sclient"
	"github.com/sparkctl/sparkctl/internal/logging"
	"github.com/sparkctl/sparkctl/internal/payload"
	"github.com/sparkctl/sparkctl/internal/rpc"
	"github.com/sparkctl/sparkctl/internal/ssl"
	"github.com/sparkctl/sparkctl/internal/submit"
)

// SubmitOptions carries every flag the submit command accepts.
type SubmitOptions struct {
	ConfigPath      string
	MasterURL       string
	AppName         string
	MainClass       string
	MainResourceURI string
	AppArgs         []string
	LocalFiles      []string
	LocalJars       []string
	DriverLabelsCSV string
	SparkProperties map[string]string
	Environment     map[string]string
	Debug           bool
	Wait            bool
}

// Submit loads configuration, wires up the Kubernetes client, SSL
// provider, and RPC client, and runs one application through the full
// submission protocol.
func Submit(ctx context.Context, opts SubmitOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(opts.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	masterURL, err := submit.ResolveMasterURL(cfg.Master)
	if err != nil {
		return err
	}

	client, err := k8sclient.New(k8sclient.Options{
		MasterURL:      masterURL,
		CACertFile:     cfg.CACertFile,
		ClientCertFile: cfg.ClientCertFile,
		ClientKeyFile:  cfg.ClientKeyFile,
	})
	if err != nil {
		return fmt.Errorf("failed to build kubernetes client: %w", err)
	}

	sslProvider := newSSLProvider(cfg)

	retries := submit.SubmissionClientRetriesNodePort
	if cfg.ExposeIngress {
		retries = submit.SubmissionClientRetriesIngress
	}
	rpcClient := rpc.NewClient(rpc.ClientOptions{
		RetriesPerEndpoint: retries,
		Logger:             logger,
	})

	orch := &submit.Orchestrator{
		Client:     client,
		Namespace:  cfg.Namespace,
		Config:     cfg,
		SSL:        sslProvider,
		RPC:        rpcClient,
		Encode:     payload.Encode,
		EncodeList: payload.EncodeList,
		Logger:     logger,
	}

	sparkProperties := mergeProperties(cfg.Properties, opts.SparkProperties)

	return orch.Submit(ctx, submit.SubmissionSpec{
		AppName:         opts.AppName,
		MainClass:       opts.MainClass,
		MainResourceURI: opts.MainResourceURI,
		AppArgs:         opts.AppArgs,
		LocalFiles:      opts.LocalFiles,
		LocalJars:       opts.LocalJars,
		DriverLabelsCSV: cfg.DriverLabels,
		SparkProperties: sparkProperties,
		Environment:     opts.Environment,
	})
}

// loadConfig reads the configuration file, if any, and overlays
// command-line flags that always take precedence.
func loadConfig(opts SubmitOptions) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.LoadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = &config.Config{
			UIPort:           config.DefaultUIPort,
			DriverPort:       config.DefaultDriverPort,
			BlockManagerPort: config.DefaultBlockManagerPort,
			Properties:       map[string]string{},
		}
	}

	if opts.MasterURL != "" {
		cfg.Master = opts.MasterURL
	}
	if cfg.Master == "" {
		return nil, fmt.Errorf("master is required: set --master or configure it in the config file")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if opts.DriverLabelsCSV != "" {
		cfg.DriverLabels = opts.DriverLabelsCSV
	}
	if opts.Wait {
		cfg.WaitForAppCompletion = true
	}

	return cfg, nil
}

func newSSLProvider(cfg *config.Config) submit.SSLProvider {
	if cfg.CACertFile == "" && cfg.ClientCertFile == "" && cfg.ClientKeyFile == "" {
		return ssl.NoopProvider{}
	}
	return ssl.StaticFileProvider{
		CACertFile:     cfg.CACertFile,
		ClientCertFile: cfg.ClientCertFile,
		ClientKeyFile:  cfg.ClientKeyFile,
	}
}

// mergeProperties layers flag-provided Spark properties over the config
// file's forwarded properties, with flags taking precedence.
func mergeProperties(fromConfig, fromFlags map[string]string) map[string]string {
	out := make(map[string]string, len(fromConfig)+len(fromFlags))
	for k, v := range fromConfig {
		out[k] = v
	}
	for k, v := range fromFlags {
		out[k] = v
	}
	return out
}
