package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparkctl/sparkctl/cmd/sparkctl/handlers"
)

// Submit returns the command that submits an application to run as a
// driver Pod in a Kubernetes cluster.
//
// Required flags:
//
//	--master: the Kubernetes API server address, as k8s://host:port
//	  (may instead come from the config file's master key)
//	--name: the application name
//
// Optional flags:
//
//	--config, -c: path to a YAML configuration file (spec.md §6 keys)
//	--class: the application's main class, for Java/Scala-style resources
//	--conf: repeated key=value Spark properties forwarded to the driver
//	--env: repeated key=value environment variables forwarded to the driver
//	--files: repeated local file path bundled alongside the submission
//	--jars: repeated local jar path bundled alongside the submission
//	--driver-labels: CSV of extra key=value labels applied to every resource
//	--debug: verbose, human-readable logging
//	--wait: block until the driver Pod terminates, then exit with its status
//
// Examples:
//
//	# Submit a jar already inside the driver image to a cluster reachable at 10.0.0.1:6443
//	sparkctl submit --master k8s://10.0.0.1:6443 --name myapp local:///opt/spark/jars/myapp.jar
//
//	# Submit using a config file and wait for completion
//	sparkctl submit -c submit.yaml --name myapp --wait local:///opt/spark/jars/myapp.jar
func Submit() *cobra.Command {
	var (
		configPath      string
		masterURL       string
		appName         string
		mainClass       string
		driverLabels    string
		sparkProperties []string
		environment     []string
		localFiles      []string
		localJars       []string
		debug           bool
		wait            bool
	)

	cmd := &cobra.Command{
		Use:   "submit [flags] <app-resource> [app-args...]",
		Short: "Submit an application as a driver pod",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseKeyValueList(sparkProperties)
			if err != nil {
				return fmt.Errorf("invalid --conf value: %w", err)
			}
			env, err := parseKeyValueList(environment)
			if err != nil {
				return fmt.Errorf("invalid --env value: %w", err)
			}

			return handlers.Submit(cmd.Context(), handlers.SubmitOptions{
				ConfigPath:      configPath,
				MasterURL:       masterURL,
				AppName:         appName,
				MainClass:       mainClass,
				MainResourceURI: args[0],
				AppArgs:         args[1:],
				LocalFiles:      localFiles,
				LocalJars:       localJars,
				DriverLabelsCSV: driverLabels,
				SparkProperties: props,
				Environment:     env,
				Debug:           debug,
				Wait:            wait,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&masterURL, "master", "", "Kubernetes API server address, as k8s://host:port")
	cmd.Flags().StringVar(&appName, "name", "", "Application name")
	cmd.Flags().StringVar(&mainClass, "class", "", "Application main class")
	cmd.Flags().StringVar(&driverLabels, "driver-labels", "", "CSV of additional key=value labels for driver resources")
	cmd.Flags().StringArrayVar(&sparkProperties, "conf", nil, "Spark property as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&environment, "env", nil, "Driver environment variable as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&localFiles, "files", nil, "Local file path bundled alongside the submission (repeatable)")
	cmd.Flags().StringArrayVar(&localJars, "jars", nil, "Local jar path bundled alongside the submission (repeatable)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable verbose, human-readable logging")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the driver pod to terminate before exiting")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// parseKeyValueList turns a list of "key=value" flag values into a map,
// the same CSV-free form --conf and --env accept since their values may
// themselves contain commas.
func parseKeyValueList(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, val, ok := splitKeyValue(v)
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", v)
		}
		out[key] = val
	}
	return out, nil
}

func splitKeyValue(s string) (key, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
