// expdata organizes and analyzes DRFE-R experiment results.
//
// Usage:
//
//	expdata organize [--archive results.db] [--metrics-file expdata.prom]
//	expdata scalability [file]
//	expdata topology
//	expdata baseline [file]
//	expdata tables
//	expdata churn [file]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expdata/internal/config"
	"expdata/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	inputDir   string
	outputDir  string
	logLevel   string
	logFormat  string
}

// cfg is the resolved configuration of the running command.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "expdata",
	Short: "Organize and analyze DRFE-R experiment results",
	Long: "expdata loads the raw results of every experiment family, normalizes them,\n" +
		"aggregates them and writes CSV exports, JSON summaries, paper tables and a\n" +
		"master index.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringVar(&rootFlags.inputDir, "input-dir", "", "Directory holding the raw result files")
	pf.StringVar(&rootFlags.outputDir, "output-dir", "", "Directory receiving derived artifacts")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(scalabilityCmd)
	rootCmd.AddCommand(topologyCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(churnCmd)
	rootCmd.Version = version
}

// loadConfig layers defaults, the config file, the environment and flags,
// then installs the process logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c := config.Default()
	if rootFlags.configPath != "" {
		var err error
		if c, err = config.LoadFromPath(rootFlags.configPath); err != nil {
			return err
		}
	}
	c.ApplyEnv(os.LookupEnv)
	if rootFlags.inputDir != "" {
		c.InputDir = rootFlags.inputDir
	}
	if rootFlags.outputDir != "" {
		c.OutputDir = rootFlags.outputDir
	}
	if rootFlags.logLevel != "" {
		c.Logging.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Logging.Format = rootFlags.logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	logging.Init(logging.ParseLevel(c.Logging.Level), c.Logging.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
