// # internal/ui/cli/cli.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"camelize/internal/core/config"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

type globalOptions struct {
	configPath string
	verbose    bool
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalOptions
	root := &cobra.Command{
		Use:           "camelize",
		Short:         "Rename snake_case identifiers in TypeScript to camelCase when it is provably safe",
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to config file (default ./"+config.DefaultPath+" when present)")
	root.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newConvertCmd(&g))
	root.AddCommand(newWatchCmd(&g))
	root.AddCommand(newHistoryCmd(&g))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "camelize v%s\n", versionString)
		},
	}
}

// loadConfig resolves the config file and rewrites its paths relative to the file's
// directory. The returned root anchors relative glob matching.
func loadConfig(path string) (cfg *config.Config, cfgPath, root string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", "", err
	}
	if path == "" {
		if _, statErr := os.Stat(config.DefaultPath); statErr == nil {
			path = config.DefaultPath
		}
	}
	cfg, err = config.LoadOrDefault(path)
	if err != nil {
		return nil, "", "", err
	}
	root = cwd
	if path != "" {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil, "", "", absErr
		}
		path = abs
		root = filepath.Dir(abs)
	}
	config.ResolvePaths(cfg, root)
	return cfg, path, root, nil
}
