package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pgm-tools/internal/config"
	"github.com/ironsheep/pgm-tools/internal/monitoring"
	"github.com/ironsheep/pgm-tools/internal/pipeline"
	"github.com/ironsheep/pgm-tools/internal/server"
)

func main() {
	// Configure logging to stderr (stdout carries progress and MCP traffic)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	monitoring.SetDebug(config.DebugFromEnv())
	monitoring.Debugf("pgmtool v%s (built %s, commit %s)", config.Version, config.BuildTime, config.GitCommit)

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line args and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := pipeline.ExitOK
	root := newRootCommand(&code)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = root
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return pipeline.ExitUsage
	}
	return code
}

func newRootCommand(code *int) *cobra.Command {
	root := &cobra.Command{
		Use:   "pgmtool input output",
		Short: "PGM image processing tool",
		Long: `pgmtool reads a binary PGM (P5) image, applies the selected transforms
and writes the result as an 8-bit PGM.

Stages always run in the same order regardless of flag order:
decode, ASCII preview, statistics, invert, threshold, contrast stretch,
ASCII preview, encode.

Environment variables:
  ` + config.LogLevelEnv + `=debug    Enable debug logging`,
		Args:          cobra.ExactArgs(2),
		Version:       config.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(fmt.Sprintf("pgmtool %s\n  Build time: %s\n  Git commit: %s\n",
		config.Version, config.BuildTime, config.GitCommit))

	settings := config.Bind(root.Flags())
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := settings.Validate(); err != nil {
			return err
		}
		*code = pipeline.New(cmd.OutOrStdout(), cmd.ErrOrStderr()).Execute(args[0], args[1], settings.Options())
		return nil
	}

	root.AddCommand(newServeCommand(code))
	return root
}

func newServeCommand(code *int) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server on stdin/stdout",
		Long: `serve speaks the Model Context Protocol over stdio and exposes the
pgm_info, pgm_stats, pgm_ascii and pgm_process tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			monitoring.Debugf("MCP server starting")
			srv := server.New()
			if err := srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				monitoring.Logf("Server error: %v", err)
				*code = pipeline.ExitFailure
			}
			return nil
		},
	}
}
