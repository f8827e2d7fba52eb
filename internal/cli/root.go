package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type rootFlags struct {
	port       string
	configPath string
	verbose    bool
	logJSON    bool
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "jeopardy-board",
		Short: "Buzz-in quiz board with host judging, served over WebSocket",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), flags.verbose, flags.logJSON)
		},
		SilenceUsage: true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&flags.port, "port", "", "port to listen on, overrides the config file (env: JEOPARDY_PORT)")
	fs.StringVar(&flags.configPath, "config", "config/config.yaml", "path to YAML config (env: JEOPARDY_CONFIG)")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level (env: JEOPARDY_VERBOSE)")
	fs.BoolVar(&flags.logJSON, "log-json", false, "log JSON instead of console output (env: JEOPARDY_LOG_JSON)")
	bindEnv(fs)

	cmd.AddCommand(NewStartCmd(&flags.configPath, &flags.port))
	cmd.AddCommand(NewMigrateCmd(&flags.configPath))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

// bindEnv lets JEOPARDY_* environment variables fill flags not given on the command line.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix("JEOPARDY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func setupLogging(out io.Writer, verbose, jsonOutput bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if jsonOutput {
		zerologlog.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	if out == nil {
		out = os.Stderr
	}
	zerologlog.Logger = zerologlog.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
}
