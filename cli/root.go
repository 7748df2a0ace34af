package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RussellBTech/RewatchTranscriptFetcher/config"
)

var (
	Version = "dev"
	Commit  = "none"
)

type Dependencies struct {
	Viper      *viper.Viper
	Config     *config.Root
	Logger     *logrus.Logger
	ConfigPath string
}

func NewRootCmd() *cobra.Command {
	deps := &Dependencies{
		Viper:  config.NewViper(),
		Logger: logrus.New(),
	}

	rootCmd := &cobra.Command{
		Use:           "rewatch",
		Short:         "Fetch Rewatch meeting transcripts into a text report",
		Long:          "Pages through a Rewatch channel's videos, newest first, and writes the transcripts of meetings created between two dates to a single text file.",
		Version:       fmt.Sprintf("%s (commit %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.load(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&deps.ConfigPath, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml, then ~/.config/rewatch/config.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("debug", false, "write per-page timings to the debug log")
	_ = deps.Viper.BindPFlag("pipeline.log_level", pf.Lookup("log-level"))
	_ = deps.Viper.BindPFlag("fetch.debug", pf.Lookup("debug"))

	rootCmd.AddCommand(NewFetchCmd(deps))
	rootCmd.AddCommand(NewConfigureCmd(deps))

	return rootCmd
}

func (d *Dependencies) load(cmd *cobra.Command) error {
	c, err := config.LoadWith(d.Viper, d.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	d.Config = c

	d.Logger.SetOutput(cmd.ErrOrStderr())
	lvl, err := logrus.ParseLevel(strings.TrimSpace(c.Pipeline.LogLvl))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if c.Fetch.Debug {
		lvl = logrus.DebugLevel
	}
	d.Logger.SetLevel(lvl)
	return nil
}
