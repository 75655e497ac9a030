package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/handler"
	"github.com/philipp01105/treelog/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Root().Error("%s", err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	// loadSystem returns the System described by --config, or the default
	// one (root writing to stdout) when no file is given.
	loadSystem := func() (*logger.System, error) {
		if configPath == "" {
			return logger.Default(), nil
		}
		cfg, err := logger.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		return cfg.NewSystem()
	}

	rootCmd := &cobra.Command{
		Use:           "treelog",
		Short:         "Hierarchical logging CLI",
		Long:          "treelog emits messages through a configured logger hierarchy and inspects it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	// log
	logCmd := &cobra.Command{
		Use:   "log [flags] MESSAGE [ARG...]",
		Short: "Emit a message through a named logger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("logger")
			level, _ := cmd.Flags().GetString("level")
			silence, _ := cmd.Flags().GetString("silence")

			sys, err := loadSystem()
			if err != nil {
				return err
			}
			defer sys.Close()

			switch silence {
			case "":
			case "all":
				sys.Silence(true)
			case "console":
				sys.Silence(false)
			default:
				return fmt.Errorf("unknown silence mode %q", silence)
			}

			rest := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				rest = append(rest, a)
			}
			return sys.GetLogger(name).Log(level, args[0], rest...)
		},
	}
	logCmd.Flags().StringP("logger", "l", logger.RootName, "Logger name")
	logCmd.Flags().String("level", "INFO", "Level name or index")
	logCmd.Flags().String("silence", "", "Silence mode: all or console")
	rootCmd.AddCommand(logCmd)

	// levels
	levelsCmd := &cobra.Command{
		Use:   "levels",
		Short: "List the level names, lowest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := loadSystem()
			if err != nil {
				return err
			}
			defer sys.Close()
			for i, n := range sys.Levels().Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, n)
			}
			return nil
		},
	}
	rootCmd.AddCommand(levelsCmd)

	// tree
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Show registered loggers with their effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := loadSystem()
			if err != nil {
				return err
			}
			defer sys.Close()
			out := cmd.OutOrStdout()
			for _, name := range append([]string{logger.RootName}, sys.Loggers()...) {
				l := sys.GetLogger(name)
				level := l.EffectiveLevelName()
				if l.Level() == core.Unset {
					level += " (inherited)"
				}
				var names []string
				for _, h := range l.EffectiveHandlers() {
					names = append(names, handler.Describe(h))
				}
				fmt.Fprintf(out, "%s\tlevel=%s propagate=%t handlers=[%s]\n",
					name, level, l.Propagate(), strings.Join(names, ", "))
			}
			return nil
		},
	}
	rootCmd.AddCommand(treeCmd)

	return rootCmd
}
