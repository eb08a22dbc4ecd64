package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/fparse/check"
	"github.com/gnolang/fparse/formatter"
	"github.com/gnolang/fparse/internal"
	tt "github.com/gnolang/fparse/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-check source files whenever they change",
	Long: `Watch the given directories (the current directory by default) and
re-check every source file that is written or created, until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := args
		if len(dirs) == 0 {
			dirs = []string{"."}
		}

		engine, config, err := check.New(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		engine.SetLogger(logger)
		applyIgnoreFlags(engine)

		out := cmd.OutOrStdout()
		engine.OnIssues(func(filename string, issues []tt.Issue) {
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s: ok\n", filename)
				return
			}
			sourceCode, err := internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				return
			}
			fmt.Fprint(out, formatter.GenerateFormattedIssue(issues, sourceCode))
		})

		if err := engine.StartWatching(dirs, config.Extensions); err != nil {
			return err
		}
		logger.Info("watching", zap.Strings("dirs", dirs))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		return engine.StopWatching()
	},
}

func init() {
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	watchCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}
