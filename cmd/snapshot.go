// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-snapshot/internal/chat"
	"github.com/naka-gawa/pr-snapshot/internal/config"
	"github.com/naka-gawa/pr-snapshot/internal/gateway"
	"github.com/naka-gawa/pr-snapshot/internal/report"
	"github.com/naka-gawa/pr-snapshot/internal/usecase"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Aggregates today's PR activity and delivers the report",
	Long: `Aggregates pull-request activity for the current UTC day across all
repositories of the authenticated user, renders the snapshot as markdown,
and posts it to the configured chat webhook (or prints it with --stdout).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}
		stdoutOnly, _ := cmd.Flags().GetBool("stdout")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}

		// One instant for the whole run. Every window boundary and age
		// classification derives from it, even if the run straddles midnight.
		now := time.Now().UTC()

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, cfg.GitHub.PageSize, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(githubGateway, logger, cfg.Workers.Repos, cfg.Workers.Reviews)

		snapshot, err := aggregator.Run(ctx, now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate snapshot: %v\n", err)
			os.Exit(1)
		}
		for _, repo := range snapshot.SkippedRepos {
			fmt.Fprintf(os.Stderr, "Warning: repository %s was skipped\n", repo)
		}

		text := report.Render(snapshot)

		if stdoutOnly || cfg.Chat.WebhookURL == "" {
			fmt.Println(text)
			return
		}
		sink := chat.NewWebhook(cfg.Chat.WebhookURL, logger)
		if err := sink.Deliver(ctx, text); err != nil {
			// The snapshot was still produced; delivery failure is not fatal.
			fmt.Fprintf(os.Stderr, "Failed to deliver report: %v\n", err)
			fmt.Println(text)
		}
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().Bool("stdout", false, "Print the report instead of delivering it")
}
