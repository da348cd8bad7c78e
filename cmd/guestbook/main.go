// Command guestbook posts to and reads a guestbook kept in memory, SQLite or
// DynamoDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacentio/guestbook/internal/config"
)

var (
	configFlag string
	rootCmd    = &cobra.Command{
		Use:           "guestbook",
		Short:         "Post to and read a threaded guestbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", os.Getenv("GUESTBOOK_CONFIG"), "YAML config file (env GUESTBOOK_CONFIG)")

	// post subcommand
	var name, message, replyTo string
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post an entry, or a reply with --reply-to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBook(cmd, func(a *app) error {
				return runPost(cmd.Context(), a.book, name, message, replyTo, cmd.OutOrStdout())
			})
		},
	}
	postCmd.Flags().StringVarP(&name, "name", "n", "", "Author name (blank posts as anon)")
	postCmd.Flags().StringVarP(&message, "message", "m", "", "Message text (required)")
	postCmd.Flags().StringVarP(&replyTo, "reply-to", "r", "", "ID of the entry to reply to")
	_ = postCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(postCmd)

	// thread subcommand
	rootCmd.AddCommand(&cobra.Command{
		Use:   "thread",
		Short: "Print every entry as a reply tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBook(cmd, func(a *app) error {
				return runThread(a.book, cmd.OutOrStdout())
			})
		},
	})

	// preview subcommand
	var limit int
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the newest top-level entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBook(cmd, func(a *app) error {
				return runPreview(a.book, limit, cmd.OutOrStdout())
			})
		},
	}
	previewCmd.Flags().IntVarP(&limit, "limit", "n", 4, "Number of entries to show")
	rootCmd.AddCommand(previewCmd)

	// secrets subcommand
	rootCmd.AddCommand(&cobra.Command{
		Use:   "secrets",
		Short: "List the easter eggs and how to find them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSecrets(cmd.OutOrStdout())
		},
	})

	// init-table subcommand
	var maxWait time.Duration
	initCmd := &cobra.Command{
		Use:   "init-table",
		Short: "Create the DynamoDB table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			return runInitTable(cmd.Context(), cfg, maxWait, cmd.OutOrStdout())
		},
	}
	initCmd.Flags().DurationVar(&maxWait, "wait", 2*time.Minute, "How long to wait for the table to become active")
	rootCmd.AddCommand(initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
