package main

import (
	"fmt"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/app"
	"github.com/anonto42/bharat-link/backend/internal/middleware"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	"github.com/anonto42/bharat-link/backend/pkg/config"
	"github.com/anonto42/bharat-link/backend/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedctl",
		Short:         "Maintenance tasks for the Bharat Link feed",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newReconcileLikesCmd(), newPruneNotificationsCmd(), newIssueTokenCmd())
	return root
}

// withApp loads configuration, builds the application and closes it after fn.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newReconcileLikesCmd() *cobra.Command {
	var postID string
	cmd := &cobra.Command{
		Use:   "reconcile-likes",
		Short: "Recompute likesCount from like rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				fixed, err := a.Feed.ReconcileLikesCount(cmd.Context(), postID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "corrected %d post(s)\n", fixed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&postID, "post", "", "only reconcile this post id")
	return cmd
}

func newPruneNotificationsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune-notifications",
		Short: "Delete read notifications older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				if days <= 0 {
					days = a.Config.NotificationRetentionDays
				}
				deleted, err := a.Notifications.DeleteOldNotifications(cmd.Context(), days)
				if err != nil {
					return err
				}
				a.Log.Info("pruned notifications", zap.Int64("deleted", deleted), zap.Int("days", days))
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notification(s)\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention in days (default NOTIFICATION_RETENTION_DAYS)")
	return cmd
}

// newIssueTokenCmd signs a development token for an existing user. It only
// works with AUTH_PROVIDER=jwt.
func newIssueTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "issue-token <user-id>",
		Short: "Sign a JWT for a local user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				if a.Config.AuthProvider != "jwt" {
					return fmt.Errorf("issue-token requires AUTH_PROVIDER=jwt, got %q", a.Config.AuthProvider)
				}
				user, err := a.Users.GetUserByID(cmd.Context(), args[0])
				if err != nil {
					if repositories.IsNotFound(err) {
						return fmt.Errorf("user %s not found", args[0])
					}
					return err
				}
				token, err := middleware.NewJWTAuthenticator(a.Config.JWTSecret).IssueToken(user, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
