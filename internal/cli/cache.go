package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/campaign-itinerary/internal/app"
)

var errNoCache = errors.New("no geocode cache: set DATABASE_URL")

func newCacheCmd(build Builder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the Postgres geocode cache",
	}
	cmd.AddCommand(newCacheListCmd(build), newCachePruneCmd(build))
	return cmd
}

func newCacheListCmd(build Builder) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, build, func(a *app.App) error {
				if a.Cache == nil {
					return errNoCache
				}
				entries, err := a.Cache.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ADDRESS\tCOORDINATE\tRESOLVED")
				for _, e := range entries {
					coord := "-"
					if e.Found() {
						coord = e.Coordinate.String()
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Address, coord, e.ResolvedAt.Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}
}

func newCachePruneCmd(build Builder) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cache entries resolved longer ago than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return withApp(cmd, build, func(a *app.App) error {
				if a.Cache == nil {
					return errNoCache
				}
				n, err := a.Cache.DeleteBefore(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age beyond which entries are removed")
	return cmd
}
