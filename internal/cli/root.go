// Package cli implements the itinerary command-line tool: a terminal view of
// the day, attendance updates, geocode warm-up and geocode cache upkeep.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/campaign-itinerary/internal/app"
)

// Builder wires the application. It is called once per command run, after
// flags are parsed.
type Builder func(ctx context.Context) (*app.App, error)

// Version is printed by --version.
var Version = "dev"

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd(build Builder) *cobra.Command {
	root := &cobra.Command{
		Use:   "itinerary",
		Short: "campaign day itinerary from the schedule sheet",
		Long: `
itinerary reads the campaign schedule sheet, orders the day's stops by
time slot and proximity to the last visited stop, and records attendance
back to the sheet through the status endpoint.

Configuration is read from CONFIG_FILE and the environment, as for the
API server.
`,
		Version:      Version,
		SilenceUsage: true,
	}
	root.AddCommand(
		newShowCmd(build),
		newMarkCmd(build),
		newGeocodeCmd(build),
		newCacheCmd(build),
	)
	return root
}

// withApp builds the app, runs fn and closes the app.
func withApp(cmd *cobra.Command, build Builder, fn func(a *app.App) error) error {
	a, err := build(cmd.Context())
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	defer a.Close()
	return fn(a)
}
