package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/campaign-itinerary/internal/app"
	"github.com/pkordes/campaign-itinerary/internal/render"
)

func newShowCmd(build Builder) *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the day's stops in visiting order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, build, func(a *app.App) error {
				it, err := a.Itineraries.Day(cmd.Context(), date)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(it)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), render.Terminal(it))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the itinerary as JSON")
	return cmd
}
