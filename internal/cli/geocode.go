package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/campaign-itinerary/internal/app"
	"github.com/pkordes/campaign-itinerary/internal/domain"
)

func newGeocodeCmd(build Builder) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Resolve the day's addresses ahead of time",
		Long: `Resolve every address on the day so later refreshes are answered
from the geocode cache. Prints the addresses that could not be located.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, build, func(a *app.App) error {
				if a.Memo == nil {
					return errors.New("geocoding is not configured: set GOOGLE_MAPS_API_KEY or GCP_PROJECT")
				}

				var bar *progressbar.ProgressBar
				if isatty.IsTerminal(os.Stderr.Fd()) {
					bar = progressbar.NewOptions(-1,
						progressbar.OptionSetDescription("Geocoding"),
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}
				report, err := a.Itineraries.Geocode(cmd.Context(), date, func(domain.Stop) {
					if bar != nil {
						_ = bar.Add(1)
					}
				})
				if bar != nil {
					_ = bar.Finish()
				}
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report.Total, report.FromSheet, report.Resolved, report.Unresolved)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to resolve, YYYY-MM-DD (default today)")
	return cmd
}

func printReport(w io.Writer, total, fromSheet, resolved int, unresolved []string) {
	fmt.Fprintf(w, "stops: %d, coordinates on sheet: %d, geocoded: %d, unresolved: %d\n",
		total, fromSheet, resolved, len(unresolved))
	for _, u := range unresolved {
		fmt.Fprintf(w, "  ? %s\n", u)
	}
}
