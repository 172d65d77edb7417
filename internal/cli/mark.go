package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/campaign-itinerary/internal/app"
	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/render"
)

func newMarkCmd(build Builder) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "mark <stop-id> <status>",
		Short: "Record attendance for a stop",
		Long: `Record attendance for a stop and print the refreshed day.

status is one of confirmed, declined, pending (or 참석, 불참, 미체크).
The stop id is the number shown by "itinerary show".
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 0 {
				return fmt.Errorf("stop id %q: %w", args[0], domain.ErrValidation)
			}
			status, err := domain.ParseAttendance(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, build, func(a *app.App) error {
				it, ack, err := a.Itineraries.SetAttendance(cmd.Context(), date, id, status)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "#%d → %s (%s)\n\n", ack.StopID, ack.Attendance.Label(), ack.Response)
				_, err = fmt.Fprint(out, render.Terminal(it))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day the stop is on, YYYY-MM-DD (default today)")
	return cmd
}
