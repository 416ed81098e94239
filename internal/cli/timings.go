package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

// timingsJSON is the JSON output structure of the timings command.
type timingsJSON struct {
	Date     string               `json:"date"`
	Timezone string               `json:"timezone"`
	Method   int                  `json:"method"`
	Times    domain.PrayerTimeSet `json:"times"`
}

func newTimingsCmd() *cobra.Command {
	var (
		flagDate string
		flagJSON bool
	)

	cmd := &cobra.Command{
		Use:   "timings",
		Short: "Show prayer times for a coordinate",
		Long:  "Resolve and print one day of prayer times, served from cache when fresh.",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := flagCoordinate()
			if err != nil {
				return err
			}
			method, err := flagCalcMethod()
			if err != nil {
				return err
			}

			eng, err := buildEngine(loadedConfig)
			if err != nil {
				return err
			}
			defer eng.close()

			ctx := cmd.Context()
			key, tz, err := eng.times.KeyFor(ctx, coord, time.Now(), method)
			if err != nil {
				return err
			}
			if flagDate != "" {
				date, perr := parseDateFlag(flagDate)
				if perr != nil {
					return perr
				}
				key.Date = date
			}

			times, err := eng.times.GetByKey(ctx, key)
			if err != nil {
				return err
			}

			if flagJSON {
				out, merr := json.MarshalIndent(timingsJSON{
					Date:     key.Date.String(),
					Timezone: string(tz),
					Method:   int(method),
					Times:    times,
				}, "", "  ")
				if merr != nil {
					return merr
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s  (%s)\n\n", key.Date, tz, method.Name())
			fmt.Fprintf(w, "  %-8s %s\n", "Fajr", times.Fajr)
			fmt.Fprintf(w, "  %-8s %s\n", "Sunrise", times.Sunrise)
			fmt.Fprintf(w, "  %-8s %s\n", "Dhuhr", times.Dhuhr)
			fmt.Fprintf(w, "  %-8s %s\n", "Asr", times.Asr)
			fmt.Fprintf(w, "  %-8s %s\n", "Maghrib", times.Maghrib)
			fmt.Fprintf(w, "  %-8s %s\n", "Isha", times.Isha)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDate, "date", "", "Civil date YYYY-MM-DD in the coordinate's zone (default: today there)")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")

	return cmd
}

// parseDateFlag parses a strict YYYY-MM-DD flag value.
func parseDateFlag(s string) (domain.CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return domain.CivilDate{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return domain.CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}
