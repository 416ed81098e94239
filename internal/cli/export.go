package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gfarooqi/prayersync-sub001/internal/services"
)

func newExportCmd() *cobra.Command {
	var (
		flagFrom   string
		flagDays   int
		flagOutput string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export prayer times as an iCalendar document",
		Long:  "Build an ICS document covering a range of days and write it to stdout or a file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := flagCoordinate()
			if err != nil {
				return err
			}
			method, err := flagCalcMethod()
			if err != nil {
				return err
			}
			if flagDays < 1 {
				return fmt.Errorf("days must be >= 1")
			}
			if max := loadedConfig.Export.MaxDays; flagDays > max {
				flagDays = max
			}

			eng, err := buildEngine(loadedConfig)
			if err != nil {
				return err
			}
			defer eng.close()

			ctx := cmd.Context()
			var export services.Export
			if flagFrom != "" {
				start, perr := parseDateFlag(flagFrom)
				if perr != nil {
					return perr
				}
				export, err = eng.cal.BuildCalendarRange(ctx, coord, method, start, flagDays)
			} else {
				export, err = eng.cal.BuildCalendar(ctx, coord, method, time.Now(), flagDays)
			}
			if err != nil {
				return err
			}
			if export.Degraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: some days use offline fallback times")
			}

			if flagOutput == "" || flagOutput == "-" {
				fmt.Fprint(cmd.OutOrStdout(), export.ICS)
				return nil
			}
			if err := os.WriteFile(flagOutput, []byte(export.ICS), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", flagOutput, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", flagOutput)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFrom, "from", "", "First civil date YYYY-MM-DD (default: today at the coordinate)")
	cmd.Flags().IntVar(&flagDays, "days", 7, "Number of days to export")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "-", "Output file, or - for stdout")

	return cmd
}
