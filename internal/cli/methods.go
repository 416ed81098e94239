package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List supported calculation methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			for _, m := range domain.KnownMethods() {
				fmt.Fprintf(w, "  %-4d %s\n", int(m), m.Name())
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Default is %d (%s).\n", int(domain.DefaultMethod), domain.DefaultMethod.Name())
			return nil
		},
	}
}
