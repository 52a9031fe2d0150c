package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/report"
)

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonOut, _ := cmd.Flags().GetBool(flagJSON)
			if jsonOut {
				return report.JSON(out, map[string]string{"version": version})
			}

			_, err := fmt.Fprintf(out, "transfersim version %s\n", version)

			return err
		},
	}
}
