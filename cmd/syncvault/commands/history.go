package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	vaulterrors "github.com/syncvault/syncvault/internal/errors"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 0, "show only the most recent N records")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past backup runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		records := cfg.History
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(records) {
			records = records[len(records)-limit:]
		}
		if len(records) == 0 {
			return vaulterrors.NewUserError(vaulterrors.ErrNoBackupsFound,
				"run a backup first with: syncvault run")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tTYPE\tFILES\tPROCESSED\tSKIPPED\tERRORS\tSIZE\tPATH")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
				rec.Timestamp, rec.Type, rec.FileCount,
				rec.Processed, rec.Skipped, rec.Errors,
				humanSize(rec.SizeBytes), rec.Path)
		}
		return w.Flush()
	},
}
