package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL     string
	clientTimeout time.Duration
	alertsStatus  string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running server",
	Long:  `Query a running server for sensor health, alert counts and the latest reading per location.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
		defer cancel()
		return printStatus(ctx, cmd.OutOrStdout(), NewClient(serverURL, clientTimeout))
	},
}

var alertsCmd = &cobra.Command{
	Use:     "alerts",
	Aliases: []string{"alert"},
	Short:   "List alerts on a running server",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
		defer cancel()
		return printAlerts(ctx, cmd.OutOrStdout(), NewClient(serverURL, clientTimeout), alertsStatus)
	},
}

var alertsSetCmd = &cobra.Command{
	Use:   "set <alert-id> <active|acknowledged|resolved>",
	Short: "Change the status of an alert",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
		defer cancel()
		if err := NewClient(serverURL, clientTimeout).UpdateAlertStatus(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
		return nil
	},
}

func printStatus(ctx context.Context, out io.Writer, c *Client) error {
	st, err := c.Status(ctx)
	if err != nil {
		return err
	}
	latest, err := c.LatestReadings(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Sensors active:    %d/%d (health %.0f%%)\n", st.SensorsActive, st.SensorsTotal, st.SystemHealth*100)
	fmt.Fprintf(out, "Active alerts:     %d (%d critical)\n", st.ActiveAlerts, st.CriticalAlerts)
	fmt.Fprintf(out, "Data points today: %d\n", st.DataPointsToday)
	fmt.Fprintf(out, "Last update:       %s\n\n", st.LastUpdate.Format(time.RFC3339))

	if len(latest) == 0 {
		fmt.Fprintln(out, "No readings.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "LOCATION\tSTATUS\tLEAD\tMERCURY\tARSENIC\tPH\tTIME")
	for _, r := range latest {
		m := r.Measurements
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.2f\t%s\n",
			r.Location, r.Status, m.Lead, m.Mercury, m.Arsenic, m.PH,
			r.Timestamp.Format(time.RFC3339))
	}
	return nil
}

func printAlerts(ctx context.Context, out io.Writer, c *Client, status string) error {
	alerts, err := c.Alerts(ctx, status)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tSEVERITY\tSTATUS\tLOCATION\tSUBSTANCE\tVALUE\tLIMIT\tTEAM")
	for _, a := range alerts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Severity, a.Status, a.Location, a.Substance, a.Value, a.Limit, a.Team)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{statusCmd, alertsCmd} {
		c.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of a running jaldrishti server")
		c.PersistentFlags().DurationVar(&clientTimeout, "timeout", 5*time.Second, "Request timeout")
	}
	alertsCmd.Flags().StringVar(&alertsStatus, "status", "", "Only show alerts with this status")
	alertsCmd.AddCommand(alertsSetCmd)

	rootCmd.AddCommand(statusCmd, alertsCmd)
}
