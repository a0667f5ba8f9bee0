package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vigil-hq/vigil/pkg/audit"
	"vigil-hq/vigil/pkg/cli"
)

var auditFlags struct {
	db       string
	property string
	limit    int
	format   string
	before   string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the validation audit trail",
	Long: `Query archived validation outcomes.

Each property load archives one record per property: whether it was
accepted, the diagnostics raised, and the property-set version active
at the time.`,
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the newest validation records",
	Long: `Show the newest validation records across all properties.

Examples:
  # Last 20 records
  vigil audit recent --db /var/lib/vigil/audit.db

  # Records for one property, as JSON
  vigil audit recent --property ack-requests --format json`,
	RunE: auditRecent,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records older than a cutoff",
	Long: `Delete validation records created before the cutoff.

Examples:
  # Drop everything older than 30 days
  vigil audit prune --db /var/lib/vigil/audit.db --before 720h`,
	RunE: auditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditRecentCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditCmd.PersistentFlags().StringVar(&auditFlags.db, "db", "", "audit database path")
	auditRecentCmd.Flags().StringVar(&auditFlags.property, "property", "", "filter by property identifier")
	auditRecentCmd.Flags().IntVar(&auditFlags.limit, "limit", 20, "maximum records to show")
	auditRecentCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditPruneCmd.Flags().StringVar(&auditFlags.before, "before", "720h", "age cutoff (duration)")
}

func openAuditStore() (*audit.SQLiteStore, error) {
	if auditFlags.db == "" {
		return nil, fmt.Errorf("--db is required")
	}
	return audit.NewSQLiteStore(audit.SQLiteConfig{Path: auditFlags.db}, nil)
}

func auditRecent(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var records []*audit.Record
	if auditFlags.property != "" {
		records, err = store.ByProperty(ctx, auditFlags.property, auditFlags.limit)
	} else {
		records, err = store.Recent(ctx, auditFlags.limit)
	}
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	if auditFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}
	for _, record := range records {
		outcome := "accepted"
		if !record.Accepted {
			outcome = "REJECTED"
		}
		fmt.Printf("%s  %-30s %s  version=%s  diagnostics=%d\n",
			record.CreatedAt.Format(time.RFC3339),
			record.PropertyID,
			outcome,
			record.SetVersion,
			len(record.Diagnostics),
		)
		for _, d := range record.Diagnostics {
			fmt.Printf("    [%s] %s: %s\n", d.Code, d.Severity, d.Message)
		}
	}
	return nil
}

func auditPrune(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	age, err := time.ParseDuration(auditFlags.before)
	if err != nil {
		return fmt.Errorf("invalid --before duration: %w", err)
	}

	removed, err := store.Prune(cmd.Context(), time.Now().Add(-age))
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	fmt.Printf("Pruned %d record(s).\n", removed)
	return nil
}
