package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"intake-go/internal/app"
	"intake-go/internal/config"
	"intake-go/internal/intake"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an IntakeApp. The caller must defer
// app.Close(). operation identifies the CLI command being run (e.g. "Scan").
// The identity token is injected from the environment here so it never
// appears in the config file.
func newApp(operation string) (*app.IntakeApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.Identity.Token = os.Getenv("CHITTY_ID_TOKEN")

	a, err := app.NewIntakeApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Legal evidence intake pipeline",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Edit the [case] section before scanning, and export CHITTY_ID_TOKEN.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Case Tag:   %s\n", cfg.Case.CaseTag)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Archive:    %s\n", cfg.Archive.Type)
		fmt.Printf("Scan Roots: %d configured\n", len(cfg.ScanRoots))
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage archive encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate archive encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("setting up keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan [PATH...]",
	Short: "Scan directories for evidence",
	Long: `Scan runs the intake pipeline over the given directories, or over the
configured scan roots when no paths are given. Each eligible document is
assigned an identity, fingerprinted, classified, scored, and recorded in
the evidence ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		total, err := runScan(cmd.Context(), a, args)
		if err != nil {
			a.MarkFailure()
			return err
		}

		fmt.Printf("Processed: %d  Skipped: %d  Failed: %d\n", total.Processed, total.Skipped, total.Failed)
		// Per-document failures are logged and counted but do not fail the
		// run; only configuration problems produce a nonzero exit.
		if total.Failed > 0 {
			a.MarkFailure()
		}
		return nil
	},
}

func runScan(ctx context.Context, a *app.IntakeApp, args []string) (intake.ScanSummary, error) {
	if len(args) == 0 {
		return a.ScanAll(ctx)
	}
	var total intake.ScanSummary
	for _, arg := range args {
		summary, err := a.Scan(ctx, arg)
		if err != nil {
			return total, fmt.Errorf("scanning %s: %w", arg, err)
		}
		total.Processed += summary.Processed
		total.Skipped += summary.Skipped
		total.Failed += summary.Failed
	}
	return total, nil
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the evidence report",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GenerateReport")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.GenerateReport()
		if err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

// timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Manage the case timeline",
}

var timelineAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a timeline event",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		eventType, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")
		evidenceID, _ := cmd.Flags().GetString("evidence-id")
		docRef, _ := cmd.Flags().GetString("doc-ref")

		a, err := newApp("TimelineAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		event, err := a.AddTimelineEvent(date, eventType, description, evidenceID, docRef)
		if err != nil {
			a.MarkFailure()
			return fmt.Errorf("adding timeline event: %w", err)
		}

		fmt.Printf("Added timeline event #%d\n", event.ID)
		return nil
	},
}

var timelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List timeline events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("TimelineList")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.ListTimelineEvents(limit)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No timeline events recorded.")
			return nil
		}

		for _, e := range events {
			ref := ""
			if e.EvidenceID != "" {
				ref = "  evidence:" + e.EvidenceID
			}
			fmt.Printf("#%d  %s  %-12s  %s%s\n", e.ID, e.Date, e.EventType, e.Description, ref)
		}
		return nil
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Access archived evidence content",
}

var archiveGetCmd = &cobra.Command{
	Use:   "get FINGERPRINT",
	Short: "Retrieve archived content by fingerprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp("ArchiveGet")
		if err != nil {
			return err
		}
		defer a.Close()

		var passphrase string
		if a.ArchiveEncrypted() {
			passphrase, err = readPassphrase("Passphrase for private key: ")
			if err != nil {
				return err
			}
		}

		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := a.RetrieveContent(args[0], w, passphrase); err != nil {
			return fmt.Errorf("retrieving content: %w", err)
		}

		if output != "" {
			fmt.Fprintf(os.Stderr, "Content written to %s\n", output)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View intake operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No intake operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// timeline subcommands
	timelineCmd.AddCommand(timelineAddCmd)
	timelineCmd.AddCommand(timelineListCmd)
	timelineAddCmd.Flags().String("date", "", "Event date (YYYY-MM-DD)")
	timelineAddCmd.Flags().String("type", "", "Event type (e.g. FILING, HEARING)")
	timelineAddCmd.Flags().String("description", "", "Event description")
	timelineAddCmd.Flags().String("evidence-id", "", "Identity of a related evidence record")
	timelineAddCmd.Flags().String("doc-ref", "", "Document reference")
	timelineAddCmd.MarkFlagRequired("date")
	timelineAddCmd.MarkFlagRequired("type")
	timelineAddCmd.MarkFlagRequired("description")
	timelineListCmd.Flags().IntP("limit", "n", 100, "Maximum number of events to show")

	// archive subcommands
	archiveCmd.AddCommand(archiveGetCmd)
	archiveGetCmd.Flags().StringP("output", "o", "", "Write content to a file instead of stdout")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
