package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"podsync/internal/config"
	"podsync/internal/database"
	"podsync/internal/events"
	"podsync/internal/history"
	"podsync/internal/logger"
	"podsync/internal/models"
	"podsync/internal/services/printify"
	"podsync/internal/worker/processors"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// RunOptions selects which side effects of a pass the command wires in.
type RunOptions struct {
	Record  bool
	Publish bool
}

// PassRunner executes one pass. The default builds the production stack from
// the environment.
type PassRunner func(ctx context.Context, req processors.PassRequest, opts RunOptions) (*models.SyncRun, error)

type syncOptions struct {
	dryRun     bool
	productIDs []string
	RunOptions
}

// NewSyncCommand returns the root command of the one-shot sync binary.
func NewSyncCommand(run PassRunner) *cobra.Command {
	if run == nil {
		run = runFromEnv
	}
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "podsync-sync",
		Short: "Run one inventory reconciliation pass",
		Long: `Compares every store product against live catalog availability, moves
products whose variants went out of stock to a compatible print provider, and
disables the variants when no provider can take them.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := run(cmd.Context(), processors.PassRequest{
				Trigger:    models.SyncTriggerCLI,
				RequestID:  uuid.NewString(),
				DryRun:     opts.dryRun,
				ProductIDs: opts.productIDs,
			}, opts.RunOptions)
			if result != nil {
				RenderRun(cmd.OutOrStdout(), result)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "compute decisions without updating any product")
	cmd.Flags().StringSliceVar(&opts.productIDs, "product", nil, "only reconcile the given product ids (repeatable)")
	cmd.Flags().BoolVar(&opts.Record, "record", true, "store the run in the history database")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "publish per-product outcomes to kafka")

	return cmd
}

func runFromEnv(ctx context.Context, req processors.PassRequest, opts RunOptions) (*models.SyncRun, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidatePrintify(); err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	procCfg := processors.SyncProcessorConfig{
		Catalog: printify.NewClient(printify.Options{
			BaseURL:    cfg.Printify.BaseURL,
			APIToken:   cfg.Printify.APIToken,
			ShopID:     cfg.Printify.ShopID,
			Timeout:    cfg.Printify.Timeout,
			RetryCount: cfg.Printify.RetryCount,
			PageLimit:  cfg.Printify.PageLimit,
		}, log),
		ProductDelay: cfg.Sync.ProductDelay,
	}

	if opts.Record {
		db, err := database.New(cfg.DatabaseURL, database.Options{Driver: cfg.DatabaseDriver})
		if err != nil {
			return nil, err
		}
		defer db.Close()
		procCfg.Runs = history.NewRepository(db.DB)
	}
	if opts.Publish {
		outcomes := events.NewPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOutcomeTopic), log)
		defer outcomes.Close()
		procCfg.Outcomes = outcomes
	}

	return processors.NewSyncProcessor(procCfg, log).Run(ctx, req)
}

// RenderRun writes a per-product table followed by the run summary.
func RenderRun(w io.Writer, run *models.SyncRun) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"PRODUCT", "TITLE", "DECISION", "STATE", "PROVIDER", "ERROR"})

	for _, res := range run.Results {
		provider := strconv.Itoa(res.ProviderID)
		if res.NewProviderID != nil {
			provider = fmt.Sprintf("%d -> %d", res.ProviderID, *res.NewProviderID)
		}
		errText := ""
		if res.Error != nil {
			errText = *res.Error
		}
		t.AppendRow(table.Row{res.ProductID, res.Title, res.Decision, res.State, provider, errText})
	}
	t.Render()

	fmt.Fprintf(w, "status=%s products=%d updated=%d switched=%d disabled=%d restocked=%d skipped=%d dry_run=%t\n",
		run.Status, run.ProductCount, run.UpdatedCount, run.SwitchedCount,
		run.DisabledCount, run.RestockedCount, run.SkippedCount, run.DryRun)
	if run.Error != nil {
		fmt.Fprintf(w, "error: %s\n", *run.Error)
	}
}
