package inventory

import (
	"context"
	"fmt"
	"time"

	"podsync/internal/logger"
	"podsync/internal/services/printify"

	"golang.org/x/time/rate"
)

// Decision is what a product needs after comparing it with live availability.
type Decision string

const (
	DecisionNoChange       Decision = "no-change"
	DecisionRestockOnly    Decision = "restock-only"
	DecisionDisableOnly    Decision = "disable-only"
	DecisionProviderSwitch Decision = "provider-switch"
)

// State is the terminal state of a product within a pass.
type State string

const (
	StateNoChange       State = "no-change"
	StateSwitchApplied  State = "provider-switch-applied"
	StateDisableApplied State = "disable-applied"
	StateRestockApplied State = "restock-applied"
	StateSkipped        State = "skipped-due-to-error"
	// StateDryRun is reported instead of an applied state when writes are off.
	StateDryRun State = "dry-run"
)

// Pacer spaces products apart. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer returns a limiter that releases one Wait per interval, starting one
// interval after construction. Waiting after each product therefore keeps the
// starts of consecutive products at least interval apart. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	l := rate.NewLimiter(rate.Every(interval), 1)
	l.Allow()
	return l
}

// Plan is the computed action for one product.
type Plan struct {
	Decision  Decision
	Payload   *printify.UpdatePayload
	Alternate *Alternate
	// Disabled and Restocked hold the ids of variants whose status flips.
	Disabled  []int
	Restocked []int
}

type ProductResult struct {
	ProductID     string
	Title         string
	Decision      Decision
	State         State
	ProviderID    int
	NewProviderID int
	Disabled      []int
	Restocked     []int
	Err           error
}

// Report summarises one reconciliation pass.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Results    []ProductResult
}

// Count returns how many products ended in the given state.
func (r *Report) Count(state State) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}

// Updated returns how many products received a successful write.
func (r *Report) Updated() int {
	return r.Count(StateSwitchApplied) + r.Count(StateDisableApplied) + r.Count(StateRestockApplied)
}

type Option func(*Reconciler)

func WithPacer(p Pacer) Option {
	return func(r *Reconciler) { r.pacer = p }
}

// WithDryRun computes plans without issuing any update.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) { r.dryRun = dryRun }
}

// WithProductIDs restricts a pass to the listed products.
func WithProductIDs(ids ...string) Option {
	return func(r *Reconciler) {
		if len(ids) == 0 {
			r.only = nil
			return
		}
		r.only = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			r.only[id] = struct{}{}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// Reconciler drives a pass over every store product, one product at a time.
type Reconciler struct {
	catalog  Catalog
	selector *FailoverSelector
	logger   *logger.Logger
	pacer    Pacer
	dryRun   bool
	only     map[string]struct{}
	now      func() time.Time
}

func NewReconciler(catalog Catalog, logger *logger.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		catalog:  catalog,
		selector: NewFailoverSelector(catalog, logger),
		logger:   logger,
		pacer:    NewPacer(time.Second),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs one pass. Only a failure to list the store products aborts
// it; every other failure is contained to the product it happened on. The
// returned report is non-nil whenever the listing succeeded, even if the
// context ends the pass early.
func (r *Reconciler) Reconcile(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: r.now(), DryRun: r.dryRun}
	r.logger.Info("Starting inventory synchronization pass (dry-run: %t)", r.dryRun)

	products, err := r.catalog.GetStoreProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve store products: %w", err)
	}
	r.logger.Info("Found %d products to check", len(products))

	for _, product := range products {
		if r.only != nil {
			if _, ok := r.only[product.ID]; !ok {
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			report.FinishedAt = r.now()
			return report, err
		}

		report.Results = append(report.Results, r.ReconcileProduct(ctx, product))

		if err := r.pacer.Wait(ctx); err != nil {
			report.FinishedAt = r.now()
			return report, pacerError(ctx, err)
		}
	}

	report.FinishedAt = r.now()
	r.logger.Info("Inventory synchronization finished: %d products, %d updated, %d skipped",
		len(report.Results), report.Updated(), report.Count(StateSkipped))
	return report, nil
}

// ReconcileProduct plans and applies the change for a single product. It
// issues at most one update.
func (r *Reconciler) ReconcileProduct(ctx context.Context, product printify.Product) ProductResult {
	log := r.logger.With("product_id", product.ID)
	log.Info("Checking stock for '%s'", product.Title)

	result := ProductResult{
		ProductID:  product.ID,
		Title:      product.Title,
		ProviderID: product.PrintProviderID,
	}

	plan, err := r.Plan(ctx, product)
	if err != nil {
		log.Warn("Could not fetch current catalog stock data for provider %d: %v", product.PrintProviderID, err)
		result.State = StateSkipped
		result.Err = err
		return result
	}

	result.Decision = plan.Decision
	result.Disabled = plan.Disabled
	result.Restocked = plan.Restocked
	if plan.Alternate != nil {
		result.NewProviderID = plan.Alternate.ProviderID
	}

	if plan.Decision == DecisionNoChange {
		log.Info("Stock levels are already in sync")
		result.State = StateNoChange
		return result
	}

	if r.dryRun {
		log.Info("Dry run: would apply %s", plan.Decision)
		result.State = StateDryRun
		return result
	}

	if err := r.catalog.UpdateProduct(ctx, product.ID, *plan.Payload); err != nil {
		log.Error("Failed to update product: %v", err)
		result.State = StateSkipped
		result.Err = err
		return result
	}

	result.State = appliedState(plan.Decision)
	log.Info("Applied %s", plan.Decision)
	return result
}

// Plan compares the product with live availability at its current provider
// and decides what to write. Failover exploration happens here; nothing is
// written. An error means availability could not be fetched.
func (r *Reconciler) Plan(ctx context.Context, product printify.Product) (Plan, error) {
	catalog, err := r.catalog.GetProviderVariants(ctx, product.BlueprintID, product.PrintProviderID)
	if err != nil {
		return Plan{}, err
	}

	updates, disabled, restocked := classify(product.Variants, catalog.AvailableIDs())

	switch {
	case len(disabled) > 0:
		if alt, ok := r.selector.FindAlternateProvider(ctx, product, product.Variants); ok {
			providerID := alt.ProviderID
			return Plan{
				Decision:  DecisionProviderSwitch,
				Payload:   &printify.UpdatePayload{PrintProviderID: &providerID, Variants: toUpdates(alt.Variants)},
				Alternate: &alt,
				Disabled:  disabled,
				Restocked: restocked,
			}, nil
		}
		return Plan{
			Decision:  DecisionDisableOnly,
			Payload:   &printify.UpdatePayload{Variants: updates},
			Disabled:  disabled,
			Restocked: restocked,
		}, nil

	case len(restocked) > 0:
		return Plan{
			Decision:  DecisionRestockOnly,
			Payload:   &printify.UpdatePayload{Variants: updates},
			Restocked: restocked,
		}, nil

	default:
		return Plan{Decision: DecisionNoChange}, nil
	}
}

// classify computes the new enabled flag of every variant. Enabled variants
// missing from availability are disabled; disabled ones that are available
// again are re-enabled.
func classify(variants []printify.Variant, available map[int]struct{}) (updates []printify.VariantUpdate, disabled, restocked []int) {
	updates = make([]printify.VariantUpdate, 0, len(variants))
	for _, v := range variants {
		_, isAvailable := available[v.ID]
		enabled := v.IsEnabled

		switch {
		case v.IsEnabled && !isAvailable:
			enabled = false
			disabled = append(disabled, v.ID)
		case !v.IsEnabled && isAvailable:
			enabled = true
			restocked = append(restocked, v.ID)
		}

		updates = append(updates, printify.VariantUpdate{ID: v.ID, Price: v.Price, IsEnabled: enabled})
	}
	return updates, disabled, restocked
}

// pacerError reports a failed Wait as a context error. The limiter refuses up
// front when the next slot falls after the context deadline, before ctx.Err()
// is set.
func pacerError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func toUpdates(variants []printify.Variant) []printify.VariantUpdate {
	out := make([]printify.VariantUpdate, len(variants))
	for i, v := range variants {
		out[i] = printify.VariantUpdate{ID: v.ID, Price: v.Price, IsEnabled: v.IsEnabled}
	}
	return out
}

func appliedState(d Decision) State {
	switch d {
	case DecisionProviderSwitch:
		return StateSwitchApplied
	case DecisionDisableOnly:
		return StateDisableApplied
	default:
		return StateRestockApplied
	}
}
