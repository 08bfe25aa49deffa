// Package migrate drives the per-pair migration state machine: fetch a
// pair's metadata, resolve its category, compute the canonical
// destination, and skip, move, or record an error. Pairs come from a
// saved listing or a live bucket scan and are processed strictly one at
// a time.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/category"
	"github.com/tendant/label-store/pkg/labelstore/metrics"
	"github.com/tendant/label-store/pkg/labelstore/objectkey"
	"github.com/tendant/label-store/pkg/labelstore/pairing"
)

// Orchestrator runs migrations over an object store.
type Orchestrator struct {
	store   labelstore.Store
	table   *category.Table
	ids     category.IDTable
	logger  *slog.Logger
	metrics *metrics.Metrics
	dryRun  bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIDTable supplies the numeric label-ID translation table.
func WithIDTable(ids category.IDTable) Option {
	return func(o *Orchestrator) { o.ids = ids }
}

// WithDryRun makes runs log intended moves without touching storage.
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) { o.dryRun = dryRun }
}

// WithLogger sets the logger used for per-pair failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics publishes per-pair outcomes to the given metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator over the given store and category table.
func New(store labelstore.Store, table *category.Table, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		table:  table,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunListing migrates pairs taken from a saved bucket listing. Entries
// already at canonical keys are dropped before pairing.
func (o *Orchestrator) RunListing(ctx context.Context, listing string) (*Stats, error) {
	entries := pairing.FilterNonCompliant(pairing.ParseListing(listing))
	images, jsons := pairing.Separate(entries)
	return o.processAll(ctx, pairing.MatchPairs(images, jsons), false), nil
}

// RunScan migrates pairs found by scanning the live bucket for
// non-canonical keys.
func (o *Orchestrator) RunScan(ctx context.Context) (*Stats, error) {
	pairs, err := pairing.NewScanner(o.store).ScanNonCompliant(ctx)
	if err != nil {
		return nil, err
	}
	return o.processAll(ctx, pairs, false), nil
}

// RunReclassify reprocesses pairs sitting under the unclassified marker.
// Pairs whose labels still resolve to no category are counted as
// skipped rather than reclassified.
func (o *Orchestrator) RunReclassify(ctx context.Context) (*Stats, error) {
	pairs, err := pairing.NewScanner(o.store).ScanUnclassified(ctx)
	if err != nil {
		return nil, err
	}
	return o.processAll(ctx, pairs, true), nil
}

// ListViolations groups every non-canonical key under the storage type
// prefixes by violation type, plus percent-encoded keys found at the
// bucket root. Nothing is mutated.
func (o *Orchestrator) ListViolations(ctx context.Context) (map[objectkey.Violation][]string, error) {
	grouped := make(map[objectkey.Violation][]string)
	for _, st := range labelstore.StorageTypes() {
		infos, err := o.store.List(ctx, string(st)+"/", "")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s objects: %w", st, err)
		}
		for _, info := range infos {
			if v := objectkey.Classify(info.Key); v != objectkey.ViolationNone {
				grouped[v] = append(grouped[v], info.Key)
			}
		}
	}

	rootInfos, err := o.store.List(ctx, "", "/")
	if err != nil {
		return nil, fmt.Errorf("failed to list root objects: %w", err)
	}
	for _, info := range rootInfos {
		if objectkey.Classify(info.Key) == objectkey.ViolationEncodedRoot {
			grouped[objectkey.ViolationEncodedRoot] = append(grouped[objectkey.ViolationEncodedRoot], info.Key)
		}
	}
	return grouped, nil
}

func (o *Orchestrator) processAll(ctx context.Context, pairs []pairing.FilePair, reclassify bool) *Stats {
	stats := NewStats()
	for _, pair := range pairs {
		outcome := o.processPair(ctx, pair, reclassify)
		stats.Record(outcome)
		if o.metrics != nil {
			o.metrics.RecordPair(string(outcome))
		}
	}
	stats.Complete()
	return stats
}

// processPair runs one pair through the state machine and returns its
// outcome. Reads use the literal stored key for percent-encoded pairs
// while destinations are computed from the decoded key.
func (o *Orchestrator) processPair(ctx context.Context, pair pairing.FilePair, reclassify bool) Outcome {
	srcImage := pair.ImagePath
	if pair.OriginalImagePath != "" {
		srcImage = pair.OriginalImagePath
	}
	srcJSON := pair.JSONPath
	if pair.OriginalJSONPath != "" {
		srcJSON = pair.OriginalJSONPath
	}

	labels, err := o.fetchLabels(ctx, srcJSON)
	if err != nil {
		o.logger.Error("reading pair metadata", "key", srcJSON, "err", err)
		return OutcomeError
	}

	cats := o.table.Resolve(labels)
	if len(cats) == 0 {
		cats = []category.Info{category.Default()}
	}
	cat := cats[0]

	if reclassify && cat.Category1 == category.Unclassified {
		return OutcomeSkipped
	}

	month := objectkey.ExtractMonth(pair.ImagePath)
	dstImage := objectkey.CalculateNewPath(pair.ImagePath, month, cat)
	if objectkey.IsCorrectLocation(srcImage, dstImage) {
		return OutcomeSkipped
	}
	dstJSON := strings.TrimSuffix(dstImage, path.Ext(dstImage)) + ".json"

	success := OutcomeMigrated
	if reclassify {
		success = OutcomeReclassified
	}

	if o.dryRun {
		fmt.Printf("[DRY-RUN] Would migrate: %s -> %s\n", srcImage, dstImage)
		fmt.Printf("[DRY-RUN] Would migrate: %s -> %s\n", srcJSON, dstJSON)
		return success
	}

	if err := o.moveObject(ctx, srcImage, dstImage); err != nil {
		o.logger.Error("moving image", "src", srcImage, "dst", dstImage, "err", err)
		return OutcomeError
	}
	if err := o.moveObject(ctx, srcJSON, dstJSON); err != nil {
		o.logger.Error("moving metadata", "src", srcJSON, "dst", dstJSON, "err", err)
		return OutcomeError
	}
	return success
}

func (o *Orchestrator) fetchLabels(ctx context.Context, key string) ([]string, error) {
	rc, err := o.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return ExtractLabels(data, o.ids)
}

// moveObject is a copy-then-delete move that tolerates rerunning over a
// half-finished earlier attempt: a copy that already happened is not
// repeated, and a source already gone is fine as long as the
// destination exists.
func (o *Orchestrator) moveObject(ctx context.Context, src, dst string) error {
	srcExists, err := o.exists(ctx, src)
	if err != nil {
		return err
	}
	dstExists, err := o.exists(ctx, dst)
	if err != nil {
		return err
	}

	switch {
	case !srcExists && !dstExists:
		return fmt.Errorf("object %s missing from both source and destination", src)
	case !srcExists:
		return nil
	case !dstExists:
		if err := o.store.Copy(ctx, src, dst); err != nil {
			return err
		}
	}
	return o.store.Delete(ctx, src)
}

func (o *Orchestrator) exists(ctx context.Context, key string) (bool, error) {
	_, err := o.store.Stat(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, labelstore.ErrObjectNotFound) {
		return false, nil
	}
	return false, err
}
