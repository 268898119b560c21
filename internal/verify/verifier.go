// Package verify orchestrates citation verification: it fans citations
// out across a bounded worker pool, walks each one down its source
// chain, checks quoted excerpts against source text, and assembles the
// final report. Verification never fails a run; every fault degrades to
// a manual-review entry.
package verify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ndlegal/citecheck/internal/cache"
	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/sources"
	"github.com/ndlegal/citecheck/internal/worker"
)

// Verifier runs citations through their source chains. Sources are held
// in priority order; the first that answers definitively wins.
type Verifier struct {
	srcs    []sources.Source
	byID    map[string]sources.Source
	store   *cache.Store
	cfg     model.VerifyConfig
	workers int
	verbose bool
}

// New creates a Verifier. srcs must be in priority order; store must not
// be nil (use a memory-backed store when persistence is off).
func New(srcs []sources.Source, store *cache.Store, cfg model.VerifyConfig, workers int, verbose bool) *Verifier {
	byID := make(map[string]sources.Source, len(srcs))
	for _, s := range srcs {
		byID[s.ID()] = s
	}
	return &Verifier{
		srcs:    srcs,
		byID:    byID,
		store:   store,
		cfg:     cfg,
		workers: workers,
		verbose: verbose,
	}
}

type verifyJob struct {
	idx  int
	cite model.Citation
	v    *Verifier
}

func (j *verifyJob) Execute(ctx context.Context) worker.Result {
	if j.v.cfg.CitationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.v.cfg.CitationTimeout)
		defer cancel()
	}
	return &verifyResult{idx: j.idx, res: j.v.verifyOne(ctx, j.cite)}
}

type verifyResult struct {
	idx int
	res model.VerificationResult
}

func (r *verifyResult) Index() int { return r.idx }

type citeKey struct {
	kind model.Kind
	norm string
}

// Verify resolves every citation and returns one result per input, in
// input order. Distinct citations are verified once; every occurrence
// shares the outcome but keeps its own position. Never returns fewer
// results than citations: slots abandoned by the run deadline come back
// as manual-review entries.
func (v *Verifier) Verify(ctx context.Context, cites []model.Citation) []model.VerificationResult {
	if len(cites) == 0 {
		return nil
	}

	if v.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.RunTimeout)
		defer cancel()
	}

	var unique []model.Citation
	slot := make(map[citeKey]int)
	for _, c := range cites {
		k := citeKey{c.Kind, c.Normalized}
		if _, ok := slot[k]; !ok {
			slot[k] = len(unique)
			unique = append(unique, c)
		}
	}
	v.logf("verifying %d citations (%d distinct)", len(cites), len(unique))

	pool := worker.NewPool(ctx, v.workers)
	pool.Start()
	for i, c := range unique {
		pool.Submit(&verifyJob{idx: i, cite: c, v: v})
	}
	completed := pool.Wait()

	byIdx := make([]*model.VerificationResult, len(unique))
	for _, r := range completed {
		vr := r.(*verifyResult)
		byIdx[vr.idx] = &vr.res
	}

	out := make([]model.VerificationResult, len(cites))
	for i, c := range cites {
		res := byIdx[slot[citeKey{c.Kind, c.Normalized}]]
		if res == nil {
			out[i] = manualReview(c, "verification timed out")
			continue
		}
		r := *res
		r.Citation = c
		out[i] = r
	}
	return out
}

// verifyOne walks the citation down its source chain. Verified and
// NotVerifiable stop the chain; a definitive miss and a source fault
// both advance to the next stage. Unavailable sources and sources that
// cannot resolve this kind are skipped entirely, counted neither as
// misses nor as faults.
func (v *Verifier) verifyOne(ctx context.Context, cite model.Citation) model.VerificationResult {
	if !cite.Kind.Verifiable() {
		return model.VerificationResult{
			Citation:  cite,
			Status:    model.StatusNotVerifiable,
			FetchedAt: time.Now().UTC(),
		}
	}

	var (
		missed int
		faults []string
	)
	for _, src := range v.srcs {
		if !src.Available() || !src.CanResolve(cite.Kind) {
			continue
		}
		if err := ctx.Err(); err != nil {
			faults = append(faults, err.Error())
			break
		}

		src := src
		res := v.store.GetOrResolve(ctx, src.ID(), cite.Normalized, func(ctx context.Context) model.VerificationResult {
			return src.Resolve(ctx, cite)
		})

		switch res.Status {
		case model.StatusVerified, model.StatusNotVerifiable:
			v.logf("%s: %s via %s", cite.Normalized, res.Status, src.ID())
			res.Citation = cite
			return res
		case model.StatusNotFound:
			missed++
		default:
			v.logf("%s: %s faulted: %s", cite.Normalized, src.ID(), res.Error)
			faults = append(faults, fmt.Sprintf("%s: %s", src.ID(), res.Error))
		}
	}

	switch {
	case len(faults) > 0:
		// Inconclusive: a stage that could have verified it faulted.
		return manualReview(cite, strings.Join(faults, "; "))
	case missed > 0:
		return model.VerificationResult{
			Citation:  cite,
			Status:    model.StatusNotFound,
			FetchedAt: time.Now().UTC(),
		}
	default:
		return manualReview(cite, "no verification sources available")
	}
}

func manualReview(cite model.Citation, reason string) model.VerificationResult {
	return model.VerificationResult{
		Citation:  cite,
		Status:    model.StatusManualReview,
		Error:     reason,
		FetchedAt: time.Now().UTC(),
	}
}

func (v *Verifier) logf(format string, args ...interface{}) {
	if v.verbose {
		fmt.Fprintf(os.Stderr, "citecheck: "+format+"\n", args...)
	}
}
