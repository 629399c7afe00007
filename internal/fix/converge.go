package fix

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// DefaultMaxIterations bounds Converge when the caller passes no limit.
const DefaultMaxIterations = 200

var (
	// ErrNoConvergence is returned when corrections are still produced
	// after the iteration limit.
	ErrNoConvergence = errors.New("autocorrect did not converge")
	// ErrInfiniteLoop is returned when a pass reproduces a source already
	// seen, e.g. two rules undoing each other.
	ErrInfiniteLoop = errors.New("autocorrect loop detected")
)

// Analyzer produces the corrections for one version of the source.
type Analyzer func(src []byte) ([]Edit, error)

// ConvergeResult reports a correction loop. Source is the last good text,
// also when an error stopped the loop.
type ConvergeResult struct {
	Source     []byte
	Iterations int // passes that changed the source
	Applied    int // edits applied over all passes
	Deferred   int // edits postponed because they overlapped another
}

// Converge analyses and corrects src until a pass yields no edits. Each
// pass applies the disjoint subset of its edits; overlapping ones are
// left for the next pass, which sees them again if they still apply.
func Converge(src []byte, analyse Analyzer, maxIter int) (*ConvergeResult, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	res := &ConvergeResult{Source: src}
	seen := map[[sha256.Size]byte]struct{}{sha256.Sum256(src): {}}

	for {
		edits, err := analyse(res.Source)
		if err != nil {
			return res, fmt.Errorf("pass %d: %w", res.Iterations+1, err)
		}
		if len(edits) == 0 {
			return res, nil
		}
		if res.Iterations == maxIter {
			return res, fmt.Errorf("%w after %d iterations", ErrNoConvergence, maxIter)
		}

		kept, dropped := SelectDisjoint(edits)
		out, err := Apply(res.Source, kept)
		if err != nil {
			return res, fmt.Errorf("pass %d: %w", res.Iterations+1, err)
		}
		res.Iterations++
		res.Applied += len(kept)
		res.Deferred += len(dropped)

		sum := sha256.Sum256(out)
		if _, ok := seen[sum]; ok {
			res.Source = out
			return res, fmt.Errorf("%w at iteration %d", ErrInfiniteLoop, res.Iterations)
		}
		seen[sum] = struct{}{}
		res.Source = out
	}
}
