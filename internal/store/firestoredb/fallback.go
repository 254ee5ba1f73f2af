package firestoredb

import (
	"fmt"
	"log"
	"sort"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/metrics"
)

// fetchWithFallback runs the indexed query and, when Firestore rejects it for
// a missing composite index, reruns the plain query and applies the filter
// and ordering in memory. Any other failure is a query failure.
func fetchWithFallback[T any](collection string, indexed, plain func() ([]T, error), keep func(T) bool, less func(a, b T) bool) ([]T, error) {
	out, err := indexed()
	if err == nil {
		return out, nil
	}
	if status.Code(err) != codes.FailedPrecondition {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrQueryFailure, collection, err)
	}

	log.Printf("Firestore: indexed query on %s failed, using unindexed fallback: %v", collection, err)
	metrics.QueryFallbacks.WithLabelValues(collection).Inc()

	all, err := plain()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrQueryFailure, collection, err)
	}

	kept := make([]T, 0, len(all))
	for _, v := range all {
		if keep == nil || keep(v) {
			kept = append(kept, v)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return less(kept[i], kept[j]) })
	return kept, nil
}
