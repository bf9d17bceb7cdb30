// Package doctor runs diagnostic checks on the local setup.
package doctor

import (
	"context"
	"sync"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check's output.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result groups the items a single check produced under its name.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check reports on one part of the setup. Run never returns an error;
// failures are items with StatusFail.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs the checks concurrently, since the server check can wait on
// the network, and returns results in the order the checks were given.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Go(func() { results[i] = c.Run(ctx) })
	}
	wg.Wait()
	return results
}

// Summary counts items by status across results.
func Summary(results []Result) (passed, warned, failed int) {
	counts := map[Status]int{}
	for _, r := range results {
		for _, item := range r.Items {
			counts[item.Status]++
		}
	}
	return counts[StatusPass], counts[StatusWarn], counts[StatusFail]
}
