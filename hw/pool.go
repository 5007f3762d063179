package hw

import "golang.org/x/sync/errgroup"

// Pool runs data-parallel work inside a macro-step. Jobs must write to
// disjoint data; Run returns once all of them are done, so the step goes on
// with a fully merged result whatever the scheduling of the jobs.
type Pool struct {
	limit int
}

func NewPool(workers int) *Pool {
	return &Pool{limit: workers}
}

// Run calls fn(i) for i in [0, n) and returns the first error.
func (p *Pool) Run(n int, fn func(i int) error) error {
	if p == nil || p.limit <= 1 || n <= 1 {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(p.limit)
	for i := range n {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
