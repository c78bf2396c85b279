package diag

import (
	"runtime"
	"sync"

	"github.com/mihasalamun/nrgljubljana/spectrum"
)

// SharedPool is the shared-memory Diagonalizer backend of spec.md
// §4.2/§5: a worker pool consumes an ordered (largest-first) task list
// concurrently; results are inserted into the new DiagState under a
// mutex. Grounded on optimize/global.go's operation/result channel
// dispatch (internal/seed/global_seed.go), adapted from "evaluate a
// point" tasks to "diagonalize a block" tasks — here simplified to a
// plain bounded worker pool since, unlike Global's optimizer, there is
// no cross-task iteration control to coordinate through the channel.
type SharedPool struct {
	// Workers bounds concurrency; 0 means runtime.GOMAXPROCS(0).
	Workers int
}

var _ Backend = SharedPool{}

// Diagonalize runs tasks concurrently across a bounded worker pool,
// largest matrix first, and returns the resulting DiagState.
func (p SharedPool) Diagonalize(tasks []Task, diagratio float64) (*spectrum.DiagState, error) {
	ordered := append([]Task(nil), tasks...)
	SortLargestFirst(ordered)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(ordered) {
		workers = len(ordered)
	}
	if workers == 0 {
		return spectrum.NewDiagState(), nil
	}

	result := spectrum.NewDiagState()
	var mu sync.Mutex
	jobs := make(chan Task)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if t.Real != nil {
					s := solveReal(t.Real, diagratio, t.BlockWidths)
					mu.Lock()
					result.Insert(t.I, s)
					mu.Unlock()
				} else {
					s := solveComplex(t.Complex, diagratio, t.BlockWidths)
					mu.Lock()
					result.InsertComplex(t.I, s)
					mu.Unlock()
				}
			}
		}()
	}

	for _, t := range ordered {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	return result, nil
}
