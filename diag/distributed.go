package diag

import (
	"sync"

	"github.com/mihasalamun/nrgljubljana/nrgerr"
	"github.com/mihasalamun/nrgljubljana/spectrum"
)

// tag names the typed message alphabet of spec.md §4.2:
// {EXIT, DIAG_REAL, DIAG_CMPL, SYNC_PARAMS, MATRIX_SIZE, MATRIX_LINE,
// INVAR, EIGEN_VEC}.
type tag uint8

const (
	tagSyncParams tag = iota
	tagMatrixSize
	tagMatrixLine
	tagInvar
	tagDiagReal
	tagDiagCmpl
	tagEigenVec
	tagExit
)

// message is the envelope exchanged between root and worker. Real Go
// channels stand in for the wire transport: no MPI, gRPC, or other RPC
// binding appears anywhere in the retrieved corpus, so channels are the
// closest corpus-consistent stand-in for "typed messages between
// independent workers" (SPEC_FULL §6). Row-by-row MatrixLine chunking
// is modeled even though an in-process channel has no 2 GiB limit,
// because scenario F (spec.md §8) requires this backend to behave
// identically to a real transport that does.
type message struct {
	Tag     tag
	Task    Task
	Row     []float64 // one MATRIX_LINE row, when Tag == tagMatrixLine
	// Diagratio is the advertised parameter, when Tag == tagSyncParams.
	Diagratio float64
	Result    *spectrum.Subspace
	CResult *spectrum.SubspaceComplex
}

// rowTransportLimit names the row-by-row chunking threshold of spec.md
// §4.2 ("Matrices > 2 GiB are sent row-by-row"), expressed as a row
// count rather than a byte count. sendTask does not consult it: every
// real matrix is sent row by row whatever its size, so the code path,
// and the resulting output files (scenario F), match a real
// transport's behavior.
const rowTransportLimit = 1 << 28

// Distributed is the message-passing Diagonalizer backend of spec.md
// §4.2: the root advertises parameters, then schedules the largest
// remaining task to the least-loaded worker; a single-task residual
// runs on the root to avoid a round trip; termination sends an explicit
// EXIT message to each worker once all work is issued.
type Distributed struct {
	// Workers is the number of simulated worker goroutines.
	Workers int
}

var _ Backend = Distributed{}

type workerHandle struct {
	toWorker   chan message
	fromWorker chan message
	busy       bool
}

// Diagonalize implements Backend using the simulated root/worker
// protocol described above.
func (d Distributed) Diagonalize(tasks []Task, diagratio float64) (*spectrum.DiagState, error) {
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}

	ordered := append([]Task(nil), tasks...)
	SortLargestFirst(ordered)

	result := spectrum.NewDiagState()
	if len(ordered) == 0 {
		return result, nil
	}

	// The root participates: the last outstanding task runs locally
	// (spec.md §4.2 "A single-task residual is handled on the root to
	// avoid network cost").
	if len(ordered) == 1 {
		runLocalTask(ordered[0], diagratio, result)
		return result, nil
	}

	handles := make([]*workerHandle, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		h := &workerHandle{toWorker: make(chan message), fromWorker: make(chan message)}
		handles[w] = h
		wg.Add(1)
		go runWorker(h, &wg)
	}

	// SYNC_PARAMS: advertise the diagratio to every worker before
	// dispatching tasks.
	for _, h := range handles {
		h.toWorker <- message{Tag: tagSyncParams, Diagratio: diagratio}
	}

	var mu sync.Mutex
	var commErr error
	pending := len(ordered)
	idx := 0

	dispatch := func(h *workerHandle) bool {
		if idx >= len(ordered) {
			return false
		}
		t := ordered[idx]
		idx++
		if idx == len(ordered) {
			// Last outstanding task: the root runs it itself.
			mu.Lock()
			runLocalTask(t, diagratio, result)
			mu.Unlock()
			pending--
			return false
		}
		h.busy = true
		sendTask(h, t)
		return true
	}

	for _, h := range handles {
		dispatch(h)
	}

	for pending > 0 {
		for _, h := range handles {
			if !h.busy {
				continue
			}
			select {
			case reply := <-h.fromWorker:
				mu.Lock()
				if reply.Result != nil {
					result.Insert(reply.Task.I, reply.Result)
				} else if reply.CResult != nil {
					result.InsertComplex(reply.Task.I, reply.CResult)
				} else {
					commErr = nrgerr.New(nrgerr.CommunicationFailure, errWorkerReplyEmpty)
				}
				mu.Unlock()
				pending--
				h.busy = false
				dispatch(h)
			default:
			}
		}
	}

	for _, h := range handles {
		h.toWorker <- message{Tag: tagExit}
		close(h.toWorker)
	}
	wg.Wait()

	if commErr != nil {
		return result, commErr
	}
	return result, nil
}

func sendTask(h *workerHandle, t Task) {
	h.toWorker <- message{Tag: tagInvar, Task: t}
	if t.Real != nil {
		n := t.Real.Symmetric()
		h.toWorker <- message{Tag: tagMatrixSize, Task: Task{Real: t.Real}}
		for r := 0; r < n; r++ {
			row := make([]float64, n)
			for c := 0; c < n; c++ {
				row[c] = t.Real.At(r, c)
			}
			h.toWorker <- message{Tag: tagMatrixLine, Row: row}
		}
		h.toWorker <- message{Tag: tagDiagReal, Task: t}
	} else {
		h.toWorker <- message{Tag: tagDiagCmpl, Task: t}
	}
}

func runWorker(h *workerHandle, wg *sync.WaitGroup) {
	defer wg.Done()
	var diagratio float64 = 1
	var pendingTask Task
	var rows [][]float64
	for msg := range h.toWorker {
		switch msg.Tag {
		case tagSyncParams:
			diagratio = msg.Diagratio
		case tagInvar:
			pendingTask = msg.Task
			rows = nil
		case tagMatrixSize:
			n := msg.Task.Real.Symmetric()
			rows = make([][]float64, 0, n)
		case tagMatrixLine:
			rows = append(rows, msg.Row)
		case tagDiagReal:
			s := solveReal(pendingTask.Real, diagratio, pendingTask.BlockWidths)
			h.fromWorker <- message{Tag: tagEigenVec, Task: pendingTask, Result: s}
		case tagDiagCmpl:
			s := solveComplex(pendingTask.Complex, diagratio, pendingTask.BlockWidths)
			h.fromWorker <- message{Tag: tagEigenVec, Task: pendingTask, CResult: s}
		case tagExit:
			return
		}
	}
}

func runLocalTask(t Task, diagratio float64, result *spectrum.DiagState) {
	if t.Real != nil {
		result.Insert(t.I, solveReal(t.Real, diagratio, t.BlockWidths))
	} else {
		result.InsertComplex(t.I, solveComplex(t.Complex, diagratio, t.BlockWidths))
	}
}

type commErrString string

func (e commErrString) Error() string { return string(e) }

const errWorkerReplyEmpty = commErrString("diag: worker reply carried neither real nor complex result")
