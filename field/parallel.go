package field

import (
	"runtime"
	"sync"
)

// defaultParallelThreshold is the minimum cell count to split extraction
// across workers. Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 4096

// extractJob is the read-only input shared by all workers of one pass.
type extractJob struct {
	tiles  []FlowTile
	costs  []uint32
	width  int
	height int
}

// rowBand is a contiguous range of rows [start, end) handed to one worker.
type rowBand struct {
	job        *extractJob
	start, end int
}

// workerPool runs extraction bands on persistent goroutines.
type workerPool struct {
	numWorkers int

	workChan chan rowBand   // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: numWorkers}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan rowBand, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case band, ok := <-p.workChan:
			if !ok {
				return
			}
			band.job.rows(band.start, band.end)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits the job's rows into one band per worker and blocks until every
// band has been written. It returns the number of bands dispatched.
func (p *workerPool) run(job *extractJob) int {
	if !p.running {
		p.start()
	}

	bandSize := (job.height + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * bandSize
		end := start + bandSize
		if end > job.height {
			end = job.height
		}
		if start >= end {
			continue
		}

		p.workChan <- rowBand{job: job, start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	return dispatched
}
