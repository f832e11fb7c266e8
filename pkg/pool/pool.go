package pool

import (
	"io"
	"runtime"
	"sync"
)

// task asks a worker to evaluate f at index i, and to report on done.
type task struct {
	i    int
	f    func(int)
	done *sync.WaitGroup
}

// worker evaluates tasks until the channel is closed.
func worker(tasks <-chan task) {
	for t := range tasks {
		t.f(t.i)
		t.done.Done()
	}
}

// Pool represents a pool of workers, used for parallelizing functions.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current thread instead.
//
// By creating a pool, you avoid the overhead of spinning up goroutines for
// each new operation.
type Pool struct {
	// The common channel used to send tasks to the workers.
	//
	// This effectively makes a work stealing pool.
	tasks chan task
	// This holds the number of workers we've created
	workerCount int
	once        sync.Once
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		tasks:       make(chan task, count),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go worker(p.tasks)
	}
	return p
}

// TearDown cleanly tears down a pool, stopping its workers.
// It is safe to call more than once.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.tasks) })
}

// Workers returns the number of workers, or 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// Parallelize calls f(0), ..., f(count-1) and returns once all calls are done.
//
// Each call must only write to state owned by its index.
func (p *Pool) Parallelize(count int, f func(int)) {
	if p == nil || count <= 1 {
		for i := 0; i < count; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.tasks <- task{i: i, f: f, done: &wg}
	}
	wg.Wait()
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// This type implements io.Reader, returning the same output.
//
// This means acquiring a lock whenever a read happens, so be aware of that
// for performance or concurrency reasons.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	// Intentionally not initializing m, since the zero value is ok
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader
//
// The behavior is to return the same output as the underlying reader. The difference
// is that it's safe to call this function concurrently.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
