package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type Kind string

const (
	// KindDue fires when an open task reaches its due time.
	KindDue Kind = "due"
	// KindRollover fires at local midnight so day-relative views refresh.
	KindRollover Kind = "rollover"
)

type DueEvent struct {
	TaskID string
	Text   string
	Kind   Kind
	At     time.Time
}

type queueItem struct {
	event DueEvent
	seq   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].event.At.Equal(pq[j].event.At) {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].event.At.Before(pq[j].event.At)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	seq     uint64
	out     chan DueEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		out:    make(chan DueEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C is closed once the engine stops.
func (e *Engine) C() <-chan DueEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev DueEvent) error {
	if ev.At.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.pushLocked(ev)
	e.signalWakeup()
	return nil
}

// Replace discards every pending event and schedules events instead. Events
// with a zero time are skipped.
func (e *Engine) Replace(events []DueEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.queue = e.queue[:0]
	for _, ev := range events {
		if ev.At.IsZero() {
			continue
		}
		e.pushLocked(ev)
	}
	e.signalWakeup()
	return nil
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) pushLocked(ev DueEvent) {
	e.seq++
	heap.Push(&e.queue, queueItem{event: ev, seq: e.seq})
}

// loop fires everything already due, then sleeps until the earliest pending
// event, a queue change or Stop.
func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	for {
		for _, ev := range e.popDue(time.Now()) {
			e.deliver(ev)
		}

		var tick <-chan time.Time
		if at, ok := e.nextAt(); ok {
			timer.Reset(max(time.Until(at), 0))
			tick = timer.C
		}

		select {
		case <-tick:
		case <-e.wakeup:
			timer.Stop()
		case <-e.stopCh:
			timer.Stop()
			return
		}
	}
}

// deliver never blocks; a full channel counts as a drop.
func (e *Engine) deliver(ev DueEvent) {
	select {
	case e.out <- ev:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) nextAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return time.Time{}, false
	}
	return e.queue[0].event.At, true
}

func (e *Engine) popDue(now time.Time) []DueEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []DueEvent
	for len(e.queue) > 0 && !e.queue[0].event.At.After(now) {
		due = append(due, heap.Pop(&e.queue).(queueItem).event)
	}
	return due
}
