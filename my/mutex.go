package my

/*
 * providing drop-in replacement for sync.Mutex & sync.RWMutex
 * in "development" env, using go-deadlock
 *
 * provide PLMutex for contextual plogger mutex
 *
 * also, provide NamedMutex for a higher level single-writer mutex
 * (transport's socket write lock)
 */

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	plogger "github.com/heytribe/go-plogger"
	"github.com/sasha-s/go-deadlock"
)

// shouldn't race (init only)
var deadlockDetection = false

// number of locks
var locknum int64

func EnableDeadlockDetection() {
	deadlockDetection = true
}

/*
 * RWMutex is a drop-in RWMutex replacement
 *  with alternate deadlock detection.
 *
 * fixme: check memory footprint
 */
type RWMutex struct {
	sync.RWMutex
	alt deadlock.RWMutex // alternate debug mutex
}

func (o *RWMutex) Lock() {
	if deadlockDetection {
		atomic.AddInt64(&locknum, 1)
		o.alt.Lock()
	} else {
		o.RWMutex.Lock()
	}
}

func (o *RWMutex) Unlock() {
	if deadlockDetection {
		o.alt.Unlock()
		atomic.AddInt64(&locknum, -1)
	} else {
		o.RWMutex.Unlock()
	}
}

func (o *RWMutex) RLock() {
	if deadlockDetection {
		atomic.AddInt64(&locknum, 1)
		o.alt.RLock()
	} else {
		o.RWMutex.RLock()
	}
}

func (o *RWMutex) RUnlock() {
	if deadlockDetection {
		o.alt.RUnlock()
		atomic.AddInt64(&locknum, -1)
	} else {
		o.RWMutex.RUnlock()
	}
}

/*
 * Mutex is a drop-in Mutex replacement
 *  with alternate deadlock detection.
 */
type Mutex struct {
	sync.Mutex
	alt deadlock.Mutex // alternate debug mutex
}

func (o *Mutex) Lock() {
	if deadlockDetection {
		atomic.AddInt64(&locknum, 1)
		o.alt.Lock()
	} else {
		o.Mutex.Lock()
	}
}

func (o *Mutex) Unlock() {
	if deadlockDetection {
		o.alt.Unlock()
		atomic.AddInt64(&locknum, -1)
	} else {
		o.Mutex.Unlock()
	}
}

/*
 * PLMutex is a wrapper around Mutex
 */
type PLMutex struct {
	Mutex
}

func (o *PLMutex) Lock(ctx context.Context, format string, args ...interface{}) {
	log := plogger.FromContextSafe(ctx).Prefix("PLMutex").Tag("mutex")
	s := ""
	if deadlockDetection {
		s = " - using deadlock detection"
		s += fmt.Sprintf(" (%d->%d)", locknum, locknum+1)
	}

	log.Debugf("["+format+"] Lock"+s, args...)
	o.Mutex.Lock()
	log.Debugf("["+format+"] Lock OK", args...)
}

func (o *PLMutex) Unlock(ctx context.Context, format string, args ...interface{}) {
	log := plogger.FromContextSafe(ctx).Prefix("PLMutex").Tag("mutex")
	s := ""
	if deadlockDetection {
		s = " - using deadlock detection"
		s += fmt.Sprintf(" (%d->%d)", locknum, locknum-1)
	}
	log.Debugf("["+format+"] Unlock"+s, args...)
	o.Mutex.Unlock()
	log.Debugf("["+format+"] Unlock OK", args...)
}

func (o *PLMutex) Exec(ctx context.Context, f func(), format string, args ...interface{}) {
	o.Lock(ctx, format, args...)
	f()
	o.Unlock(ctx, format, args...)
}

type NamedMutex struct {
	PLMutex
	Name string
}

func (o *NamedMutex) Init(name string) {
	o.Name = name
}

func (o *NamedMutex) Lock(ctx context.Context) {
	Assert(func() bool { return o.Name != "" }, "call Init(...)")

	o.PLMutex.Lock(ctx, o.Name)
}

func (o *NamedMutex) Unlock(ctx context.Context) {
	Assert(func() bool { return o.Name != "" }, "call Init(...)")

	o.PLMutex.Unlock(ctx, o.Name)
}
