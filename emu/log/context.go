package log

import "sync"

// A Context adds fields to every log entry while it is registered; the
// machine uses it to tag entries with the current virtual time.
type Context interface {
	AddLogContext(z *EntryZ)
}

var (
	ctxmu    sync.RWMutex
	contexts []Context
)

func AddContext(c Context) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	contexts = append(contexts, c)
}

func RemoveContext(c Context) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}

func addContexts(z *EntryZ) {
	ctxmu.RLock()
	defer ctxmu.RUnlock()
	for _, c := range contexts {
		c.AddLogContext(z)
	}
}
