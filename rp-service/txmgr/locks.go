package txmgr

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// keyedMutex hands out one mutex per account.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[common.Address]*sync.Mutex
}

func (k *keyedMutex) get(addr common.Address) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[common.Address]*sync.Mutex)
	}
	l, ok := k.locks[addr]
	if !ok {
		l = new(sync.Mutex)
		k.locks[addr] = l
	}
	return l
}

var senderLocks keyedMutex
