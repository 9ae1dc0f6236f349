package event_watcher

import (
	"context"
	"fmt"
	"multisig_svr/chain"
	"multisig_svr/prom"
	"multisig_svr/tables"
	"sort"
	"sync"
	"time"

	"github.com/scorpiotzh/mylog"
)

var log = mylog.NewLogger("event_watcher", mylog.LevelDebug)

// AccountReader supplies the tracked multisig account set; *dao.DbDao
// implements it.
type AccountReader interface {
	GetMultisigAccountList() ([]tables.TableMultisigAccountInfo, error)
}

// Watcher owns every open chain subscription: one storage watch plus one
// execution and one cancellation event subscription per (chain, multisig
// account). The active set is rebuilt, never patched: any change to a
// chain's tracked accounts or connectivity tears the chain's subscriptions
// down and recreates them, so no stale filter survives.
type Watcher struct {
	Ctx            context.Context
	Wg             *sync.WaitGroup
	DB             AccountReader
	Clients        map[string]chain.Client
	EventHandler   func(chainId string, payload interface{})
	StorageHandler func(chainId, accountId string, payload interface{})
	Debounce       time.Duration

	mu      sync.Mutex
	active  map[string]*chainSubs
	trigger chan struct{}
}

type chainSubs struct {
	accountIds []string
	unsubs     []chain.Unsubscribe
}

func (w *Watcher) Init() {
	w.active = make(map[string]*chainSubs)
	w.trigger = make(chan struct{}, 1)
	if w.Debounce <= 0 {
		w.Debounce = time.Millisecond * 500
	}
}

// Trigger requests a subscription re-evaluation. Bursts of sequential
// account/connectivity changes coalesce into one rebuild via the debounce
// interval.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Watcher) Run() {
	w.Wg.Add(1)
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case <-w.trigger:
				timer := time.NewTimer(w.Debounce)
			drain:
				for {
					select {
					case <-w.trigger:
					case <-timer.C:
						break drain
					case <-w.Ctx.Done():
						timer.Stop()
						w.Shutdown()
						return
					}
				}
				if err := w.EnsureSubscriptions(); err != nil {
					log.Error("EnsureSubscriptions err:", err.Error())
				}
			case <-w.Ctx.Done():
				w.Shutdown()
				return
			}
		}
	}()
}

// EnsureSubscriptions diffs the wanted per-chain account sets against the
// active ones and rebuilds only chains whose set changed. Calling it with
// unchanged input is a no-op. A failure on one chain leaves that chain
// unsubscribed and does not affect the others.
func (w *Watcher) EnsureSubscriptions() error {
	list, err := w.DB.GetMultisigAccountList()
	if err != nil {
		return fmt.Errorf("GetMultisigAccountList err: %s", err.Error())
	}
	wanted := make(map[string][]string)
	for _, v := range list {
		if _, ok := w.Clients[v.ChainId]; !ok {
			continue
		}
		wanted[v.ChainId] = append(wanted[v.ChainId], v.AccountId)
	}
	for chainId := range wanted {
		sort.Strings(wanted[chainId])
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for chainId, client := range w.Clients {
		want := wanted[chainId]
		if client.ConnStatus() != chain.ConnStatusConnected {
			want = nil
		}
		cur := w.active[chainId]
		if cur != nil && equalAccountSet(cur.accountIds, want) {
			continue
		}
		if cur == nil && len(want) == 0 {
			continue
		}
		if cur != nil {
			w.teardownChain(chainId, cur)
		}
		if len(want) == 0 {
			continue
		}
		subs, err := w.subscribeChain(client, want)
		if err != nil {
			log.Error("subscribeChain err:", chainId, err.Error())
			continue
		}
		w.active[chainId] = subs
		prom.CounterSubscriptionRebuild.WithLabelValues(chainId).Inc()
		log.Info("EnsureSubscriptions rebuilt:", chainId, len(want))
	}
	return nil
}

func (w *Watcher) subscribeChain(client chain.Client, accountIds []string) (*chainSubs, error) {
	chainId := client.ChainId()
	subs := &chainSubs{accountIds: accountIds}
	for _, accountId := range accountIds {
		address, err := chain.ToAddress(accountId, client.AddressPrefix())
		if err != nil {
			w.teardownChain(chainId, subs)
			return nil, fmt.Errorf("ToAddress err: %s", err.Error())
		}
		accId := accountId
		unsub, err := client.SubscribeMultisigStorage(w.Ctx, address, func(payload interface{}) {
			w.handleStorage(chainId, accId, payload)
		})
		if err != nil {
			w.teardownChain(chainId, subs)
			return nil, fmt.Errorf("SubscribeMultisigStorage err: %s", err.Error())
		}
		subs.unsubs = append(subs.unsubs, unsub)

		for _, kind := range []chain.EventKind{chain.EventKindExecution, chain.EventKindCancellation} {
			unsub, err := client.SubscribeEvents(w.Ctx, kind, address, func(payload interface{}) {
				w.EventHandler(chainId, payload)
			})
			if err != nil {
				w.teardownChain(chainId, subs)
				return nil, fmt.Errorf("SubscribeEvents %s err: %s", kind.String(), err.Error())
			}
			subs.unsubs = append(subs.unsubs, unsub)
		}
	}
	return subs, nil
}

func (w *Watcher) handleStorage(chainId, accountId string, payload interface{}) {
	if w.StorageHandler != nil {
		w.StorageHandler(chainId, accountId, payload)
		return
	}
	log.Debug("storage change:", chainId, accountId)
}

func (w *Watcher) teardownChain(chainId string, subs *chainSubs) {
	for _, unsub := range subs.unsubs {
		unsub()
	}
	subs.unsubs = nil
	delete(w.active, chainId)
	log.Info("teardownChain:", chainId)
}

// Shutdown tears down every open subscription.
func (w *Watcher) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for chainId, subs := range w.active {
		w.teardownChain(chainId, subs)
	}
}

func equalAccountSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
