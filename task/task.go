package task

import (
	"context"
	"multisig_svr/chain"
	"multisig_svr/config"
	"multisig_svr/event_watcher"
	"multisig_svr/notify"
	"multisig_svr/reconciler"
	"sync"
	"time"

	"github.com/scorpiotzh/mylog"
)

var log = mylog.NewLogger("task", mylog.LevelDebug)

type SyncTask struct {
	Ctx        context.Context
	Wg         *sync.WaitGroup
	Reconciler *reconciler.Reconciler
	Watcher    *event_watcher.Watcher
	Clients    map[string]chain.Client
}

// RunRepairMetadata periodically backfills transactions with a missing
// creation date or an undecoded call body.
func (t *SyncTask) RunRepairMetadata() {
	interval := time.Duration(config.Cfg.Sync.RepairIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute * 5
	}
	tickerRepair := time.NewTicker(interval)
	t.Wg.Add(1)
	go func() {
		defer notify.RecoverPanic()
		for {
			select {
			case <-tickerRepair.C:
				log.Debug("doRepairMetadata start ...")
				if err := t.doRepairMetadata(); err != nil {
					log.Error("doRepairMetadata err:", err.Error())
					notify.SendLarkTextNotify(config.Cfg.Notify.LarkErrorKey, "doRepairMetadata", err.Error())
				}
				log.Debug("doRepairMetadata end ...")
			case <-t.Ctx.Done():
				log.Debug("task repair metadata done")
				t.Wg.Done()
				return
			}
		}
	}()
}

func (t *SyncTask) doRepairMetadata() error {
	limit := config.Cfg.Sync.RepairBatchLimit
	if limit <= 0 {
		limit = 100
	}
	return t.Reconciler.RepairMetadata(limit, config.Cfg.Sync.RepairConcurrency)
}

// RunConnPoll re-evaluates the subscription set every tick. Connectivity
// transitions are logged, but the trigger is unconditional: account rows
// written by the wallet subsystem have no push channel into this service,
// and the watcher's rebuild diff is an idempotent no-op when nothing
// changed.
func (t *SyncTask) RunConnPoll() {
	interval := time.Duration(config.Cfg.Sync.ConnPollSec) * time.Second
	if interval <= 0 {
		interval = time.Second * 10
	}
	tickerConn := time.NewTicker(interval)
	t.Wg.Add(1)
	go func() {
		defer notify.RecoverPanic()
		last := make(map[string]chain.ConnStatus)
		for {
			select {
			case <-tickerConn.C:
				for chainId, client := range t.Clients {
					status := client.ConnStatus()
					if prev, ok := last[chainId]; !ok || prev != status {
						log.Info("conn status change:", chainId, status)
					}
					last[chainId] = status
				}
				t.Watcher.Trigger()
			case <-t.Ctx.Done():
				log.Debug("task conn poll done")
				t.Wg.Done()
				return
			}
		}
	}()
}
