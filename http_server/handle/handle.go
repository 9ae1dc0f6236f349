package handle

import (
	"context"
	"multisig_svr/cache"
	"multisig_svr/chain"
	"multisig_svr/dao"
	"multisig_svr/event_watcher"
	"multisig_svr/reconciler"
	"multisig_svr/txstore"

	"github.com/scorpiotzh/mylog"
)

var (
	log = mylog.NewLogger("handle", mylog.LevelDebug)
)

type HttpHandle struct {
	Ctx        context.Context
	DbDao      *dao.DbDao
	RC         *cache.RedisCache
	Store      *txstore.Store
	Reconciler *reconciler.Reconciler
	Watcher    *event_watcher.Watcher
	Clients    map[string]chain.Client
}
