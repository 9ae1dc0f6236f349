package main

import (
	"context"
	"fmt"
	"multisig_svr/cache"
	"multisig_svr/chain"
	"multisig_svr/config"
	"multisig_svr/dao"
	"multisig_svr/event_watcher"
	"multisig_svr/http_server"
	"multisig_svr/http_server/handle"
	"multisig_svr/notify"
	"multisig_svr/reconciler"
	"multisig_svr/task"
	"multisig_svr/task_queue"
	"multisig_svr/txstore"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/scorpiotzh/mylog"
	"github.com/scorpiotzh/toolib"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	log               = mylog.NewLogger("main", mylog.LevelDebug)
	exit              = make(chan struct{})
	ctxServer, cancel = context.WithCancel(context.Background())
	wgServer          = sync.WaitGroup{}
)

func main() {
	log.Debugf("start：")
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
		},
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(ctx *cli.Context) error {
	// config file
	configFilePath := ctx.String("config")
	if err := config.InitCfg(configFilePath); err != nil {
		return err
	}

	// config file watcher
	watcher, err := config.AddCfgFileWatcher(configFilePath)
	if err != nil {
		return fmt.Errorf("AddCfgFileWatcher err: %s", err.Error())
	}

	// sentry
	if config.Cfg.Notify.SentryDsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: config.Cfg.Notify.SentryDsn}); err != nil {
			return fmt.Errorf("sentry.Init err: %s", err.Error())
		}
		log.Info("sentry ok")
	}
	// ============= service start =============

	// db
	dbDao, err := dao.NewGormDB(config.Cfg.DB.Mysql)
	if err != nil {
		return fmt.Errorf("NewGormDB err: %s", err.Error())
	}
	log.Infof("db ok")

	// redis
	red, err := toolib.NewRedisClient(config.Cfg.Cache.Redis.Addr, config.Cfg.Cache.Redis.Password, config.Cfg.Cache.Redis.DbNum)
	if err != nil {
		return fmt.Errorf("NewRedisClient err: %s", err.Error())
	}
	log.Info("redis ok")
	rc := &cache.RedisCache{
		Ctx: ctxServer,
		Red: red,
	}

	// mongo
	mongoClient, err := mongo.Connect(ctxServer, options.Client().ApplyURI(config.Cfg.DB.Mongo.Uri))
	if err != nil {
		return fmt.Errorf("mongo.Connect err: %s", err.Error())
	}
	log.Infof("mongo ok")

	// chain clients
	clients := initChainClients()
	log.Infof("chain clients ok: %d", len(clients))

	// rpc pool
	rpcPool := chain.NewRpcPool(
		config.Cfg.Sync.RpcConcurrency,
		config.Cfg.Sync.RpcMaxRetry,
		time.Duration(config.Cfg.Sync.RpcRetryMs)*time.Millisecond,
	)

	// tx store
	store := txstore.NewStore(dbDao, task_queue.NewTaskQueue())
	log.Infof("tx store ok")

	// reconciler
	rec := &reconciler.Reconciler{
		Ctx:     ctxServer,
		DB:      dbDao,
		Store:   store,
		Clients: clients,
		Pool:    rpcPool,
		Journal: reconciler.NewJournal(ctxServer, mongoClient, config.Cfg.DB.Mongo.DbName),
	}
	log.Infof("reconciler ok")

	// event watcher
	ew := &event_watcher.Watcher{
		Ctx:            ctxServer,
		Wg:             &wgServer,
		DB:             dbDao,
		Clients:        clients,
		EventHandler:   rec.HandleEvent,
		StorageHandler: rec.HandleStorage,
		Debounce:       time.Duration(config.Cfg.Sync.DebounceMs) * time.Millisecond,
	}
	ew.Init()
	ew.Run()
	ew.Trigger()
	log.Infof("event watcher ok")

	// co-signer notifier
	notify.RunStoreNotifier(ctxServer, &wgServer, store.Events(), config.Cfg.Notify.CoSignerWebhook, func(accountId, chainId string) []string {
		acc, err := dbDao.GetMultisigAccount(accountId, chainId)
		if err != nil {
			log.Error("GetMultisigAccount err:", accountId, chainId, err.Error())
			return nil
		}
		return acc.MessagingIdList()
	})

	// task
	syncTask := task.SyncTask{
		Ctx:        ctxServer,
		Wg:         &wgServer,
		Reconciler: rec,
		Watcher:    ew,
		Clients:    clients,
	}
	syncTask.RunRepairMetadata()
	syncTask.RunConnPoll()
	if err := syncTask.RunJournalReplay(); err != nil {
		return fmt.Errorf("RunJournalReplay err: %s", err.Error())
	}
	log.Infof("task ok")

	// http
	hs := http_server.HttpServer{
		Ctx:             ctxServer,
		Address:         config.Cfg.Server.HttpServerAddr,
		InternalAddress: config.Cfg.Server.HttpServerInternalAddr,
		H: &handle.HttpHandle{
			Ctx:        ctxServer,
			DbDao:      dbDao,
			RC:         rc,
			Store:      store,
			Reconciler: rec,
			Watcher:    ew,
			Clients:    clients,
		},
	}
	hs.Run()
	log.Info("http server ok")
	// ============= service end =============
	toolib.ExitMonitoring(func(sig os.Signal) {
		log.Warn("ExitMonitoring:", sig.String())
		if watcher != nil {
			log.Warn("close watcher ... ")
			_ = watcher.Close()
		}
		cancel()
		ew.Shutdown()
		hs.Shutdown()
		wgServer.Wait()
		log.Warn("success exit server. bye bye!")
		time.Sleep(time.Second)
		exit <- struct{}{}
	})

	<-exit

	return nil
}

func initChainClients() map[string]chain.Client {
	clients := make(map[string]chain.Client)
	for _, node := range config.Cfg.Chains {
		clients[node.ChainId] = chain.NewSidecarClient(node.ChainId, node.RpcUrl, node.AddressPrefix)
		log.Info("chain node:", node.ChainId, node.Name, node.RpcUrl)
	}
	return clients
}
