package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/scorpiotzh/mylog"
	"github.com/scorpiotzh/toolib"
)

var (
	Cfg CfgServer
	log = mylog.NewLogger("config", mylog.LevelDebug)
)

func InitCfg(configFilePath string) error {
	if configFilePath == "" {
		configFilePath = "./config/config.yaml"
	}
	log.Info("config file：", configFilePath)
	if err := toolib.UnmarshalYamlFile(configFilePath, &Cfg); err != nil {
		return fmt.Errorf("UnmarshalYamlFile err:%s", err.Error())
	}
	log.Info("config file：ok")
	return nil
}

func AddCfgFileWatcher(configFilePath string) (*fsnotify.Watcher, error) {
	if configFilePath == "" {
		configFilePath = "./config/config.yaml"
	}
	return toolib.AddFileWatcher(configFilePath, func() {
		log.Info("update config file：", configFilePath)
		if err := toolib.UnmarshalYamlFile(configFilePath, &Cfg); err != nil {
			log.Error("UnmarshalYamlFile err:", err.Error())
		}
		log.Info("update config file：ok")
	})
}

type DbMysql struct {
	Addr        string `json:"addr" yaml:"addr"`
	User        string `json:"user" yaml:"user"`
	Password    string `json:"password" yaml:"password"`
	DbName      string `json:"db_name" yaml:"db_name"`
	MaxOpenConn int    `json:"max_open_conn" yaml:"max_open_conn"`
	MaxIdleConn int    `json:"max_idle_conn" yaml:"max_idle_conn"`
}

type ChainNode struct {
	ChainId       string `json:"chain_id" yaml:"chain_id"`
	Name          string `json:"name" yaml:"name"`
	RpcUrl        string `json:"rpc_url" yaml:"rpc_url"`
	AddressPrefix uint16 `json:"address_prefix" yaml:"address_prefix"`
	Symbol        string `json:"symbol" yaml:"symbol"`
	Decimals      int32  `json:"decimals" yaml:"decimals"`
}

func GetChainNode(chainId string) *ChainNode {
	for i := range Cfg.Chains {
		if Cfg.Chains[i].ChainId == chainId {
			return &Cfg.Chains[i]
		}
	}
	return nil
}

type CfgServer struct {
	Server struct {
		Name                   string `json:"name" yaml:"name"`
		HttpServerAddr         string `json:"http_server_addr" yaml:"http_server_addr"`
		HttpServerInternalAddr string `json:"http_server_internal_addr" yaml:"http_server_internal_addr"`
		JwtKey                 string `json:"jwt_key" yaml:"jwt_key"`
	} `json:"server" yaml:"server"`
	Sync struct {
		DebounceMs        int64 `json:"debounce_ms" yaml:"debounce_ms"`
		RepairIntervalSec int64 `json:"repair_interval_sec" yaml:"repair_interval_sec"`
		RepairBatchLimit  int   `json:"repair_batch_limit" yaml:"repair_batch_limit"`
		RepairConcurrency int   `json:"repair_concurrency" yaml:"repair_concurrency"`
		ConnPollSec       int64 `json:"conn_poll_sec" yaml:"conn_poll_sec"`
		RpcConcurrency    int64 `json:"rpc_concurrency" yaml:"rpc_concurrency"`
		RpcMaxRetry       int   `json:"rpc_max_retry" yaml:"rpc_max_retry"`
		RpcRetryMs        int64 `json:"rpc_retry_ms" yaml:"rpc_retry_ms"`
	} `json:"sync" yaml:"sync"`
	Chains  []ChainNode `json:"chains" yaml:"chains"`
	Origins []string    `json:"origins" yaml:"origins"`
	Notify  struct {
		LarkErrorKey    string `json:"lark_error_key" yaml:"lark_error_key"`
		CoSignerWebhook string `json:"co_signer_webhook" yaml:"co_signer_webhook"`
		SentryDsn       string `json:"sentry_dsn" yaml:"sentry_dsn"`
	} `json:"notify" yaml:"notify"`
	DB struct {
		Mysql DbMysql `json:"mysql" yaml:"mysql"`
		Mongo struct {
			Uri    string `json:"uri" yaml:"uri"`
			DbName string `json:"db_name" yaml:"db_name"`
		} `json:"mongo" yaml:"mongo"`
	} `json:"db" yaml:"db"`
	Cache struct {
		Redis struct {
			Addr     string `json:"addr" yaml:"addr"`
			Password string `json:"password" yaml:"password"`
			DbNum    int    `json:"db_num" yaml:"db_num"`
		} `json:"redis" yaml:"redis"`
	} `json:"cache" yaml:"cache"`
}
