package http_server

import (
	"encoding/json"
	"multisig_svr/config"
	"multisig_svr/http_server/api_code"
	"multisig_svr/http_server/handle"
	"multisig_svr/prom"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scorpiotzh/toolib"
)

func (h *HttpServer) initRouter() {
	shortExpireTime, shortDataTime, lockTime := time.Second*5, time.Minute*3, time.Minute
	cacheHandleShort := toolib.MiddlewareCacheByRedis(h.H.RC.Red, false, shortDataTime, lockTime, shortExpireTime, respHandle)

	log.Info("initRouter:", len(config.Cfg.Origins))
	if len(config.Cfg.Origins) > 0 {
		toolib.AllowOriginList = append(toolib.AllowOriginList, config.Cfg.Origins...)
	}
	h.internalEngine.Use(toolib.MiddlewareCors())
	h.engine.Use(toolib.MiddlewareCors())

	v1 := h.engine.Group("v1")
	{
		v1.POST("/version", api_code.DoMonitorLog("version"), h.H.Version)
		v1.POST("/transaction/list", api_code.DoMonitorLog("tx_list"), cacheHandleShort, h.H.TransactionList)
		v1.POST("/transaction/detail", api_code.DoMonitorLog("tx_detail"), cacheHandleShort, h.H.TransactionDetail)
		v1.POST("/transaction/approve", api_code.DoMonitorLog("tx_approve"), h.H.TransactionApprove)
		v1.POST("/transaction/cancel", api_code.DoMonitorLog("tx_cancel"), h.H.TransactionCancel)
	}
	internalV1 := h.internalEngine.Group("v1")
	{
		internalV1.POST("/internal/repair", handle.CheckJwt(), h.H.InternalRepair)
		internalV1.POST("/internal/journal/replay", handle.CheckJwt(), h.H.InternalJournalReplay)
		internalV1.POST("/internal/subscription/refresh", handle.CheckJwt(), h.H.InternalSubscriptionRefresh)
		internalV1.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prom.PromRegister, promhttp.HandlerOpts{})))
	}
}

func respHandle(c *gin.Context, res string, err error) {
	if err != nil {
		log.Error("respHandle err:", err.Error())
		c.AbortWithStatusJSON(http.StatusOK, api_code.ApiRespErr(api_code.ApiCodeCacheError, err.Error()))
	} else if res != "" {
		var respMap map[string]interface{}
		_ = json.Unmarshal([]byte(res), &respMap)
		c.AbortWithStatusJSON(http.StatusOK, respMap)
	}
}
