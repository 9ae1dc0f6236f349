package handle

import (
	"multisig_svr/config"
	"multisig_svr/http_server/api_code"
	"net/http"

	"github.com/gin-gonic/gin"
)

const internalReplayBatch = 500

// InternalRepair triggers one metadata repair pass immediately.
func (h *HttpHandle) InternalRepair(ctx *gin.Context) {
	var apiResp api_code.ApiResp
	limit := config.Cfg.Sync.RepairBatchLimit
	if limit <= 0 {
		limit = 100
	}
	if err := h.Reconciler.RepairMetadata(limit, config.Cfg.Sync.RepairConcurrency); err != nil {
		log.Error("InternalRepair err:", err.Error())
		apiResp.ApiRespErr(api_code.ApiCodeError500, err.Error())
		ctx.JSON(http.StatusOK, apiResp)
		return
	}
	apiResp.ApiRespOK(nil)
	ctx.JSON(http.StatusOK, apiResp)
}

// InternalJournalReplay re-feeds journaled unmatched events.
func (h *HttpHandle) InternalJournalReplay(ctx *gin.Context) {
	var apiResp api_code.ApiResp
	if err := h.Reconciler.ReplayJournal(internalReplayBatch); err != nil {
		log.Error("InternalJournalReplay err:", err.Error())
		apiResp.ApiRespErr(api_code.ApiCodeError500, err.Error())
		ctx.JSON(http.StatusOK, apiResp)
		return
	}
	apiResp.ApiRespOK(nil)
	ctx.JSON(http.StatusOK, apiResp)
}

// InternalSubscriptionRefresh pokes the watcher to re-evaluate the
// subscription set now.
func (h *HttpHandle) InternalSubscriptionRefresh(ctx *gin.Context) {
	var apiResp api_code.ApiResp
	h.Watcher.Trigger()
	apiResp.ApiRespOK(nil)
	ctx.JSON(http.StatusOK, apiResp)
}
