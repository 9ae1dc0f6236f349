package handle

import (
	"context"
	"fmt"
	"multisig_svr/cache"
	"multisig_svr/http_server/api_code"
	"multisig_svr/tables"
	"multisig_svr/txstore"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labstack/gommon/random"
	"github.com/scorpiotzh/toolib"
)

type ReqTransactionApprove struct {
	AccountId    string `json:"account_id"`
	ChainId      string `json:"chain_id"`
	CallHash     string `json:"call_hash"`
	BlockCreated uint64 `json:"block_created"`
	IndexCreated uint32 `json:"index_created"`
	Signatory    string `json:"signatory"`
	CallData     string `json:"call_data"`
	Description  string `json:"description"`
}

type RespTransactionApprove struct {
	TxKey string `json:"tx_key"`
}

// TransactionApprove records a locally-originated approval: the signing
// flow itself happens on the device; this endpoint feeds the resulting
// pending action into the same serializer/store pipeline as chain events.
func (h *HttpHandle) TransactionApprove(ctx *gin.Context) {
	var (
		funcName               = "TransactionApprove"
		traceId                = random.String(16)
		clientIp, remoteAddrIP = GetClientIp(ctx)
		req                    ReqTransactionApprove
		apiResp                api_code.ApiResp
		err                    error
	)

	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error("ShouldBindJSON err: ", err.Error(), funcName, clientIp)
		apiResp.ApiRespErr(api_code.ApiCodeParamsInvalid, "params invalid")
		ctx.JSON(http.StatusOK, apiResp)
		return
	}
	log.Info("ApiReq:", funcName, traceId, clientIp, remoteAddrIP, toolib.JsonString(req))

	if err = h.doTransactionInitiate(&req, &apiResp, false); err != nil {
		log.Error("doTransactionInitiate err:", err.Error(), funcName, traceId, clientIp)
	}

	ctx.JSON(http.StatusOK, apiResp)
}

func (h *HttpHandle) doTransactionInitiate(req *ReqTransactionApprove, apiResp *api_code.ApiResp, cancel bool) error {
	if req.AccountId == "" || req.ChainId == "" || req.CallHash == "" || req.Signatory == "" {
		apiResp.ApiRespErr(api_code.ApiCodeParamsInvalid, "params invalid")
		return nil
	}
	if _, ok := h.Clients[req.ChainId]; !ok {
		apiResp.ApiRespErr(api_code.ApiCodeChainNotSupported, fmt.Sprintf("chain not supported [%s]", req.ChainId))
		return nil
	}
	acc, err := h.DbDao.GetMultisigAccount(req.AccountId, req.ChainId)
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to query account")
		return fmt.Errorf("GetMultisigAccount err: %s", err.Error())
	}
	if acc.Id == 0 {
		apiResp.ApiRespErr(api_code.ApiCodeAccountNotExist, "multisig account not exist")
		return nil
	}
	isSignatory := false
	for _, v := range acc.SignatoryList() {
		if v == req.Signatory {
			isSignatory = true
			break
		}
	}
	if !isSignatory {
		apiResp.ApiRespErr(api_code.ApiCodePermissionDenied, "not a signatory of this account")
		return nil
	}

	txKey := tables.MultisigTxKey(req.AccountId, req.ChainId, req.CallHash, req.BlockCreated, req.IndexCreated)
	if err := h.RC.LockWithRedis(txKey); err != nil {
		if err == cache.ErrDistributedLockPreemption {
			apiResp.ApiRespErr(api_code.ApiCodeDistributedLockPreemption, "operation in progress")
			return nil
		}
		apiResp.ApiRespErr(api_code.ApiCodeCacheError, "cache error")
		return fmt.Errorf("LockWithRedis err: %s", err.Error())
	}
	defer func() {
		if err := h.RC.UnLockWithRedis(txKey); err != nil {
			log.Error("UnLockWithRedis err:", txKey, err.Error())
		}
	}()
	// keep the lock alive while the action waits out its serializer turn
	lockCtx, lockCancel := context.WithCancel(h.Ctx)
	defer lockCancel()
	h.RC.DoLockExpire(lockCtx, txKey)

	if err := <-h.Store.InitiateLocal(txstore.LocalInit{
		AccountId:    req.AccountId,
		ChainId:      req.ChainId,
		CallHash:     req.CallHash,
		BlockCreated: req.BlockCreated,
		IndexCreated: req.IndexCreated,
		Signatory:    req.Signatory,
		CallData:     req.CallData,
		Description:  req.Description,
		Cancel:       cancel,
	}); err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeError500, "failed to record action")
		return fmt.Errorf("InitiateLocal err: %s", err.Error())
	}

	apiResp.ApiRespOK(RespTransactionApprove{TxKey: txKey})
	return nil
}
