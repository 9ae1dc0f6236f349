package handle

import (
	"fmt"
	"multisig_svr/http_server/api_code"
	"multisig_svr/tables"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scorpiotzh/toolib"
)

type ReqTransactionDetail struct {
	AccountId    string `json:"account_id"`
	ChainId      string `json:"chain_id"`
	CallHash     string `json:"call_hash"`
	BlockCreated uint64 `json:"block_created"`
	IndexCreated uint32 `json:"index_created"`
}

type EventData struct {
	AccountId     string             `json:"account_id"`
	Status        tables.EventStatus `json:"status"`
	Timestamp     int64              `json:"timestamp"`
	ExtrinsicHash string             `json:"extrinsic_hash,omitempty"`
	EventBlock    uint64             `json:"event_block,omitempty"`
	EventIndex    uint32             `json:"event_index,omitempty"`
}

type RespTransactionDetail struct {
	Transaction TransactionData `json:"transaction"`
	CallArgs    string          `json:"call_args,omitempty"`
	Events      []EventData     `json:"events"`
	Threshold   uint32          `json:"threshold"`
	Signatories []string        `json:"signatories"`
}

func (h *HttpHandle) TransactionDetail(ctx *gin.Context) {
	var (
		funcName               = "TransactionDetail"
		clientIp, remoteAddrIP = GetClientIp(ctx)
		req                    ReqTransactionDetail
		apiResp                api_code.ApiResp
		err                    error
	)

	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error("ShouldBindJSON err: ", err.Error(), funcName, clientIp)
		apiResp.ApiRespErr(api_code.ApiCodeParamsInvalid, "params invalid")
		ctx.JSON(http.StatusOK, apiResp)
		return
	}
	log.Info("ApiReq:", funcName, clientIp, remoteAddrIP, toolib.JsonString(req))

	if err = h.doTransactionDetail(&req, &apiResp); err != nil {
		log.Error("doTransactionDetail err:", err.Error(), funcName, clientIp)
	}

	ctx.JSON(http.StatusOK, apiResp)
}

func (h *HttpHandle) doTransactionDetail(req *ReqTransactionDetail, apiResp *api_code.ApiResp) error {
	tx, err := h.DbDao.GetMultisigTx(req.AccountId, req.ChainId, req.CallHash, req.BlockCreated, req.IndexCreated)
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to query transaction")
		return fmt.Errorf("GetMultisigTx err: %s", err.Error())
	}
	if tx.Id == 0 {
		apiResp.ApiRespErr(api_code.ApiCodeTransactionNotExist, "transaction not exist")
		return nil
	}

	events, err := h.DbDao.GetEventsByTxKey(tx.TxKey())
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to query events")
		return fmt.Errorf("GetEventsByTxKey err: %s", err.Error())
	}

	acc, err := h.DbDao.GetMultisigAccount(req.AccountId, req.ChainId)
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to query account")
		return fmt.Errorf("GetMultisigAccount err: %s", err.Error())
	}

	var resp RespTransactionDetail
	resp.Transaction = h.txToTransactionData(&tx)
	resp.CallArgs = tx.CallArgs
	resp.Events = make([]EventData, 0, len(events))
	for _, v := range events {
		resp.Events = append(resp.Events, EventData{
			AccountId:     v.AccountId,
			Status:        v.Status,
			Timestamp:     v.Timestamp,
			ExtrinsicHash: v.ExtrinsicHash,
			EventBlock:    v.EventBlock,
			EventIndex:    v.EventIndex,
		})
	}
	resp.Threshold = acc.Threshold
	resp.Signatories = acc.SignatoryList()

	apiResp.ApiRespOK(resp)
	return nil
}
