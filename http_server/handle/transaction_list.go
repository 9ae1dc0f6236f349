package handle

import (
	"fmt"
	"multisig_svr/config"
	"multisig_svr/http_server/api_code"
	"multisig_svr/tables"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogf/gf/v2/util/gconv"
	"github.com/scorpiotzh/toolib"
	"github.com/shopspring/decimal"
	"github.com/sjatsh/uint128"
)

type ReqTransactionList struct {
	Pagination
	AccountIds []string `json:"account_ids"`
	ChainId    string   `json:"chain_id"`
}

type TransactionData struct {
	AccountId    string          `json:"account_id"`
	ChainId      string          `json:"chain_id"`
	CallHash     string          `json:"call_hash"`
	BlockCreated uint64          `json:"block_created"`
	IndexCreated uint32          `json:"index_created"`
	Status       tables.TxStatus `json:"status"`
	Timestamp    int64           `json:"timestamp"`
	Description  string          `json:"description"`
	CallModule   string          `json:"call_module"`
	CallMethod   string          `json:"call_method"`
	Amount       string          `json:"amount,omitempty"`
	AmountRaw    string          `json:"amount_raw,omitempty"`
	To           string          `json:"to,omitempty"`
	Approvals    int             `json:"approvals"`
}

type RespTransactionList struct {
	Total int64             `json:"total"`
	List  []TransactionData `json:"list"`
}

func (h *HttpHandle) TransactionList(ctx *gin.Context) {
	var (
		funcName               = "TransactionList"
		clientIp, remoteAddrIP = GetClientIp(ctx)
		req                    ReqTransactionList
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

	if err = h.doTransactionList(&req, &apiResp); err != nil {
		log.Error("doTransactionList err:", err.Error(), funcName, clientIp)
	}

	ctx.JSON(http.StatusOK, apiResp)
}

func (h *HttpHandle) doTransactionList(req *ReqTransactionList, apiResp *api_code.ApiResp) error {
	var resp RespTransactionList
	resp.List = make([]TransactionData, 0)

	if len(req.AccountIds) == 0 {
		apiResp.ApiRespErr(api_code.ApiCodeParamsInvalid, "account_ids is empty")
		return nil
	}

	list, err := h.DbDao.GetMultisigTxList(req.AccountIds, req.GetLimit(), req.GetOffset())
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to query transaction list")
		return fmt.Errorf("GetMultisigTxList err: %s", err.Error())
	}
	total, err := h.DbDao.GetMultisigTxTotal(req.AccountIds)
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to count transaction list")
		return fmt.Errorf("GetMultisigTxTotal err: %s", err.Error())
	}

	txKeys := make([]string, 0, len(list))
	for i := range list {
		txKeys = append(txKeys, list[i].TxKey())
	}
	events, err := h.DbDao.GetEventsByTxKeys(txKeys)
	if err != nil {
		apiResp.ApiRespErr(api_code.ApiCodeDbError, "failed to query events")
		return fmt.Errorf("GetEventsByTxKeys err: %s", err.Error())
	}
	approvals := make(map[string]int)
	for _, ev := range events {
		if ev.Status == tables.EventStatusPendingSigned || ev.Status == tables.EventStatusSigned {
			approvals[ev.TxKey]++
		}
	}

	for i := range list {
		data := h.txToTransactionData(&list[i])
		data.Approvals = approvals[list[i].TxKey()]
		resp.List = append(resp.List, data)
	}
	resp.Total = total

	apiResp.ApiRespOK(resp)
	return nil
}

type transferArgs struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (h *HttpHandle) txToTransactionData(tx *tables.TableMultisigTxInfo) TransactionData {
	data := TransactionData{
		AccountId:    tx.AccountId,
		ChainId:      tx.ChainId,
		CallHash:     tx.CallHash,
		BlockCreated: tx.BlockCreated,
		IndexCreated: tx.IndexCreated,
		Status:       tx.Status,
		Timestamp:    tx.Timestamp,
		Description:  tx.Description,
		CallModule:   tx.CallModule,
		CallMethod:   tx.CallMethod,
	}
	if tx.CallMethod != "transfer" || tx.CallArgs == "" {
		return data
	}
	var args transferArgs
	if err := gconv.Struct(tx.CallArgs, &args); err != nil {
		log.Warn("txToTransactionData call args invalid:", tx.TxKey())
		return data
	}
	data.To = args.To
	data.AmountRaw = args.Amount
	amount, err := uint128.FromString(args.Amount)
	if err != nil {
		log.Warn("txToTransactionData amount invalid:", tx.TxKey(), args.Amount)
		return data
	}
	if node := config.GetChainNode(tx.ChainId); node != nil && node.Decimals > 0 {
		dec := decimal.NewFromBigInt(amount.Big(), 0).
			Div(decimal.New(1, node.Decimals))
		data.Amount = fmt.Sprintf("%s %s", dec.String(), node.Symbol)
	}
	return data
}
