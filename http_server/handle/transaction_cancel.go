package handle

import (
	"multisig_svr/http_server/api_code"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labstack/gommon/random"
	"github.com/scorpiotzh/toolib"
)

func (h *HttpHandle) TransactionCancel(ctx *gin.Context) {
	var (
		funcName               = "TransactionCancel"
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

	if err = h.doTransactionInitiate(&req, &apiResp, true); err != nil {
		log.Error("doTransactionInitiate err:", err.Error(), funcName, traceId, clientIp)
	}

	ctx.JSON(http.StatusOK, apiResp)
}
