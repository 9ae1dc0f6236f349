package handle

import (
	"multisig_svr/http_server/api_code"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RespVersion struct {
	Version string `json:"version"`
}

func (h *HttpHandle) Version(ctx *gin.Context) {
	var apiResp api_code.ApiResp
	apiResp.ApiRespOK(RespVersion{Version: "1.0.0"})
	ctx.JSON(http.StatusOK, apiResp)
}
