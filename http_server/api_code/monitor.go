package api_code

import (
	"bytes"
	"encoding/json"
	"fmt"
	"multisig_svr/prom"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/scorpiotzh/mylog"
)

var (
	log        = mylog.NewLogger("api_code", mylog.LevelDebug)
	ApiSummary = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: "api",
	}, []string{"method", "ip", "http_status", "err_no", "err_msg"})
)

func init() {
	prom.PromRegister.MustRegister(ApiSummary)
}

func DoMonitorLog(method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startTime := time.Now()
		ip := getClientIp(ctx)

		blw := &bodyWriter{body: bytes.NewBufferString(""), ResponseWriter: ctx.Writer}
		ctx.Writer = blw
		ctx.Next()
		statusCode := ctx.Writer.Status()

		var resp ApiResp
		if statusCode == http.StatusOK && blw.body.String() != "" {
			if err := json.Unmarshal(blw.body.Bytes(), &resp); err != nil {
				log.Warn("DoMonitorLog Unmarshal err:", method, err)
				return
			}
			if resp.ErrNo != ApiCodeSuccess {
				log.Warn("DoMonitorLog:", method, resp.ErrNo, resp.ErrMsg)
			}
		}
		ApiSummary.WithLabelValues(method, ip, fmt.Sprint(statusCode), fmt.Sprint(resp.ErrNo), resp.ErrMsg).Observe(time.Since(startTime).Seconds())
	}
}

func getClientIp(ctx *gin.Context) string {
	return fmt.Sprintf("%v", ctx.Request.Header.Get("X-Real-IP"))
}

type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (b bodyWriter) Write(bys []byte) (int, error) {
	b.body.Write(bys)
	return b.ResponseWriter.Write(bys)
}
