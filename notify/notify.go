package notify

import (
	"fmt"
	"multisig_svr/prom"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/parnurzeal/gorequest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/scorpiotzh/mylog"
)

var (
	log           = mylog.NewLogger("notify", mylog.LevelDebug)
	counterNotify = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify",
	}, []string{"title", "text"})
)

const (
	LarkNotifyUrl = "https://open.larksuite.com/open-apis/bot/v2/hook/%s"
)

func init() {
	prom.PromRegister.MustRegister(counterNotify)
}

type MsgContent struct {
	Tag      string `json:"tag"`
	UnEscape bool   `json:"un_escape"`
	Text     string `json:"text"`
}
type MsgData struct {
	Email   string `json:"email"`
	MsgType string `json:"msg_type"`
	Content struct {
		Post struct {
			ZhCn struct {
				Title   string         `json:"title"`
				Content [][]MsgContent `json:"content"`
			} `json:"zh_cn"`
		} `json:"post"`
	} `json:"content"`
}

func SendLarkTextNotify(key, title, text string) {
	if key == "" || text == "" {
		return
	}
	counterNotify.WithLabelValues(title, text).Inc()
	var data MsgData
	data.Email = ""
	data.MsgType = "post"
	data.Content.Post.ZhCn.Title = fmt.Sprintf("multisig-svr: %s", title)
	data.Content.Post.ZhCn.Content = [][]MsgContent{
		{
			MsgContent{
				Tag:      "text",
				UnEscape: false,
				Text:     text,
			},
		},
	}
	url := fmt.Sprintf(LarkNotifyUrl, key)
	_, body, errs := gorequest.New().Post(url).Timeout(time.Second * 10).SendStruct(&data).End()
	if len(errs) > 0 {
		log.Error("SendLarkTextNotify req err:", errs)
	} else {
		log.Info("SendLarkTextNotify req:", body)
	}
}

func GetLarkTextNotifyStr(funcName, keyInfo, errInfo string) string {
	msg := fmt.Sprintf(`func：%s
key：%s
error：%s`, funcName, keyInfo, errInfo)
	return msg
}

// RecoverPanic contains a panic in a long-running goroutine: captured to
// sentry and logged, never re-thrown.
func RecoverPanic() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(time.Second * 2)
		log.Error("recovered panic:", r)
	}
}
