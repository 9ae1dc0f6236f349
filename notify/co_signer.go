package notify

import (
	"context"
	"multisig_svr/txstore"
	"sync"
	"time"

	"github.com/parnurzeal/gorequest"
)

// CoSignerMsg is posted to the co-signer messaging webhook after a local
// approval or cancellation lands, so other signatories' devices learn about
// it without waiting for the chain.
type CoSignerMsg struct {
	Action      string   `json:"action"`
	ChainId     string   `json:"chain_id"`
	AccountId   string   `json:"account_id"`
	Signatory   string   `json:"signatory"`
	CallHash    string   `json:"call_hash"`
	MessagingTo []string `json:"messaging_to,omitempty"`
}

// MessagingIdReader resolves a multisig account's co-signer messaging ids;
// *dao.DbDao fits via a small adapter in cmd.
type MessagingIdReader func(accountId, chainId string) []string

// RunStoreNotifier consumes the store's event stream and fires webhook
// notifications. Strictly fire-and-forget: failures are logged and never
// reach the store's own completion.
func RunStoreNotifier(ctx context.Context, wg *sync.WaitGroup, events <-chan txstore.StoreEvent, webhookUrl string, messagingIds MessagingIdReader) {
	wg.Add(1)
	go func() {
		defer RecoverPanic()
		defer wg.Done()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				sendCoSignerNotify(webhookUrl, ev, messagingIds)
			case <-ctx.Done():
				log.Info("store notifier done")
				return
			}
		}
	}()
}

func sendCoSignerNotify(webhookUrl string, ev txstore.StoreEvent, messagingIds MessagingIdReader) {
	if webhookUrl == "" {
		return
	}
	action := "approve"
	if ev.Kind == txstore.StoreEventLocalCancelled {
		action = "cancel"
	}
	msg := CoSignerMsg{
		Action:    action,
		ChainId:   ev.ChainId,
		AccountId: ev.AccountId,
		Signatory: ev.Signatory,
		CallHash:  ev.CallHash,
	}
	if messagingIds != nil {
		msg.MessagingTo = messagingIds(ev.AccountId, ev.ChainId)
	}
	_, _, errs := gorequest.New().Post(webhookUrl).Timeout(time.Second * 10).SendStruct(&msg).End()
	if len(errs) > 0 {
		log.Error("sendCoSignerNotify req err:", ev.TxKey, errs)
	} else {
		log.Info("sendCoSignerNotify ok:", ev.TxKey, ev.Signatory)
	}
}
