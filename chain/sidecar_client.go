package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parnurzeal/gorequest"
)

const (
	sidecarPollInterval  = time.Second * 6
	sidecarTimeout       = time.Second * 10
	sidecarHealthTimeout = time.Second * 3
)

// SidecarClient implements Client against a per-chain indexer sidecar. The
// sidecar owns the websocket connection to the node and exposes decoded
// storage/event/call data over HTTP; this client polls it with a cursor per
// subscription. Reconnect/timeout policy is the sidecar's problem.
type SidecarClient struct {
	chainId       string
	addressPrefix uint16
	baseUrl       string
	connected     int32
	lastCheck     int64

	mu   sync.Mutex
	subs map[uint64]context.CancelFunc
	next uint64
}

func NewSidecarClient(chainId, baseUrl string, addressPrefix uint16) *SidecarClient {
	return &SidecarClient{
		chainId:       chainId,
		addressPrefix: addressPrefix,
		baseUrl:       strings.TrimSuffix(baseUrl, "/"),
		subs:          make(map[uint64]context.CancelFunc),
	}
}

func (c *SidecarClient) ChainId() string {
	return c.chainId
}

func (c *SidecarClient) AddressPrefix() uint16 {
	return c.addressPrefix
}

// ConnStatus reports sidecar reachability. With no live polls the last
// result goes stale, so it re-probes the health endpoint at most once per
// poll interval; without this a fresh client would report Disconnected
// forever and the watcher would never open its first subscription.
func (c *SidecarClient) ConnStatus() ConnStatus {
	last := atomic.LoadInt64(&c.lastCheck)
	if time.Since(time.Unix(0, last)) > sidecarPollInterval {
		c.probeHealth()
	}
	if atomic.LoadInt32(&c.connected) == 1 {
		return ConnStatusConnected
	}
	return ConnStatusDisconnected
}

func (c *SidecarClient) probeHealth() {
	resp, _, errs := gorequest.New().Get(c.baseUrl + "/health").
		Timeout(sidecarHealthTimeout).End()
	ok := len(errs) == 0 && resp != nil && resp.StatusCode == http.StatusOK
	if !ok {
		log.Warn("sidecar health probe failed:", c.chainId)
	}
	c.setConnected(ok)
}

func (c *SidecarClient) setConnected(ok bool) {
	var v int32
	if ok {
		v = 1
	}
	atomic.StoreInt32(&c.connected, v)
	atomic.StoreInt64(&c.lastCheck, time.Now().UnixNano())
}

type sidecarEventsResp struct {
	Cursor string                   `json:"cursor"`
	Events []map[string]interface{} `json:"events"`
}

func (c *SidecarClient) SubscribeEvents(ctx context.Context, kind EventKind, address string, cb func(payload interface{})) (Unsubscribe, error) {
	url := fmt.Sprintf("%s/events/%s/%s", c.baseUrl, kind.String(), address)
	return c.poll(ctx, url, cb)
}

func (c *SidecarClient) SubscribeMultisigStorage(ctx context.Context, address string, cb func(payload interface{})) (Unsubscribe, error) {
	url := fmt.Sprintf("%s/storage/multisig/%s", c.baseUrl, address)
	return c.poll(ctx, url, cb)
}

// poll drives one subscription: a cursor-carrying GET every interval, each
// returned payload handed to cb in order. The returned Unsubscribe stops
// the loop and is safe to invoke more than once.
func (c *SidecarClient) poll(ctx context.Context, url string, cb func(payload interface{})) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = cancel
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(sidecarPollInterval)
		defer ticker.Stop()
		cursor := ""
		for {
			select {
			case <-ticker.C:
				var resp sidecarEventsResp
				_, _, errs := gorequest.New().Get(url).Param("cursor", cursor).
					Timeout(sidecarTimeout).EndStruct(&resp)
				if len(errs) > 0 {
					c.setConnected(false)
					log.Warn("sidecar poll err:", c.chainId, errs)
					continue
				}
				c.setConnected(true)
				cursor = resp.Cursor
				for _, ev := range resp.Events {
					cb(ev)
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return func() {
		c.mu.Lock()
		if stop, ok := c.subs[id]; ok {
			delete(c.subs, id)
			stop()
		}
		c.mu.Unlock()
	}, nil
}

type sidecarCallDataResp struct {
	CallData string `json:"call_data"`
}

func (c *SidecarClient) QueryCallData(ctx context.Context, block uint64, index uint32) ([]byte, error) {
	url := fmt.Sprintf("%s/blocks/%d/extrinsics/%d/call_data", c.baseUrl, block, index)
	var resp sidecarCallDataResp
	_, _, errs := gorequest.New().Get(url).Timeout(sidecarTimeout).EndStruct(&resp)
	if len(errs) > 0 {
		return nil, fmt.Errorf("sidecar call_data err: %v", errs)
	}
	if resp.CallData == "" {
		return nil, nil
	}
	return hex.DecodeString(strings.TrimPrefix(resp.CallData, "0x"))
}

type sidecarCallResp struct {
	Module string `json:"module"`
	Method string `json:"method"`
	Args   string `json:"args"`
}

func (c *SidecarClient) DecodeCall(data []byte) (*DecodedCall, error) {
	url := fmt.Sprintf("%s/decode/call", c.baseUrl)
	var resp sidecarCallResp
	_, _, errs := gorequest.New().Post(url).Timeout(sidecarTimeout).
		SendStruct(map[string]string{"call_data": "0x" + hex.EncodeToString(data)}).
		EndStruct(&resp)
	if len(errs) > 0 {
		return nil, fmt.Errorf("sidecar decode err: %v", errs)
	}
	if resp.Method == "" {
		return nil, fmt.Errorf("sidecar decode: empty result")
	}
	return &DecodedCall{Module: resp.Module, Method: resp.Method, Args: resp.Args}, nil
}

type sidecarBlockResp struct {
	Timestamp int64 `json:"timestamp"`
}

func (c *SidecarClient) BlockTimestamp(ctx context.Context, block uint64) (int64, error) {
	url := fmt.Sprintf("%s/blocks/%d", c.baseUrl, block)
	var resp sidecarBlockResp
	_, _, errs := gorequest.New().Get(url).Timeout(sidecarTimeout).EndStruct(&resp)
	if len(errs) > 0 {
		return 0, fmt.Errorf("sidecar block err: %v", errs)
	}
	return resp.Timestamp, nil
}
