package task

import (
	"context"
	"fmt"
	"multisig_svr/chain"
	"multisig_svr/config"
	"multisig_svr/event_watcher"
	"multisig_svr/tables"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pollAccounts struct {
	mu   sync.Mutex
	list []tables.TableMultisigAccountInfo
}

func (f *pollAccounts) GetMultisigAccountList() ([]tables.TableMultisigAccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tables.TableMultisigAccountInfo, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *pollAccounts) set(list []tables.TableMultisigAccountInfo) {
	f.mu.Lock()
	f.list = list
	f.mu.Unlock()
}

// pollClient is always connected; the test relies on no connectivity
// transition ever happening.
type pollClient struct {
	chainId string

	mu       sync.Mutex
	subCount int
}

func (c *pollClient) ChainId() string              { return c.chainId }
func (c *pollClient) AddressPrefix() uint16        { return 42 }
func (c *pollClient) ConnStatus() chain.ConnStatus { return chain.ConnStatusConnected }

func (c *pollClient) subscribe() (chain.Unsubscribe, error) {
	c.mu.Lock()
	c.subCount++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.subCount--
		c.mu.Unlock()
	}, nil
}

func (c *pollClient) SubscribeMultisigStorage(ctx context.Context, address string, cb func(payload interface{})) (chain.Unsubscribe, error) {
	return c.subscribe()
}

func (c *pollClient) SubscribeEvents(ctx context.Context, kind chain.EventKind, address string, cb func(payload interface{})) (chain.Unsubscribe, error) {
	return c.subscribe()
}

func (c *pollClient) QueryCallData(ctx context.Context, block uint64, index uint32) ([]byte, error) {
	return nil, nil
}

func (c *pollClient) DecodeCall(data []byte) (*chain.DecodedCall, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *pollClient) BlockTimestamp(ctx context.Context, block uint64) (int64, error) {
	return 0, nil
}

func (c *pollClient) subs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subCount
}

func TestConnPollPicksUpNewAccounts(t *testing.T) {
	config.Cfg.Sync.ConnPollSec = 1

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	client := &pollClient{chainId: "polkadot"}
	clients := map[string]chain.Client{"polkadot": client}
	db := &pollAccounts{}

	w := &event_watcher.Watcher{
		Ctx:          ctx,
		Wg:           wg,
		DB:           db,
		Clients:      clients,
		EventHandler: func(chainId string, payload interface{}) {},
		Debounce:     time.Millisecond * 10,
	}
	w.Init()
	w.Run()

	st := SyncTask{
		Ctx:     ctx,
		Wg:      wg,
		Watcher: w,
		Clients: clients,
	}
	st.RunConnPoll()

	// no tracked accounts yet, nothing to subscribe
	time.Sleep(time.Millisecond * 1200)
	assert.Equal(t, 0, client.subs())

	// the wallet subsystem writes an account row; the connection status
	// never changes, the next poll tick must still rebuild
	db.set([]tables.TableMultisigAccountInfo{{
		ChainId:   "polkadot",
		AccountId: "0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48",
	}})

	deadline := time.Now().Add(time.Second * 5)
	for client.subs() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("new account never produced a subscription rebuild")
		}
		time.Sleep(time.Millisecond * 20)
	}
	assert.Equal(t, 3, client.subs())

	cancel()
	wg.Wait()
	assert.Equal(t, 0, client.subs())
}
