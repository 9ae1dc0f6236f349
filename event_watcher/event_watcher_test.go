package event_watcher

import (
	"context"
	"fmt"
	"multisig_svr/chain"
	"multisig_svr/tables"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeAccounts struct {
	mu   sync.Mutex
	list []tables.TableMultisigAccountInfo
}

func (f *fakeAccounts) GetMultisigAccountList() ([]tables.TableMultisigAccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tables.TableMultisigAccountInfo, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeAccounts) set(list []tables.TableMultisigAccountInfo) {
	f.mu.Lock()
	f.list = list
	f.mu.Unlock()
}

type fakeSubClient struct {
	chainId string

	mu        sync.Mutex
	status    chain.ConnStatus
	subCount  int
	unsubs    int
	failAfter int // fail the Nth subscribe call of a rebuild, 0 = never
	calls     int
}

func (c *fakeSubClient) ChainId() string       { return c.chainId }
func (c *fakeSubClient) AddressPrefix() uint16 { return 42 }

func (c *fakeSubClient) ConnStatus() chain.ConnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *fakeSubClient) setStatus(s chain.ConnStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *fakeSubClient) subscribe() (chain.Unsubscribe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failAfter > 0 && c.calls >= c.failAfter {
		return nil, fmt.Errorf("pallet unsupported")
	}
	c.subCount++
	return func() {
		c.mu.Lock()
		c.unsubs++
		c.subCount--
		c.mu.Unlock()
	}, nil
}

func (c *fakeSubClient) SubscribeMultisigStorage(ctx context.Context, address string, cb func(payload interface{})) (chain.Unsubscribe, error) {
	return c.subscribe()
}

func (c *fakeSubClient) SubscribeEvents(ctx context.Context, kind chain.EventKind, address string, cb func(payload interface{})) (chain.Unsubscribe, error) {
	return c.subscribe()
}

func (c *fakeSubClient) QueryCallData(ctx context.Context, block uint64, index uint32) ([]byte, error) {
	return nil, nil
}

func (c *fakeSubClient) DecodeCall(data []byte) (*chain.DecodedCall, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *fakeSubClient) BlockTimestamp(ctx context.Context, block uint64) (int64, error) {
	return 0, nil
}

func (c *fakeSubClient) counts() (subs, unsubs int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subCount, c.unsubs
}

const testAccountA = "0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"
const testAccountB = "0x90b5ab205c6974c9ea841be688864633dc9ca8a357843eeacf2314649965fe22"

func account(chainId, accountId string) tables.TableMultisigAccountInfo {
	return tables.TableMultisigAccountInfo{ChainId: chainId, AccountId: accountId}
}

func newTestWatcher(db AccountReader, clients ...*fakeSubClient) *Watcher {
	m := make(map[string]chain.Client)
	for _, c := range clients {
		m[c.chainId] = c
	}
	w := &Watcher{
		Ctx:          context.Background(),
		Wg:           &sync.WaitGroup{},
		DB:           db,
		Clients:      m,
		EventHandler: func(chainId string, payload interface{}) {},
		Debounce:     time.Millisecond * 10,
	}
	w.Init()
	return w
}

func TestEnsureSubscriptionsOpensPerAccount(t *testing.T) {
	client := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{
		account("polkadot", testAccountA),
		account("polkadot", testAccountB),
	})
	w := newTestWatcher(db, client)

	assert.NoError(t, w.EnsureSubscriptions())

	// storage watch + execution + cancellation per account
	subs, unsubs := client.counts()
	assert.Equal(t, 6, subs)
	assert.Equal(t, 0, unsubs)
}

func TestEnsureSubscriptionsIdempotent(t *testing.T) {
	client := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{account("polkadot", testAccountA)})
	w := newTestWatcher(db, client)

	assert.NoError(t, w.EnsureSubscriptions())
	assert.NoError(t, w.EnsureSubscriptions())

	subs, unsubs := client.counts()
	assert.Equal(t, 3, subs)
	assert.Equal(t, 0, unsubs)
}

func TestEnsureSubscriptionsRebuildOnSetChange(t *testing.T) {
	client := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{account("polkadot", testAccountA)})
	w := newTestWatcher(db, client)

	assert.NoError(t, w.EnsureSubscriptions())

	db.set([]tables.TableMultisigAccountInfo{
		account("polkadot", testAccountA),
		account("polkadot", testAccountB),
	})
	assert.NoError(t, w.EnsureSubscriptions())

	// the old set's three subscriptions closed exactly once, six live now
	subs, unsubs := client.counts()
	assert.Equal(t, 6, subs)
	assert.Equal(t, 3, unsubs)
}

func TestEnsureSubscriptionsDisconnectTearsDown(t *testing.T) {
	client := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{account("polkadot", testAccountA)})
	w := newTestWatcher(db, client)

	assert.NoError(t, w.EnsureSubscriptions())
	client.setStatus(chain.ConnStatusDisconnected)
	assert.NoError(t, w.EnsureSubscriptions())

	subs, unsubs := client.counts()
	assert.Equal(t, 0, subs)
	assert.Equal(t, 3, unsubs)

	// reconnect restores the set
	client.setStatus(chain.ConnStatusConnected)
	assert.NoError(t, w.EnsureSubscriptions())
	subs, _ = client.counts()
	assert.Equal(t, 3, subs)
}

func TestEnsureSubscriptionsChainFailureIsolated(t *testing.T) {
	good := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	bad := &fakeSubClient{chainId: "kusama", status: chain.ConnStatusConnected, failAfter: 2}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{
		account("polkadot", testAccountA),
		account("kusama", testAccountA),
	})
	w := newTestWatcher(db, good, bad)

	assert.NoError(t, w.EnsureSubscriptions())

	// the failing chain rolled its partial subscriptions back
	subs, _ := bad.counts()
	assert.Equal(t, 0, subs)

	// the healthy chain is fully subscribed
	subs, _ = good.counts()
	assert.Equal(t, 3, subs)
}

func TestShutdownClosesEverything(t *testing.T) {
	client := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{account("polkadot", testAccountA)})
	w := newTestWatcher(db, client)

	assert.NoError(t, w.EnsureSubscriptions())
	w.Shutdown()

	subs, unsubs := client.counts()
	assert.Equal(t, 0, subs)
	assert.Equal(t, 3, unsubs)
}

func TestColdStartSidecarSubscribes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cursor":"","events":[]}`))
	}))
	defer srv.Close()

	// a freshly constructed client with no poll loop running yet must still
	// let the first rebuild open subscriptions
	client := chain.NewSidecarClient("polkadot", srv.URL, 42)
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{account("polkadot", testAccountA)})

	m := map[string]chain.Client{"polkadot": client}
	w := &Watcher{
		Ctx:          context.Background(),
		Wg:           &sync.WaitGroup{},
		DB:           db,
		Clients:      m,
		EventHandler: func(chainId string, payload interface{}) {},
		Debounce:     time.Millisecond * 10,
	}
	w.Init()

	assert.NoError(t, w.EnsureSubscriptions())
	w.mu.Lock()
	active := len(w.active)
	w.mu.Unlock()
	assert.Equal(t, 1, active)
	assert.Equal(t, chain.ConnStatusConnected, client.ConnStatus())

	w.Shutdown()
}

func TestTriggerDebounceCoalesces(t *testing.T) {
	client := &fakeSubClient{chainId: "polkadot", status: chain.ConnStatusConnected}
	db := &fakeAccounts{}
	db.set([]tables.TableMultisigAccountInfo{account("polkadot", testAccountA)})

	ctx, cancel := context.WithCancel(context.Background())
	w := newTestWatcher(db, client)
	w.Ctx = ctx
	w.Run()

	for i := 0; i < 5; i++ {
		w.Trigger()
	}
	time.Sleep(time.Millisecond * 100)

	subs, unsubs := client.counts()
	assert.Equal(t, 3, subs)
	assert.Equal(t, 0, unsubs)

	cancel()
	w.Wg.Wait()
	subs, _ = client.counts()
	assert.Equal(t, 0, subs)
}