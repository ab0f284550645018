package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/stats"
	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/helius"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
	monitor_tracker "github.com/one-of-one-tools/marketsync/src/utils/monitoring/tracker"
)

const (
	testSecret = "test-secret"
	testMint   = "So11111111111111111111111111111111111111112"
)

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type ServerTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *ServerTestSuite) SetupSuite() {
	s.config = config.Default()
	s.config.Server.WebhookSecret = testSecret
	s.config.Server.DispatchTimeout = 5 * time.Second
}

type fakeQueue struct {
	mtx       sync.Mutex
	delay     time.Duration
	failNames map[string]bool
	created   []string
	canceled  []string
}

func (self *fakeQueue) CreateTask(ctx context.Context, name, callbackUrl string, headers map[string]string, body []byte) error {
	if self.delay > 0 {
		select {
		case <-time.After(self.delay):
		case <-ctx.Done():
			self.mtx.Lock()
			self.canceled = append(self.canceled, name)
			self.mtx.Unlock()
			return ctx.Err()
		}
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failNames[name] {
		return errors.New("queue rejected task")
	}
	self.created = append(self.created, name)
	return nil
}

func (self *fakeQueue) names() []string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return append([]string{}, self.created...)
}

func (self *fakeQueue) cancellations() []string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return append([]string{}, self.canceled...)
}

type fakeServerStore struct {
	collections map[string]*model.Collection
	seen        map[string]bool
	statsWrites int
	statsErr    error
}

func newFakeServerStore() *fakeServerStore {
	return &fakeServerStore{
		collections: make(map[string]*model.Collection),
		seen:        make(map[string]bool),
	}
}

func (self *fakeServerStore) GetCollection(ctx context.Context, slug string) (*model.Collection, error) {
	for _, collection := range self.collections {
		if collection.Slug == slug {
			return collection, nil
		}
	}
	return nil, errors.New("not found")
}

func (self *fakeServerStore) GetCollectionForMint(ctx context.Context, mint string) (*model.Collection, error) {
	return self.collections[mint], nil
}

func (self *fakeServerStore) SetFilters(ctx context.Context, slug, collectionAddress, firstVerifiedCreator string, totalSupply int) error {
	return nil
}

func (self *fakeServerStore) AddMintsAsTracked(ctx context.Context, slug string, mints []string) error {
	return nil
}

func (self *fakeServerStore) AddEvent(ctx context.Context, slug string, event *events.MarketEvent, raw []byte) (bool, error) {
	key := fmt.Sprintf("%s/%s/%s", slug, event.Signature, event.Mint)
	if self.seen[key] {
		return false, nil
	}
	self.seen[key] = true
	return true, nil
}

func (self *fakeServerStore) RemoveEvent(ctx context.Context, slug, signature, mint string) error {
	delete(self.seen, fmt.Sprintf("%s/%s/%s", slug, signature, mint))
	return nil
}

func (self *fakeServerStore) SetStats(ctx context.Context, slug string, aggregate *stats.Aggregate) error {
	if self.statsErr != nil {
		return self.statsErr
	}
	self.statsWrites++
	return nil
}

func (self *fakeServerStore) Aggregate(collection *model.Collection) (*stats.Aggregate, error) {
	return new(stats.Aggregate), nil
}

func (self *fakeServerStore) GetDialectSubscriptionsByUser(ctx context.Context, userId string) ([]model.DialectSubscription, error) {
	return nil, nil
}

func (self *fakeServerStore) GetDiscordSubscriptionsByUser(ctx context.Context, userId string) ([]model.DiscordSubscription, error) {
	return nil, nil
}

func (self *fakeServerStore) SetDialectSubscription(ctx context.Context, subscription *model.DialectSubscription) error {
	return nil
}

func (self *fakeServerStore) RemoveDialectSubscription(ctx context.Context, userId, scope string) error {
	return nil
}

func (self *fakeServerStore) SetDiscordSubscription(ctx context.Context, subscription *model.DiscordSubscription) error {
	return nil
}

func (self *fakeServerStore) RemoveDiscordSubscription(ctx context.Context, userId, scope string) error {
	return nil
}

type fakeServerFloors struct{}

func (self *fakeServerFloors) Recalculate(ctx context.Context, collection *model.Collection) (*stats.Floor, error) {
	return nil, nil
}

func (s *ServerTestSuite) newServer(store Store, queue TaskQueue) *Server {
	monitor := monitor_tracker.NewMonitor().
		WithMaxHistorySize(5)

	return NewServer(s.config).
		WithMonitor(monitor).
		WithStore(store).
		WithTaskQueue(queue).
		WithFloorSource(new(fakeServerFloors))
}

func (s *ServerTestSuite) router(srv *Server) *gin.Engine {
	router := gin.New()
	router.POST("/v1/webhook", srv.onWebhook())
	router.POST("/v1/webhook/handle-task", srv.onHandleTask())
	return router
}

func transactionBody(signature string) []byte {
	transaction := helius.EnrichedTransaction{
		Signature: signature,
		Type:      "NFT_SALE",
		Timestamp: time.Now().Unix(),
		Events: helius.TransactionEvents{
			NFT: &helius.NFTEvent{
				Type:      "NFT_SALE",
				Signature: signature,
				Amount:    2_000_000_000,
				Timestamp: time.Now().Unix(),
				NFTs:      []helius.NFT{{Mint: testMint}},
			},
		},
	}
	body, _ := json.Marshal(&transaction)
	return body
}

func (s *ServerTestSuite) post(router *gin.Engine, path, secret string, body []byte) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if secret != "" {
		request.Header.Set("Authorization", secret)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func (s *ServerTestSuite) TestWebhookRejectsBadSecret() {
	srv := s.newServer(newFakeServerStore(), new(fakeQueue))
	router := s.router(srv)

	recorder := s.post(router, "/v1/webhook", "wrong", []byte("[]"))
	assert.Equal(s.T(), http.StatusUnauthorized, recorder.Code)
}

func (s *ServerTestSuite) TestPartialDispatch() {
	queue := &fakeQueue{
		failNames: map[string]bool{TaskName(testMint, "sig-2"): true},
	}
	srv := s.newServer(newFakeServerStore(), queue)
	router := s.router(srv)

	batch := [][]byte{
		transactionBody("sig-1"),
		transactionBody("sig-2"),
		transactionBody("sig-3"),
	}
	body := []byte(fmt.Sprintf("[%s,%s,%s]", batch[0], batch[1], batch[2]))

	recorder := s.post(router, "/v1/webhook", testSecret, body)
	assert.Equal(s.T(), http.StatusOK, recorder.Code)

	var out struct {
		Success  bool `json:"success"`
		Enqueued int  `json:"enqueued"`
		Failed   int  `json:"failed"`
	}
	assert.NoError(s.T(), json.Unmarshal(recorder.Body.Bytes(), &out))
	assert.True(s.T(), out.Success)
	assert.Equal(s.T(), 2, out.Enqueued)
	assert.Equal(s.T(), 1, out.Failed)
	assert.ElementsMatch(s.T(), []string{TaskName(testMint, "sig-1"), TaskName(testMint, "sig-3")}, queue.created)
}

func (s *ServerTestSuite) TestHandleTaskRejectsBadSecret() {
	srv := s.newServer(newFakeServerStore(), new(fakeQueue))
	router := s.router(srv)

	recorder := s.post(router, "/v1/webhook/handle-task", "", transactionBody("sig-1"))
	assert.Equal(s.T(), http.StatusUnauthorized, recorder.Code)
}

func (s *ServerTestSuite) TestHandleTaskUntrackedMintIsNoOp() {
	store := newFakeServerStore()
	srv := s.newServer(store, new(fakeQueue))
	router := s.router(srv)

	recorder := s.post(router, "/v1/webhook/handle-task", testSecret, transactionBody("sig-1"))
	assert.Equal(s.T(), http.StatusOK, recorder.Code)
	assert.Zero(s.T(), store.statsWrites)
}

func (s *ServerTestSuite) TestHandleTaskDuplicateDelivery() {
	store := newFakeServerStore()
	store.collections[testMint] = &model.Collection{
		Slug:                 "foo",
		FirstVerifiedCreator: "C1",
		MintAddresses:        []string{testMint},
	}
	srv := s.newServer(store, new(fakeQueue))
	router := s.router(srv)

	first := s.post(router, "/v1/webhook/handle-task", testSecret, transactionBody("sig-1"))
	assert.Equal(s.T(), http.StatusCreated, first.Code)

	second := s.post(router, "/v1/webhook/handle-task", testSecret, transactionBody("sig-1"))
	assert.Equal(s.T(), http.StatusOK, second.Code)

	// One aggregate increment, not two
	assert.Equal(s.T(), 1, store.statsWrites)
}

func (s *ServerTestSuite) TestHandleTaskStatsFailureAllowsRedelivery() {
	store := newFakeServerStore()
	store.collections[testMint] = &model.Collection{
		Slug:                 "foo",
		FirstVerifiedCreator: "C1",
		MintAddresses:        []string{testMint},
	}
	store.statsErr = errors.New("connection reset")
	srv := s.newServer(store, new(fakeQueue))
	router := s.router(srv)

	first := s.post(router, "/v1/webhook/handle-task", testSecret, transactionBody("sig-1"))
	assert.Equal(s.T(), http.StatusInternalServerError, first.Code)
	assert.Zero(s.T(), store.statsWrites)
	// The failed delivery must not leave the dedup row behind, otherwise
	// the queue's retry would be answered as a duplicate
	assert.Empty(s.T(), store.seen)

	store.statsErr = nil
	second := s.post(router, "/v1/webhook/handle-task", testSecret, transactionBody("sig-1"))
	assert.Equal(s.T(), http.StatusCreated, second.Code)
	assert.Equal(s.T(), 1, store.statsWrites)
}

func (s *ServerTestSuite) TestDispatchOutlivesResponseTimeout() {
	conf := config.Default()
	conf.Server.WebhookSecret = testSecret
	conf.Server.DispatchTimeout = 20 * time.Millisecond
	conf.CloudTasks.RequestTimeout = 5 * time.Second

	queue := &fakeQueue{delay: 200 * time.Millisecond}
	monitor := monitor_tracker.NewMonitor().
		WithMaxHistorySize(5)
	srv := NewServer(conf).
		WithMonitor(monitor).
		WithStore(newFakeServerStore()).
		WithTaskQueue(queue).
		WithFloorSource(new(fakeServerFloors))
	router := s.router(srv)

	body := []byte(fmt.Sprintf("[%s]", transactionBody("sig-slow")))
	recorder := s.post(router, "/v1/webhook", testSecret, body)
	assert.Equal(s.T(), http.StatusOK, recorder.Code)

	// The response went out before the enqueue finished, the enqueue must
	// still complete in the background instead of being cancelled
	assert.Eventually(s.T(), func() bool {
		return len(queue.names()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(s.T(), queue.cancellations())
}

func TestTaskName(t *testing.T) {
	assert.Equal(t, "So11_1112-sig", TaskName(testMint, "sig"))
	assert.Equal(t, "ab_ab-sig", TaskName("ab", "sig"))
}
