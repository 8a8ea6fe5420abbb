//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/lot-allocator/internal/adapters/db"
	redis_a "github.com/ammerola/lot-allocator/internal/adapters/redis_adapter"
	"github.com/ammerola/lot-allocator/internal/adapters/spreadsheet"
	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/internal/core/services"
	"github.com/ammerola/lot-allocator/internal/handlers"
	"github.com/ammerola/lot-allocator/test/helpers"
)

type AllocationE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis

	tenantID    uuid.UUID
	warehouseID uuid.UUID
	productID   uuid.UUID
	lots        [3]domain.InventoryRecord
}

func (s *AllocationE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *AllocationE2ESuite) TearDownSuite() {
	s.server.Close()
}

// SetupTest seeds L1(100, oldest), L2(150, no expiry), L3(200, newest)
func (s *AllocationE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()

	s.tenantID, s.warehouseID, s.productID = uuid.New(), uuid.New(), uuid.New()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	inDays := func(n int) *time.Time {
		d := today.AddDate(0, 0, n)
		return &d
	}

	specs := []struct {
		lotNo    string
		quantity string
		age      time.Duration
		expiry   *time.Time
	}{
		{"L1", "100", 72 * time.Hour, inDays(90)},
		{"L2", "150", 48 * time.Hour, nil},
		{"L3", "200", 24 * time.Hour, inDays(270)},
	}

	for i, spec := range specs {
		rec := helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
			r.TenantID = s.tenantID
			r.WarehouseID = s.warehouseID
			r.ProductID = s.productID
			r.LotNo = spec.lotNo
			r.AvailableQuantity = helpers.Dec(spec.quantity)
			r.LotCreatedAt = time.Now().UTC().Add(-spec.age)
			r.ExpiryDate = spec.expiry
		})
		helpers.SeedInventoryRecord(s.T(), s.testDB.PgxPool, rec)
		s.lots[i] = rec
	}
}

func (s *AllocationE2ESuite) TestFIFOAllocation() {
	resp := s.makeRequest("POST", "/allocations", map[string]interface{}{
		"strategy":          "FIFO",
		"warehouse_id":      s.warehouseID,
		"product_id":        s.productID,
		"required_quantity": "200",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var plan handlers.AllocationResponse
	s.decodeResponse(resp, &plan)

	s.Require().Len(plan.Allocations, 2)
	s.Equal(s.lots[0].LotID, plan.Allocations[0].LotID)
	s.True(plan.Allocations[0].AllocatedQuantity.Equal(decimal.NewFromInt(100)))
	s.Equal(s.lots[1].LotID, plan.Allocations[1].LotID)
	s.True(plan.Allocations[1].AllocatedQuantity.Equal(decimal.NewFromInt(100)))
	s.True(plan.TotalAllocated.Equal(decimal.NewFromInt(200)))
}

func (s *AllocationE2ESuite) TestFEFOAllocationSkipsLotWithoutExpiry() {
	resp := s.makeRequest("POST", "/allocations", map[string]interface{}{
		"strategy":          "fefo",
		"warehouse_id":      s.warehouseID,
		"product_id":        s.productID,
		"required_quantity": "300",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var plan handlers.AllocationResponse
	s.decodeResponse(resp, &plan)

	s.Require().Len(plan.Allocations, 2)
	s.Equal(s.lots[0].LotID, plan.Allocations[0].LotID)
	s.Equal(s.lots[2].LotID, plan.Allocations[1].LotID)
	s.True(plan.Allocations[1].AllocatedQuantity.Equal(decimal.NewFromInt(200)))
}

func (s *AllocationE2ESuite) TestInsufficientStock() {
	resp := s.makeRequest("POST", "/allocations", map[string]interface{}{
		"warehouse_id":      s.warehouseID,
		"product_id":        s.productID,
		"required_quantity": "500",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	var body handlers.ErrorResponse
	s.decodeResponse(resp, &body)

	s.Require().NotNil(body.Details)
	s.Equal("450", fmt.Sprint(body.Details["available"]))
	s.Equal("50", fmt.Sprint(body.Details["shortfall"]))
}

func (s *AllocationE2ESuite) TestSpecificLot() {
	lotID := s.lots[0].LotID

	resp := s.makeRequest("POST", "/allocations", map[string]interface{}{
		"strategy":          "SPECIFIC",
		"warehouse_id":      s.warehouseID,
		"product_id":        s.productID,
		"lot_id":            lotID,
		"required_quantity": "50",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var plan handlers.AllocationResponse
	s.decodeResponse(resp, &plan)
	s.Require().Len(plan.Allocations, 1)
	s.True(plan.Allocations[0].AllocatedQuantity.Equal(decimal.NewFromInt(50)))
	s.True(plan.Allocations[0].AvailableQuantity.Equal(decimal.NewFromInt(100)))

	// Other lots hold enough, but the pinned lot does not
	resp = s.makeRequest("POST", "/allocations", map[string]interface{}{
		"strategy":          "SPECIFIC",
		"warehouse_id":      s.warehouseID,
		"product_id":        s.productID,
		"lot_id":            lotID,
		"required_quantity": "150",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("POST", "/allocations", map[string]interface{}{
		"strategy":          "SPECIFIC",
		"warehouse_id":      s.warehouseID,
		"product_id":        s.productID,
		"lot_id":            uuid.New(),
		"required_quantity": "1",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *AllocationE2ESuite) TestExpiringLots() {
	resp := s.makeRequest("GET", "/lots/expiring?days=120", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var listing handlers.ExpiringLotsResponse
	s.decodeResponse(resp, &listing)

	s.Equal(1, listing.Count)
	s.Require().Len(listing.Lots, 1)
	s.Equal(s.lots[0].LotID, listing.Lots[0].ID)

	// The expiring query is read through Redis
	keys := s.testRedis.Server.Keys()
	s.NotEmpty(keys)

	resp = s.makeRequest("GET", "/lots/expiring?days=-1", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *AllocationE2ESuite) TestExportExpiringLots() {
	resp := s.makeRequest("GET", "/lots/expiring/export?days=365", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(spreadsheet.ContentType, resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.NoError(err)
	s.NotEmpty(data)
}

func (s *AllocationE2ESuite) TestMissingTenant() {
	req, err := http.NewRequest("GET", s.baseURL+"/lots/expiring", nil)
	s.Require().NoError(err)

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *AllocationE2ESuite) TestHealth() {
	resp, err := s.client.Get(s.server.URL + "/health/ready")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

// Helper methods
func (s *AllocationE2ESuite) startTestServer() *httptest.Server {
	cfg := helpers.LoadTestConfig()
	logger := helpers.TestLogger()
	database := s.testDB.Database

	cache := redis_a.NewCache(s.testRedis.Client, time.Hour, logger)
	lots := redis_a.NewCachedLotMetadata(db.NewLotRepository(database, logger), cache, time.Minute, logger)
	service := services.NewAllocationService(db.NewInventorySnapshotRepository(database, logger), lots, logger)

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: s.testRedis.Server.Addr()})
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: s.testRedis.Server.Addr()})
	s.T().Cleanup(func() {
		queue.Close()
		inspector.Close()
	})

	days := cfg.Allocation.DefaultExpiryWindowDays
	router := &handlers.Router{
		Allocation: handlers.NewAllocationHandler(service, days, logger),
		Export:     handlers.NewExportHandler(service, days, time.UTC, logger),
		Report:     handlers.NewReportHandler(queue, inspector, days, logger),
		Health:     handlers.NewHealthHandler(database, s.testRedis.Client, nil, cfg, logger),
	}

	return httptest.NewServer(router.Handler(cfg, logger))
}

func (s *AllocationE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.Require().NoError(err)

	req.Header.Set("X-Tenant-ID", s.tenantID.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *AllocationE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestAllocationE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(AllocationE2ESuite))
}
