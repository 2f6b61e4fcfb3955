package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"launchcontrol/internal/engine"
	"launchcontrol/internal/handlers"
	"launchcontrol/internal/routes"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/ledger"
	solanaUtils "launchcontrol/pkg/solana"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *engine.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrateModels(db))
	config.DB = db

	svc := engine.NewService(db, solanaUtils.NewPoolClient(), solanaUtils.NewEd25519Verifier())
	handlers.InitEngine(svc)
	return routes.SetupRouter(), svc
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestBaseAssetPolicyAPI(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("Create Policy", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/base-asset-policy", gin.H{
			"mint":              "sol",
			"final_base_target": 100,
			"max_buy_per_user":  50,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "sol", body["mint"])
		assert.Equal(t, true, body["enabled"])
	})

	t.Run("Get Policy", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/base-asset-policy/sol", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, float64(100), body["final_base_target"])
		assert.Equal(t, float64(50), body["max_buy_per_user"])
	})

	t.Run("Get Non-existent Policy", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/base-asset-policy/shadow", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List Policies", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/base-asset-policy", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var policies []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &policies))
		assert.Len(t, policies, 1)
	})

	t.Run("Update Fee Config", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPut, "/fee-config", gin.H{
			"fee_bps":        100,
			"burn_bps":       200,
			"fee_asset_mint": "sol",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, router, http.MethodGet, "/fee-config", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(100), body["fee_bps"])
	})

	t.Run("Fee Config Rejects Excess Bps", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPut, "/fee-config", gin.H{
			"fee_bps": 20000,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLaunchAPI(t *testing.T) {
	router, svc := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/base-asset-policy", gin.H{
		"mint":              "sol",
		"final_base_target": 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var launchID uint

	t.Run("Create Launch", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/launch", gin.H{
			"token_mint":      "memex",
			"symbol":          "MEMEX",
			"name":            "Meme Exchange",
			"decimals":        6,
			"total_supply":    10000,
			"creator":         "creator",
			"base_asset_mint": "sol",
			"bonding_bps":     6500,
			"liquidity_bps":   1500,
			"dev_team_bps":    1000,
			"staking_bps":     1000,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		require.NotZero(t, body["launch_id"])
		launchID = uint(body["launch_id"].(float64))
	})

	t.Run("Invalid Body Rejected", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/launch", gin.H{"token_mint": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get Launch", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/launch/%d", launchID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "memex", body["token_mint"])
		assert.Equal(t, float64(6500), body["sale_supply"])
	})

	t.Run("Get Unknown Launch", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/launch/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Buy Before Trading Starts", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/launch/%d/buy", launchID), gin.H{
			"buyer":       "buyer",
			"base_amount": 10,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Start Trading", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/launch/%d/start-trading", launchID), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Quote", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/launch/%d/quote?base_amount=10", launchID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, float64(2112), body["token_amount"])
	})

	t.Run("Buy", func(t *testing.T) {
		require.NoError(t, svc.Assets().Credit(svc.DB(), ledger.NativeAssetMint, "buyer", 1000))

		w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/launch/%d/buy", launchID), gin.H{
			"buyer":       "buyer",
			"base_amount": 10,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "buy", body["side"])
		assert.Equal(t, float64(2112), body["token_amount"])
		assert.Equal(t, float64(10), body["base_accepted"])
	})

	t.Run("Underfunded Buyer Rejected", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/launch/%d/buy", launchID), gin.H{
			"buyer":       "pauper",
			"base_amount": 10,
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("Price", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/launch/%d/price", launchID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.NotEmpty(t, body["price_readable"])
		assert.NotZero(t, body["price_raw"])
	})

	t.Run("Migrate Before Completion", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/launch/%d/migrate", launchID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestVestingAPI(t *testing.T) {
	router, svc := setupTestRouter(t)
	require.NoError(t, svc.Tokens().CreateMint(svc.DB(), "vtok", "VST", "Vested", 6, 100000, "funder"))

	t.Run("Create Schedule", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/vesting/schedule", gin.H{
			"asset_mint":         "vtok",
			"funder":             "funder",
			"beneficiary":        "alice",
			"amount":             10000,
			"vest_seconds":       9000,
			"upfront_unlock_bps": 1000,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Duplicate Schedule Conflicts", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/vesting/schedule", gin.H{
			"asset_mint":   "vtok",
			"funder":       "funder",
			"beneficiary":  "alice",
			"amount":       10000,
			"vest_seconds": 9000,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Get Schedule", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/vesting/schedule?asset_mint=vtok&beneficiary=alice", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, float64(9000), body["total_vested_amount"])
	})

	t.Run("Claim Pays The Upfront Unlock", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/vesting/claim", gin.H{
			"asset_mint":  "vtok",
			"beneficiary": "alice",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, float64(1000), body["unlock_released"])
	})
}
