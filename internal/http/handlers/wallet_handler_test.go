package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkondrashov/marketplace-backend/internal/http/middleware"
)

func TestWalletHandler_GetBalance_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WalletHandler{wallets: nil}
	r.GET("/wallet", handler.GetBalance)

	req, _ := http.NewRequest("GET", "/wallet", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletHandler_Deposit_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WalletHandler{wallets: nil}
	r.POST("/wallet/deposit", handler.Deposit)

	req, _ := http.NewRequest("POST", "/wallet/deposit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletHandler_Withdraw_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WalletHandler{wallets: nil}
	r.POST("/wallet/withdraw", handler.Withdraw)

	req, _ := http.NewRequest("POST", "/wallet/withdraw", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletHandler_ListTransactions_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WalletHandler{wallets: nil}
	r.GET("/wallet/transactions", handler.ListTransactions)

	req, _ := http.NewRequest("GET", "/wallet/transactions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMilestoneHandler_Approve_InvalidMilestoneID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
	})
	handler := &MilestoneHandler{}
	r.POST("/milestones/:id/approve", handler.Approve)

	req, _ := http.NewRequest("POST", "/milestones/invalid-uuid/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMilestoneHandler_Submit_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &MilestoneHandler{}
	r.POST("/milestones/:id/submit", handler.Submit)

	req, _ := http.NewRequest("POST", "/milestones/"+uuid.NewString()+"/submit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
