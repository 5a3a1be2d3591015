package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/easypay/internal/app/service/payment"
	"github.com/fatflowers/easypay/internal/models"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/response"
)

// PaymentAPI is implemented by *payment.Service.
type PaymentAPI interface {
	CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*easypay.PaymentResponse, *models.PaymentRecord, error)
	GetPayment(ctx context.Context, id string) (*easypay.PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) (bool, error)
}

type createPaymentResp struct {
	Payment *easypay.PaymentResponse `json:"payment"`
	Record  *models.PaymentRecord    `json:"record,omitempty"`
}

type deletePaymentResp struct {
	Deleted bool `json:"deleted"`
}

type gatewayErrorData struct {
	StatusCode int      `json:"status_code"`
	Status     string   `json:"status,omitempty"`
	Messages   []string `json:"messages"`
}

func writePaymentError(c *gin.Context, err error) {
	var gerr *easypay.GatewayError
	switch {
	case errors.Is(err, easypay.ErrInvalidArgument):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case errors.As(err, &gerr):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeGateway, gatewayErrorData{
			StatusCode: gerr.StatusCode,
			Status:     gerr.Status,
			Messages:   gerr.Messages,
		}))
	default:
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Create payment
// @Description  Creates an Easypay single payment and records it locally when persistence is enabled.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.CreatePaymentRequest true "Single payment request"
// @Success      200  {object}  handlers.RespCreatePayment
// @Router       /api/v1/payments [post]
func ApiCreatePayment(svc PaymentAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, rec, err := svc.CreatePayment(c.Request.Context(), &req)
		if err != nil {
			writePaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(createPaymentResp{Payment: res, Record: rec}))
	}
}

// @Summary      Get payment
// @Description  Fetches the current state of a single payment from Easypay.
// @Tags         Payment
// @Produce      json
// @Param        id   path      string  true  "Easypay payment id"
// @Success      200  {object}  handlers.RespPayment
// @Router       /api/v1/payments/{id} [get]
func ApiGetPayment(svc PaymentAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.GetPayment(c.Request.Context(), c.Param("id"))
		if err != nil {
			var gerr *easypay.GatewayError
			if errors.As(err, &gerr) && gerr.StatusCode == http.StatusNotFound {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, gerr.Messages))
				return
			}
			writePaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Delete payment
// @Description  Cancels a single payment. deleted is false when Easypay refuses.
// @Tags         Payment
// @Produce      json
// @Param        id   path      string  true  "Easypay payment id"
// @Success      200  {object}  handlers.RespDeletePayment
// @Router       /api/v1/payments/{id} [delete]
func ApiDeletePayment(svc PaymentAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := svc.DeletePayment(c.Request.Context(), c.Param("id"))
		if err != nil {
			writePaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(deletePaymentResp{Deleted: ok}))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc PaymentAPI) {
	r.POST("/payments", ApiCreatePayment(svc))
	r.GET("/payments/:id", ApiGetPayment(svc))
	r.DELETE("/payments/:id", ApiDeletePayment(svc))
}
