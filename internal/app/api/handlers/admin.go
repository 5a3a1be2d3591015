package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/pkg/response"
)

type PaymentLister interface {
	ListPayments(ctx context.Context, req *payment_record.ScanRequest) (*payment_record.ScanResult, error)
}

// @Summary      List payments (Admin)
// @Description  Pages through locally recorded payments with filters and sorting.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body payment_record.ScanRequest true "Filters, paging and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/list_payments [post]
func ApiListPayments(svc PaymentLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment_record.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ListPayments(c.Request.Context(), &req)
		if err != nil {
			code := response.APIResponseCodeError
			if errors.Is(err, payment_record.ErrInvalidScan) {
				code = response.APIResponseCodeBadRequest
			}
			c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc PaymentLister) {
	r.POST("/list_payments", ApiListPayments(svc))
}
