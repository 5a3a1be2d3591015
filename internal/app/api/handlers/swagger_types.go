package handlers

import (
	"github.com/fatflowers/easypay/internal/app/service/payment_record"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCreatePayment wraps createPaymentResp in the standard envelope.
type RespCreatePayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    createPaymentResp        `json:"data"`
}

// RespPayment wraps an Easypay payment in the standard envelope.
type RespPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    easypay.PaymentResponse  `json:"data"`
}

type RespDeletePayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    deletePaymentResp        `json:"data"`
}

// RespListPayments wraps a page of payment records in the standard envelope.
type RespListPayments struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    payment_record.ScanResult `json:"data"`
}
