package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	nh "github.com/fatflowers/easypay/internal/app/service/notification_handler"
	"github.com/fatflowers/easypay/internal/platform/easypay"
	"github.com/fatflowers/easypay/pkg/logctx"
)

// HeaderEasypayCode carries the per-kind verification code configured in the
// Easypay backoffice.
const HeaderEasypayCode = "X-Easypay-Code"

const maxWebhookBody = 1 << 20

// @Summary      Easypay webhook
// @Description  Receives an Easypay notification. Generic, authorisation and transaction bodies are JSON; mbway bodies are form encoded. Always answers plain text.
// @Tags         Webhook
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Param        X-Easypay-Code header string false "Verification code"
// @Success      200  {string}  string "OK"
// @Failure      400  {string}  string "Bad Request"
// @Failure      403  {string}  string "Forbidden"
// @Failure      413  {string}  string "Request Entity Too Large"
// @Failure      501  {string}  string "Not Implemented"
// @Router       /notify [post]
// @Router       /authorisation_notify [post]
// @Router       /transaction_notify [post]
// @Router       /mbway_notify [post]
func ApiEasypayWebhook(d *nh.Dispatcher, kind easypay.NotificationKind, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logctx.FromGin(c, log).With("kind", kind)

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			l.Warnw("webhook_read_failed", "status", status, "error", err.Error())
			c.String(status, http.StatusText(status))
			return
		}

		_, err = d.Dispatch(c.Request.Context(), kind, c.GetHeader(HeaderEasypayCode), body)
		status := webhookStatus(err)
		if status != http.StatusOK {
			l.Infow("webhook_refused", "status", status, "error", err.Error())
			c.String(status, http.StatusText(status))
			return
		}
		c.String(http.StatusOK, "OK")
	}
}

func webhookStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, nh.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, easypay.ErrMalformedNotification):
		return http.StatusBadRequest
	case errors.Is(err, nh.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func RegisterWebhookRoutes(r gin.IRouter, d *nh.Dispatcher, log *zap.SugaredLogger) {
	r.POST("/notify", ApiEasypayWebhook(d, easypay.NotificationKindGeneric, log))
	r.POST("/authorisation_notify", ApiEasypayWebhook(d, easypay.NotificationKindAuthorisation, log))
	r.POST("/transaction_notify", ApiEasypayWebhook(d, easypay.NotificationKindTransaction, log))
	r.POST("/mbway_notify", ApiEasypayWebhook(d, easypay.NotificationKindMbway, log))
}
