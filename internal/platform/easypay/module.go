package easypay

import (
	"go.uber.org/fx"

	"github.com/fatflowers/easypay/pkg/config"
)

// NewClientFromConfig builds the gateway client from the easypay config section.
func NewClientFromConfig(cfg *config.Config) (*Client, error) {
	return NewClient(&ClientOptions{
		BackendURL: cfg.Easypay.BackendURL,
		AccountID:  cfg.Easypay.AccountID,
		APIKey:     cfg.Easypay.APIKey,
		Timeout:    cfg.Easypay.RequestTimeout,
	})
}

// Module exposes the Easypay client via Fx.
var Module = fx.Options(
	fx.Provide(NewClientFromConfig),
)
