package main

// @title           Easypay Gateway API
// @version         1.0
// @description     Easypay single payments and webhook reconciliation.

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/fatflowers/easypay/internal/app"
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	a := fx.New(
		app.Module,
		fx.WithLogger(func(l *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Desugar()}
		}),
	)
	if err := a.Err(); err != nil {
		// the app logger may not exist if config or logger construction failed
		zap.NewExample().Sugar().Errorw("failed to build app", "error", err.Error())
		exitCode = 1
		return
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		zap.NewExample().Sugar().Errorw("failed to start app", "error", err.Error())
		exitCode = 1
		return
	}

	// SIGINT/SIGTERM
	<-a.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancelStop()
	if err := a.Stop(stopCtx); err != nil {
		zap.NewExample().Sugar().Errorw("failed to stop app", "error", err.Error())
		exitCode = 1
	}
}
