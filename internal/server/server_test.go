package server

import (
	"testing"
	"time"

	"github.com/bobmcallan/stockhistory/internal/app"
	"github.com/bobmcallan/stockhistory/internal/common"
)

func TestNewServer_WriteTimeoutCoversReconcilePass(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9191
	cfg.Reconcile.Timeout = "4m"

	srv := NewServer(&app.App{Config: cfg, Logger: common.NewSilentLogger()})

	if srv.server.Addr != "127.0.0.1:9191" {
		t.Errorf("expected addr 127.0.0.1:9191, got %s", srv.server.Addr)
	}
	if want := 4*time.Minute + responseSlack; srv.server.WriteTimeout != want {
		t.Errorf("expected write timeout %s, got %s", want, srv.server.WriteTimeout)
	}
}
