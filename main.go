package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinrush/server"
)

// coinrush 入口：加载配置，启动 WebSocket 服务，等待退出信号
func main() {
	cfg, err := server.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer server.SyncLogger()

	game := server.NewGame(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", game.HandleWS)
	mux.HandleFunc("/admin/config", game.HandleAdminConfig)
	mux.HandleFunc("/metrics", game.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// 监听失败是唯一不可恢复的错误，直接退出
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		server.Log.Fatalf("listen %s: %v", cfg.Addr, err)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		server.Log.Infof("coinrush listening on ws://%s/ws (lobby size %d)", ln.Addr(), cfg.LobbySize)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("serve: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Errorw("server shutdown failed", "err", err)
	}
	game.Close()
}
