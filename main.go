package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"peipao-bot/config"
	"peipao-bot/database"
	"peipao-bot/logger"
	"peipao-bot/web"

	"github.com/joho/godotenv"
)

func runBot() {
	logger.InitLogger(config.GetLogLevel())

	if config.GetAdminSecret() == config.DefaultAdminSecret {
		logger.Warning("admin secret is the insecure default, set PB_ADMIN_SECRET")
	}
	if config.GetChannelToken() == "" {
		logger.Warning("CHANNEL_ACCESS_TOKEN is empty, replies will be rejected by LINE")
	}

	if err := database.InitDB(config.GetDBPath()); err != nil {
		logger.Error("init database failed:", err)
		os.Exit(1)
	}

	server := web.NewServer()
	if err := server.Start(); err != nil {
		logger.Error("start web server failed:", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down ...")
	if err := server.Stop(); err != nil {
		logger.Warning("stop web server:", err)
	}
}

func main() {
	showVersion := flag.Bool("v", false, "show version")
	configFile := flag.String("c", "peipao.toml", "config file path")
	flag.Parse()

	if *showVersion {
		fmt.Println(config.GetVersion())
		return
	}

	// .env 与 TOML 都是可选的，环境变量优先。
	_ = godotenv.Load()
	if err := config.LoadFile(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "load config file:", err)
		os.Exit(1)
	}

	runBot()
}
