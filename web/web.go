package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"peipao-bot/config"
	"peipao-bot/logger"
	"peipao-bot/web/controller"
	"peipao-bot/web/global"
	"peipao-bot/web/job"
	"peipao-bot/web/locale"
	"peipao-bot/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	webhook *controller.WebhookController

	fetchService *service.FetchService
	pickService  *service.PickService
	botService   *service.BotService
	tgbotService *service.Tgbot

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	g := engine.Group("/")
	s.webhook = controller.NewWebhookController(g, s.botService)

	return engine, nil
}

func (s *Server) startTask() {
	// 每天 00:10 同步上游开奖，00:20 预热当日建议缓存。
	s.cron.AddJob("10 0 * * *", job.NewFetchDrawsJob(s.fetchService, config.GetDrawLookback()))
	s.cron.AddJob("20 0 * * *", job.NewDailyPickJob(s.pickService))

	// CPU 告警走 Telegram 管理员通道。
	if s.tgbotService.IsRunning() {
		s.cron.AddJob("@every 5m", job.NewCheckCpuJob())
	}
}

func (s *Server) Start() (err error) {
	// 出错时回收已启动的部分
	defer func() {
		if err != nil {
			s.Stop()
		}
	}()

	if err = locale.InitLocalizer(); err != nil {
		return err
	}

	tz := config.GetTimezone()
	s.cron = cron.New(cron.WithLocation(tz))
	s.cron.Start()

	s.tgbotService = service.NewTgbot()
	if err := s.tgbotService.Start(); err != nil {
		// 告警通道挂了不影响主流程
		logger.Warningf("start telegram notifier failed: %v", err)
	}
	global.SetTgBot(s.tgbotService)

	s.fetchService = service.NewFetchService(config.GetDrawAPIURL())
	s.pickService = service.NewPickService(
		s.fetchService,
		tz,
		config.IsSeedHistoryEnabled(),
		config.GetDrawLookback(),
	)
	notifier := service.NewLineNotifier(config.GetChannelToken())
	s.botService = service.NewBotService(config.GetAdminSecret(), tz, notifier, s.pickService)

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	s.startTask()

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	s.listener = listener

	logger.Infof("%s %s listening on %s", config.GetName(), config.GetVersion(), listenAddr)

	s.httpServer = &http.Server{
		Handler: engine,
	}

	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			logger.Error("serve http failed:", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	s.cancel()

	if s.cron != nil {
		s.cron.Stop()
	}
	if s.tgbotService != nil {
		s.tgbotService.Stop()
	}

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		if closeErr := s.listener.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil && err != http.ErrServerClosed && !isClosedConnError(err) {
		return err
	}
	return nil
}

func isClosedConnError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "use of closed network connection")
}
