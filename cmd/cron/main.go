package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/conf"

	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

// cronApp 定时任务依赖的业务用例集合
type cronApp struct {
	orderUsecase   *biz.OrderUsecase
	revenueUsecase *biz.RevenueUsecase
}

func newCronApp(orderUsecase *biz.OrderUsecase, revenueUsecase *biz.RevenueUsecase) *cronApp {
	return &cronApp{
		orderUsecase:   orderUsecase,
		revenueUsecase: revenueUsecase,
	}
}

func main() {
	flag.Parse()

	// 初始化配置
	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}
	if err := bc.Validate(); err != nil {
		panic(err)
	}

	logger := klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"service.name", "commerce-cron",
	)

	// 初始化应用
	app, cleanup, err := wireApp(bc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	pendingTTL := bc.Ledger.PendingOrderTTLDuration()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 1. 超时未支付订单清理 - 每小时整点执行
	_, err = cronScheduler.AddFunc("0 0 * * * *", func() {
		log.Println("[CRON] Starting stale pending order sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, err := app.orderUsecase.ExpireStalePending(ctx, pendingTTL)
		if err != nil {
			log.Printf("[CRON] Error cancelling stale pending orders: %v", err)
		} else {
			log.Printf("[CRON] Cancelled %d stale pending orders", count)
			log.Println("[CRON] Finished stale pending order sweep")
		}
	})
	if err != nil {
		log.Printf("Failed to add stale order sweep job: %v", err)
	}

	// 2. 教师月度收入报表 - 每月 1 日凌晨 2 点执行
	_, err = cronScheduler.AddFunc("0 0 2 1 * *", func() {
		log.Println("[CRON] Starting monthly revenue report...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		report, err := app.revenueUsecase.MonthlyReport(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("[CRON] Error building monthly revenue report: %v", err)
			return
		}

		log.Printf("[CRON] Monthly revenue report: %d teachers with sales", len(report))
		for teacherID, revenue := range report {
			log.Printf("[CRON] Revenue: teacher=%s, previous_month=%s", teacherID, revenue.StringFixed(2))
		}
		log.Println("[CRON] Finished monthly revenue report")
	})
	if err != nil {
		log.Printf("Failed to add monthly revenue report job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Printf("  - Stale order sweep:      Every hour (TTL %s)", pendingTTL)
	log.Println("  - Monthly revenue report: 1st of month at 02:00")
	log.Println("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	// 停止定时任务
	stopCtx := cronScheduler.Stop()
	<-stopCtx.Done()
	log.Println("Cron jobs stopped")
}
