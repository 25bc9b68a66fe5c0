// @title STEM Center Analytics Dashboard API
// @version 1.0
// @description 教学辅导中心统计仪表盘：按日/周/学期查看辅导请求量与平均等待时间。

// @host localhost:8080
// @BasePath /

//go:generate swag init -g main.go -o docs

package main

import (
	"flag"
	"log"
	"stem_dashboard/internal/app"
	"stem_dashboard/internal/config"
	"stem_dashboard/pkg/logger"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录（包含 config.yaml）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer logger.Log.Sync()

	application.Run()
}
