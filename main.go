// FPGA matrix calculator serial front end
package main

import (
	"fmt"
	"fpgaterm/internal/config"
	"fpgaterm/internal/gui"
	"fpgaterm/internal/i18n"
	"fpgaterm/internal/logger"
)

var version = "1.0.0"

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	// 初始化日志系统
	logger.Init(cfg.LogLevel)
	logger.Info(fmt.Sprintf("fpgaterm v%s starting", version))
	if err != nil {
		logger.Info(fmt.Sprintf("配置加载失败，使用默认配置: %v", err))
	}

	i18n.Init(cfg.Language)

	app := gui.NewApp(cfg, version)
	app.ShowAndRun()

	logger.Info("fpgaterm stopped")
}
