// 手动导入题库脚本
//
// 从 YAML 文件批量创建试卷与题目，格式见 configs/question_bank.example.yaml。
// 用于首次部署或从其他系统迁移题目。
//
// 用法: go run scripts/import_questions.go -file configs/question_bank.example.yaml

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"quiz_backend/internal/config"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/service"
	"quiz_backend/pkg/database"
	"quiz_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "题库 YAML 文件路径")
	flag.Parse()
	if *file == "" {
		log.Fatal("请通过 -file 指定题库文件")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	f, err := os.Open(*file)
	if err != nil {
		logger.Log.Fatal("无法打开题库文件", zap.Error(err))
	}
	defer f.Close()

	bank, err := service.ParseQuestionBank(f)
	if err != nil {
		logger.Log.Fatal("解析题库失败", zap.Error(err))
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, true)
	if err != nil {
		logger.Log.Fatal("数据库连接失败", zap.Error(err))
	}

	tests := service.NewTestService(db,
		repository.NewTestRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewResultRepository(db),
	)

	testCount, questionCount, err := service.ImportQuestionBank(context.Background(), tests, bank)
	if err != nil {
		logger.Log.Fatal("导入中断",
			zap.Int("tests", testCount),
			zap.Int("questions", questionCount),
			zap.Error(err),
		)
	}

	logger.Log.Info("题库导入完成",
		zap.Int("tests", testCount),
		zap.Int("questions", questionCount),
	)
}
