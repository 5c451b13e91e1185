package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"content_studio/config"
	analyticsmodels "content_studio/internal/api/analytics/models"
	authmodels "content_studio/internal/api/auth/models"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/database"
	"content_studio/internal/global"
	"content_studio/internal/logger"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc biến môi trường để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator() // Khởi tạo validator
	initConfig()    // Khởi tạo cấu hình server
	if global.ServerConfig.StoreDriver == config.StoreMongo {
		initDatabase_MongoDB() // Khởi tạo kết nối database
	} else {
		logrus.Warn("STORE_DRIVER=memory, dữ liệu chỉ nằm trong bộ nhớ")
	}
}

// Hàm khởi tạo validator (đăng ký custom validators: no_xss, object_id, content_type, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.ServerConfig = cfg
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database và index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	indexes := []struct {
		collection string
		model      interface{}
	}{
		{global.MongoDB_ColNames.Accounts, authmodels.Account{}},
		{global.MongoDB_ColNames.Contents, contentmodels.Content{}},
		{global.MongoDB_ColNames.ContentAnalytics, analyticsmodels.ContentAnalytics{}},
	}
	for _, idx := range indexes {
		if err := database.CreateIndexes(context.TODO(), db.Collection(idx.collection), idx.model); err != nil {
			logrus.Fatalf("Failed to create indexes for %s: %v", idx.collection, err)
		}
	}
	logrus.Info("Ensured indexes")
}
