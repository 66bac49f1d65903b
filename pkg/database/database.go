package database

import (
	"fmt"
	"log"

	"quiz_platform_backend/internal/config"
	"quiz_platform_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式下表结构由运维管理，仅 -migrate 显式触发迁移
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 同步全部表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Option{},
		&model.Attempt{},
		&model.Answer{},
		&model.AntiCheatEvent{},
	)
}
