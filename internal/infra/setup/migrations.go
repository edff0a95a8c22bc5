package setup

import (
	"fmt"

	"doodle-academy/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrateDB 执行全部数据库迁移
// users 表用自定义 SQL 创建，其余表交给 AutoMigrate
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	if err := migrateUsersTable(db); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	err := db.AutoMigrate(
		&domain.Project{},
		&domain.ColorItem{},
		&domain.XPEvent{},
		&domain.Draft{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate other tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

func migrateUsersTable(db *gorm.DB) error {
	if db.Migrator().HasTable(&domain.User{}) {
		return updateUsersTable(db)
	}
	return createUsersTable(db)
}

func createUsersTable(db *gorm.DB) error {
	sql := `
	CREATE TABLE users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(191) NOT NULL,
		password TEXT NOT NULL,
		email VARCHAR(191),
		level BIGINT NOT NULL DEFAULT 0,
		current_xp BIGINT NOT NULL DEFAULT 0,
		max_xp BIGINT NOT NULL DEFAULT 100,
		created_at DATETIME(3),
		updated_at DATETIME(3),
		UNIQUE INDEX idx_username (username),
		INDEX idx_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
	`
	if err := db.Exec(sql).Error; err != nil {
		logrus.Errorf("Failed to create users table: %v", err)
		return fmt.Errorf("failed to create users table: %w", err)
	}
	logrus.Info("Users table created successfully")
	return nil
}

// updateUsersTable 老库缺少进度列时由 AutoMigrate 补齐
func updateUsersTable(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		logrus.Errorf("Failed to auto-migrate users table: %v", err)
		return fmt.Errorf("failed to migrate users columns: %w", err)
	}
	logrus.Info("Users table schema checked/updated successfully")
	return nil
}
