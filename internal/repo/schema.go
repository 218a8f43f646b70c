package repo

import (
	"context"

	"gorm.io/gorm"

	"teamtask/internal/feature/task"
	"teamtask/internal/feature/user"
)

// AutoMigrate 顺序：users 先于 tasks（外键）
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&user.UserModel{}, &task.TaskModel{}); err != nil {
		return err
	}
	if stmt := emailCollationSQL(db.Dialector.Name()); stmt != "" {
		return db.Exec(stmt).Error
	}
	return nil
}

// emailCollationSQL email 按原值区分大小写；MySQL 默认 *_ci 排序规则下唯一索引和查询都忽略大小写，
// 改成 utf8mb4_bin。sqlite/postgres 的比较本身区分大小写
func emailCollationSQL(dialect string) string {
	if dialect != "mysql" {
		return ""
	}
	return "ALTER TABLE users MODIFY email varchar(254) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"
}

type ClearResult struct {
	Users int64
	Tasks int64
}

// Clear 清空所有任务和用户（维护命令用）
func Clear(ctx context.Context, db *gorm.DB) (ClearResult, error) {
	var out ClearResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&task.TaskModel{})
		if res.Error != nil {
			return res.Error
		}
		out.Tasks = res.RowsAffected
		res = tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&user.UserModel{})
		if res.Error != nil {
			return res.Error
		}
		out.Users = res.RowsAffected
		return nil
	})
	return out, err
}
