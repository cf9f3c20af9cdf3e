package mysql

import (
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
	pkgLogger "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DBConnOptions struct {
	Host     string
	Port     uint
	Username string
	Password string
	Database string
}

// NewMysqlConnection opens the pool, retrying for a while so the service
// survives a database that comes up after it does. Job execution is never
// retried this way; only the startup connection is.
func NewMysqlConnection(cfg DBConnOptions) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	var db *gorm.DB
	err := retry.Do(
		func() error {
			var openErr error
			db, openErr = gorm.Open(mysql.Open(dsn), &gorm.Config{
				Logger: logger.Discard,
			})
			if openErr != nil {
				pkgLogger.Warn("database not reachable yet: %v", openErr)
			}
			return openErr
		},
		retry.Attempts(10),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GormMigrations(db *gorm.DB) {
	// First create the tables
	err := db.AutoMigrate(
		&types.Server{},
		&types.Site{},
		&types.Job{},
		&types.ChecksumVerification{},
		&types.UnauthorizedFile{},
		&types.FileChecksum{},
	)
	if err != nil {
		pkgLogger.Fatal("failed to migrate models: %v", err)
	}
}
