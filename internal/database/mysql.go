package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	name: "mysql",
	migrationsTable: `CREATE TABLE IF NOT EXISTS schema_migrations (
		id         INT          NOT NULL AUTO_INCREMENT PRIMARY KEY,
		filename   VARCHAR(255) NOT NULL UNIQUE,
		applied_at VARCHAR(64)  NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	// go-sql-driver rejects multi-statement scripts unless multiStatements is set.
	statements: func(script string) []string { return splitStatements(mysqlAdapt(script)) },
}

// MySQLDB implements DB using MySQL via go-sql-driver/mysql.
type MySQLDB struct {
	conn
}

// NewMySQL opens a MySQL connection using cfg.DSN.
func NewMySQL(cfg config.DatabaseConfig) (*MySQLDB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("mysql DSN is required when driver is mysql")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	m := &MySQLDB{conn: conn{db: db, dialect: mysqlDialect}}
	if err := m.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}
	return m, nil
}

// mysqlAdapt rewrites the SQLite-flavoured migrations for MySQL.
func mysqlAdapt(script string) string {
	r := strings.NewReplacer(
		"INTEGER PRIMARY KEY AUTOINCREMENT", "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
		"CREATE INDEX IF NOT EXISTS", "CREATE INDEX",
		" TEXT ", " VARCHAR(255) ",
	)
	return r.Replace(script)
}
