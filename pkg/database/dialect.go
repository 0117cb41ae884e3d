package database

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/SongDrop/gitgptapi/pkg/config"
)

// Supported catalog drivers.
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
)

// Quoter quotes SQL identifiers for a specific engine.
type Quoter interface {
	Quote(ident string) string
}

// Dialect describes how to reach and address one database engine.
type Dialect struct {
	// Name is the configured driver name.
	Name string
	// DriverName is the database/sql driver registered for the engine.
	DriverName string

	quote func(ident string) string
	dsn   func(cfg *config.CatalogConfig) string
}

var _ Quoter = (*Dialect)(nil)

var dialects = map[string]*Dialect{
	DriverMySQL: {
		Name:       DriverMySQL,
		DriverName: "mysql",
		quote:      func(ident string) string { return "`" + strings.ReplaceAll(ident, "`", "``") + "`" },
		dsn:        mysqlDSN,
	},
	DriverPostgres: {
		Name:       DriverPostgres,
		DriverName: "pgx",
		quote:      func(ident string) string { return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"` },
		dsn:        postgresDSN,
	},
	DriverSQLServer: {
		Name:       DriverSQLServer,
		DriverName: "sqlserver",
		quote:      func(ident string) string { return "[" + strings.ReplaceAll(ident, "]", "]]") + "]" },
		dsn:        sqlServerDSN,
	},
}

// LookupDialect returns the dialect for a configured driver name.
func LookupDialect(name string) (*Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported catalog driver %q (supported: %s)", name, strings.Join(SupportedDrivers(), ", "))
	}
	return d, nil
}

// SupportedDrivers lists the accepted driver names in sorted order.
func SupportedDrivers() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Quote returns ident quoted as an identifier.
func (d *Dialect) Quote(ident string) string {
	return d.quote(ident)
}

// DSN builds the driver connection string for cfg.
func (d *Dialect) DSN(cfg *config.CatalogConfig) string {
	return d.dsn(cfg)
}

func hostPort(cfg *config.CatalogConfig) string {
	return net.JoinHostPort(cfg.ResolvedHost(), strconv.Itoa(cfg.Port))
}

func mysqlDSN(cfg *config.CatalogConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = hostPort(cfg)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func postgresDSN(cfg *config.CatalogConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     hostPort(cfg),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {"prefer"}}.Encode(),
	}
	return u.String()
}

func sqlServerDSN(cfg *config.CatalogConfig) string {
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     hostPort(cfg),
		RawQuery: url.Values{"database": {cfg.Database}}.Encode(),
	}
	return u.String()
}
