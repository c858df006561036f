package db

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver used by the store. It is go-sqlite3
// with the REGEXP function attached to every new connection.
const DriverName = "sqlite3_easydict"

// DefaultTable is the table name used by the shipped English-Czech dictionary.
const DefaultTable = "eng_cze"

// columns is the physical column order of the word-pair table.
var columns = []string{"eng", "cze", "notes", "special", "author"}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("REGEXP", regexpMatch, true)
		},
	})
}

// ValidTable reports whether name can be used as an unquoted table identifier.
func ValidTable(name string) bool {
	return identRe.MatchString(name)
}

func createTableSQL(table string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

func insertSQL(table string) string {
	marks := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, marks)
}

func selectSQL(table string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
}
