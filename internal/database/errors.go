package database

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClass groups driver errors by what an operator has to do about them.
type ErrorClass string

const (
	ClassNone         ErrorClass = ""
	ClassConnection   ErrorClass = "connection"
	ClassProgramming  ErrorClass = "programming"
	ClassIntegrity    ErrorClass = "integrity"
	ClassData         ErrorClass = "data"
	ClassInternal     ErrorClass = "internal"
	ClassNotSupported ErrorClass = "not_supported"
	ClassUnknown      ErrorClass = "unknown"
)

// Classify maps MySQL and Postgres driver errors onto an ErrorClass.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return classifyMySQL(mysqlErr.Number)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.As(err, &netErr) {
		return ClassConnection
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ClassConnection
	}

	return ClassUnknown
}

func classifyMySQL(number uint16) ErrorClass {
	switch number {
	case 1040, 1044, 1045, 1129, 1130, 1203:
		return ClassConnection
	case 1049, 1050, 1054, 1064, 1146, 1149:
		return ClassProgramming
	case 1048, 1062, 1169, 1451, 1452:
		return ClassIntegrity
	case 1264, 1292, 1366, 1406:
		return ClassData
	case 1235:
		return ClassNotSupported
	default:
		return ClassInternal
	}
}

func classifySQLState(code string) ErrorClass {
	if len(code) < 2 {
		return ClassUnknown
	}
	switch strings.ToUpper(code[:2]) {
	case "08", "28", "53", "57":
		return ClassConnection
	case "3D", "42":
		return ClassProgramming
	case "23":
		return ClassIntegrity
	case "22":
		return ClassData
	case "0A":
		return ClassNotSupported
	case "XX":
		return ClassInternal
	default:
		return ClassUnknown
	}
}

// Hint is the operator-facing message logged next to a classified error.
func Hint(class ErrorClass) string {
	switch class {
	case ClassConnection:
		return "Could not reach the database. Make sure the server is correct, and that you have permissions"
	case ClassProgramming:
		return "Programming error. Check that the database and table names are correct and that the SQL has no typos"
	case ClassIntegrity:
		return "An integrity error has occurred"
	case ClassData:
		return "A data error has occurred"
	case ClassNotSupported:
		return "A 'not supported' error has occurred"
	case ClassInternal:
		return "An internal database error has occurred"
	default:
		return "A generic database error has occurred"
	}
}
