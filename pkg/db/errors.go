package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntry = 1062

// IsUniqueViolation reports whether the provided error is a MySQL duplicate
// key violation. When keyName is provided, the helper also checks that the
// violated key matches.
func IsUniqueViolation(err error, keyName string) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number != mysqlDupEntry {
			return false
		}
		if keyName == "" {
			return true
		}
		return strings.Contains(myErr.Message, keyName)
	}

	// sqlite (tests) reports unique violations in the message.
	msg := err.Error()
	if keyName != "" && strings.Contains(msg, keyName) {
		return true
	}
	return strings.Contains(msg, "UNIQUE constraint failed")
}
