package repository

import (
	"reflect"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"modernc.org/sqlite"
)

// Rule recognizes a backend-specific failure kind that means "duplicate entry".
// Match receives a single chain link and must not walk the chain itself.
type Rule interface {
	Match(err error) bool
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(err error) bool

func (f RuleFunc) Match(err error) bool { return f(err) }

// DefaultMySQLNumbers are MySQL server error numbers for key and integrity violations.
var DefaultMySQLNumbers = []uint16{
	1022, // ER_DUP_KEY
	1062, // ER_DUP_ENTRY
	1169, // ER_DUP_UNIQUE
	1216, // ER_NO_REFERENCED_ROW
	1217, // ER_ROW_IS_REFERENCED
	1451, // ER_ROW_IS_REFERENCED_2
	1452, // ER_NO_REFERENCED_ROW_2
	1557, // ER_FOREIGN_DUPLICATE_KEY
	1586, // ER_DUP_ENTRY_WITH_KEY_NAME
	3819, // ER_CHECK_CONSTRAINT_VIOLATED
}

// sqliteConstraint is the primary SQLITE_CONSTRAINT result code.
const sqliteConstraint = 19

// DefaultRules is the built-in allow-list: pg/pq integrity class, MySQL key errors,
// SQLite constraint codes and gorm's translated sentinels.
func DefaultRules() []Rule {
	return []Rule{
		SQLStateFunc(pgerrcode.IsIntegrityConstraintViolation),
		MySQLNumbers(DefaultMySQLNumbers...),
		SQLiteCodes(sqliteConstraint),
		Sentinels(gorm.ErrDuplicatedKey, gorm.ErrForeignKeyViolated),
	}
}

// sqlState extracts the SQLSTATE of a pgx or lib/pq error value.
func sqlState(err error) (string, bool) {
	switch e := err.(type) {
	case *pgconn.PgError:
		if e == nil {
			return "", false
		}
		return e.Code, true
	case *pq.Error:
		if e == nil {
			return "", false
		}
		return string(e.Code), true
	}
	return "", false
}

// SQLStateFunc matches pgx and lib/pq errors whose SQLSTATE satisfies pred.
func SQLStateFunc(pred func(code string) bool) Rule {
	return RuleFunc(func(err error) bool {
		code, ok := sqlState(err)
		return ok && pred(code)
	})
}

// SQLState matches exact five-character codes; a two-character entry matches the whole class.
func SQLState(codes ...string) Rule {
	exact := make(map[string]struct{}, len(codes))
	classes := make(map[string]struct{})
	for _, c := range codes {
		switch len(c) {
		case 2:
			classes[c] = struct{}{}
		case 5:
			exact[c] = struct{}{}
		}
	}
	return SQLStateFunc(func(code string) bool {
		if _, ok := exact[code]; ok {
			return true
		}
		if len(code) >= 2 {
			_, ok := classes[code[:2]]
			return ok
		}
		return false
	})
}

// MySQLNumbers matches go-sql-driver/mysql server errors by number.
func MySQLNumbers(nums ...uint16) Rule {
	set := make(map[uint16]struct{}, len(nums))
	for _, n := range nums {
		set[n] = struct{}{}
	}
	return RuleFunc(func(err error) bool {
		e, ok := err.(*mysql.MySQLError)
		if !ok || e == nil {
			return false
		}
		_, hit := set[e.Number]
		return hit
	})
}

// SQLiteCodes matches modernc.org/sqlite errors by extended code or by its primary code.
func SQLiteCodes(codes ...int) Rule {
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return RuleFunc(func(err error) bool {
		e, ok := err.(*sqlite.Error)
		if !ok || e == nil {
			return false
		}
		code := e.Code()
		if _, hit := set[code]; hit {
			return true
		}
		_, hit := set[code&0xff]
		return hit
	})
}

// Sentinels matches errors identical to one of targets.
func Sentinels(targets ...error) Rule {
	return RuleFunc(func(err error) bool {
		if err == nil || !reflect.TypeOf(err).Comparable() {
			return false
		}
		for _, t := range targets {
			if err == t {
				return true
			}
		}
		return false
	})
}

// MatchType matches any failure whose dynamic type is T.
func MatchType[T error]() Rule {
	return RuleFunc(func(err error) bool {
		_, ok := err.(T)
		return ok
	})
}
