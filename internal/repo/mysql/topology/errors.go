// 错误分类
// 区分重复键(并发插入竞争，重新查询即可)、瞬时错误(可整体重试)与持久错误
package topology

import (
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrRootConflict Root 指针在读取与写入之间被其他进程修改
var ErrRootConflict = errors.New("root pointer changed concurrently")

// ErrorType 定义错误类型
type ErrorType int

const (
	ErrorTypeUnknown    ErrorType = iota
	ErrorTypeTransient            // 瞬时错误 (可重试)
	ErrorTypeDuplicate            // 唯一键冲突 (重新查询)
	ErrorTypePersistent           // 持久错误 (不可重试)
)

// ClassifyError 根据错误类型进行分类
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorTypeDuplicate
	}
	if errors.Is(err, ErrRootConflict) {
		return ErrorTypeTransient
	}

	// 1. MySQL 错误码
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // ER_DUP_ENTRY
			return ErrorTypeDuplicate
		case 1213, // ER_LOCK_DEADLOCK
			1205, // ER_LOCK_WAIT_TIMEOUT
			1040, // ER_CON_COUNT_ERROR
			2002, // CR_CONNECTION_ERROR
			2003, // CR_CONN_HOST_ERROR
			2006, // CR_SERVER_GONE_ERROR
			2013, // CR_SERVER_LOST
			1053: // ER_SERVER_SHUTDOWN
			return ErrorTypeTransient
		case 1452, // ER_NO_REFERENCED_ROW_2
			1451, // ER_ROW_IS_REFERENCED_2
			1054, // ER_BAD_FIELD_ERROR
			1146, // ER_NO_SUCH_TABLE
			1064, // ER_PARSE_ERROR
			1292, // ER_TRUNCATED_WRONG_VALUE
			1406: // ER_DATA_TOO_LONG
			return ErrorTypePersistent
		}
	}

	// 2. 网络错误
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorTypeTransient
	}

	// 3. 字符串匹配兜底 (含 sqlite 驱动的错误文本)
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "duplicate entry"):
		return ErrorTypeDuplicate
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "sqlite_busy"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "too many open files"):
		return ErrorTypeTransient
	case strings.Contains(msg, "foreign key constraint failed"),
		strings.Contains(msg, "no such table"):
		return ErrorTypePersistent
	}

	return ErrorTypeUnknown
}

// IsDuplicate 判断是否为唯一键冲突
func IsDuplicate(err error) bool {
	return ClassifyError(err) == ErrorTypeDuplicate
}

// IsTransient 判断是否为瞬时错误
func IsTransient(err error) bool {
	return ClassifyError(err) == ErrorTypeTransient
}

// IsPersistent 判断是否为持久错误
func IsPersistent(err error) bool {
	return ClassifyError(err) == ErrorTypePersistent
}
