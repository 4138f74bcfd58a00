package txdb

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Session returns a gorm handle bound to ctx (bounded by timeout when > 0) and,
// when tx is non-nil, to that transaction. The caller must call cancel.
func Session(ctx context.Context, db *gorm.DB, tx *sql.Tx, timeout time.Duration) (*gorm.DB, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	session := db.WithContext(ctx)
	if tx != nil {
		session.Statement.ConnPool = tx
	}
	return session, cancel
}
