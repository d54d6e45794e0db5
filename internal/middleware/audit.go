package middleware

import (
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware records every API mutation for troubleshooting. Reads are
// skipped to keep the log small.
func AuditMiddleware(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" {
			return
		}

		entry := models.AuditLog{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = store.AppendAuditLog(&entry)
	}
}
