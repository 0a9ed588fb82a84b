package plugins

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/assetkit/assetindexer/metrics"
)

const startTimeKey = "metrics:start_time"

// checked in order, FROM last so that DELETE FROM is not read as a select
var tablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)INSERT\s+INTO\s+["\x60]?(\w+)["\x60]?`),
	regexp.MustCompile(`(?i)DELETE\s+FROM\s+["\x60]?(\w+)["\x60]?`),
	regexp.MustCompile(`(?i)UPDATE\s+["\x60]?(\w+)["\x60]?`),
	regexp.MustCompile(`(?i)FROM\s+["\x60]?(\w+)["\x60]?`),
}

// MetricsPlugin is a GORM plugin that tracks database query metrics
type MetricsPlugin struct{}

func NewMetricsPlugin() *MetricsPlugin {
	return &MetricsPlugin{}
}

func (p *MetricsPlugin) Name() string {
	return "MetricsPlugin"
}

func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		name     string
		register func(string, func(*gorm.DB)) error
		fn       func(*gorm.DB)
	}{
		{"metrics:before_query", cb.Query().Before("*").Register, p.before},
		{"metrics:after_query", cb.Query().After("*").Register, p.after},
		{"metrics:before_create", cb.Create().Before("*").Register, p.before},
		{"metrics:after_create", cb.Create().After("*").Register, p.after},
		{"metrics:before_update", cb.Update().Before("*").Register, p.before},
		{"metrics:after_update", cb.Update().After("*").Register, p.after},
		{"metrics:before_delete", cb.Delete().Before("*").Register, p.before},
		{"metrics:after_delete", cb.Delete().After("*").Register, p.after},
		{"metrics:before_raw", cb.Raw().Before("*").Register, p.before},
		{"metrics:after_raw", cb.Raw().After("*").Register, p.after},
	}
	for _, r := range registrations {
		if err := r.register(r.name, r.fn); err != nil {
			return err
		}
	}
	return nil
}

func (p *MetricsPlugin) before(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func (p *MetricsPlugin) after(db *gorm.DB) {
	value, exists := db.InstanceGet(startTimeKey)
	if !exists {
		return
	}
	start, ok := value.(time.Time)
	if !ok {
		return
	}
	duration := time.Since(start).Seconds()

	operation := getOperationType(db)
	status := "success"
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		status = "error"
	}

	metrics.DBQueriesTotal().WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration().WithLabelValues(operation, getTableName(db)).Observe(duration)

	if operation != "SELECT" && db.RowsAffected >= 0 {
		metrics.DBRowsAffected().WithLabelValues(operation).Observe(float64(db.RowsAffected))
	}
}

// getOperationType extracts the operation type from the SQL statement
func getOperationType(db *gorm.DB) string {
	if db.Statement == nil || db.Statement.SQL.Len() == 0 {
		return "UNKNOWN"
	}

	sql := strings.ToUpper(strings.TrimSpace(db.Statement.SQL.String()))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

func getTableName(db *gorm.DB) string {
	if db.Statement == nil {
		return "unknown"
	}
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	if name := extractTableFromSQL(db.Statement.SQL.String()); name != "" {
		return name
	}
	return "unknown"
}

func extractTableFromSQL(sql string) string {
	for _, re := range tablePatterns {
		if matches := re.FindStringSubmatch(sql); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}
