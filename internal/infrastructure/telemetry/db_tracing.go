package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentGorm registers the otelgorm plugin so every query becomes a span.
// Query variables are never attached to spans.
func InstrumentGorm(db *gorm.DB, dbName string, opts ...otelgorm.Option) error {
	opts = append([]otelgorm.Option{
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	}, opts...)
	return db.Use(otelgorm.NewPlugin(opts...))
}
