package migrations

import "embed"

// The migration files ship inside the binary so the cmd tools can
// bootstrap a fresh database without a source checkout.
var (
	//go:embed postgres/*.sql
	PostgresFS embed.FS

	//go:embed clickhouse/*.sql
	ClickhouseFS embed.FS
)
