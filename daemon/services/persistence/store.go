package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/domalab/cgtrace/daemon/logger"
)

// maxOpenConns bounds the pool the same way the source's acquire_timeout
// config bounded its async pool; ten connections is enough for one
// single-writer stats worker and one single-writer metadata worker plus
// headroom for the query surface's reads, which share this same pool.
const maxOpenConns = 10

const createContainerStats = `
CREATE TABLE IF NOT EXISTS container_stats (
	timestamp          BIGINT UNSIGNED NOT NULL,
	container_id       VARCHAR(255)    NOT NULL,
	machine_id         BINARY(16)      NOT NULL,
	cpu_usage_usec     BIGINT UNSIGNED,
	cpu_user_usec      BIGINT UNSIGNED,
	cpu_system_usec    BIGINT UNSIGNED,
	cpu_nr_periods     BIGINT UNSIGNED,
	cpu_nr_throttled   BIGINT UNSIGNED,
	cpu_throttled_usec BIGINT UNSIGNED,
	cpu_nr_bursts      BIGINT UNSIGNED,
	cpu_burst_usec     BIGINT UNSIGNED,
	cpu_quota          BIGINT UNSIGNED,
	cpu_period         BIGINT UNSIGNED,
	memory_anon          BIGINT UNSIGNED,
	memory_file          BIGINT UNSIGNED,
	memory_kernel_stack  BIGINT UNSIGNED,
	memory_slab          BIGINT UNSIGNED,
	memory_sock          BIGINT UNSIGNED,
	memory_shmem         BIGINT UNSIGNED,
	memory_file_mapped   BIGINT UNSIGNED,
	memory_usage_bytes   BIGINT UNSIGNED,
	memory_limit_bytes   BIGINT UNSIGNED,
	io_rbytes BIGINT UNSIGNED,
	io_wbytes BIGINT UNSIGNED,
	io_rios   BIGINT UNSIGNED,
	io_wios   BIGINT UNSIGNED,
	net_rx_bytes   BIGINT UNSIGNED,
	net_rx_packets BIGINT UNSIGNED,
	net_tx_bytes   BIGINT UNSIGNED,
	net_tx_packets BIGINT UNSIGNED,
	INDEX idx_container_stats_lookup (container_id, timestamp)
) ENGINE=InnoDB
`

const createContainerMetadata = `
CREATE TABLE IF NOT EXISTS container_metadata (
	container_id VARCHAR(255) NOT NULL,
	machine_id   BINARY(16)   NOT NULL,
	hostname     VARCHAR(255) NOT NULL,
	label_key    VARCHAR(255) NOT NULL,
	label_value  VARCHAR(1024) NOT NULL,
	UNIQUE KEY uq_container_metadata (container_id, machine_id, label_key)
) ENGINE=InnoDB
`

const insertStatsQuery = `
INSERT INTO container_stats (
	timestamp, container_id, machine_id,
	cpu_usage_usec, cpu_user_usec, cpu_system_usec,
	cpu_nr_periods, cpu_nr_throttled, cpu_throttled_usec,
	cpu_nr_bursts, cpu_burst_usec,
	cpu_quota, cpu_period,
	memory_anon, memory_file, memory_kernel_stack, memory_slab,
	memory_sock, memory_shmem, memory_file_mapped,
	memory_usage_bytes,
	memory_limit_bytes,
	io_rbytes, io_wbytes, io_rios, io_wios,
	net_rx_bytes, net_rx_packets, net_tx_bytes, net_tx_packets
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const upsertMetadataQuery = `
INSERT INTO container_metadata (
	container_id, machine_id, hostname, label_key, label_value
) VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
	label_value = VALUES(label_value)
`

// Store is the MySQL-backed home for both StatsPersister and
// MetadataPersister responsibilities; the source splits these into two
// structs sharing a pool, but a single *sql.DB is already safe for
// concurrent use by both the stats worker and the metadata worker, so one
// Store covers both.
type Store struct {
	db *sql.DB
}

// NewStoreForTesting wraps an already-open *sql.DB (typically a sqlmock
// connection) as a Store, for packages outside persistence that need one
// without going through Open's real Ping/DSN handling.
func NewStoreForTesting(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open parses dsn (a DATABASE_URL-style MySQL connection string) and
// returns a Store with its pool configured and reachability verified via
// Ping. Callers must still call EnsureSchema before first use.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, &Error{Kind: SetupError, Cause: err}
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		logger.Error("failed to connect to %s: %v", redactDSN(dsn), err)
		return nil, &Error{Kind: ConnectionError, Cause: err}
	}

	logger.Info("connected to %s", redactDSN(dsn))
	return &Store{db: db}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema idempotently creates both tables. It replaces the source's
// separate migration tool, which this build doesn't ship: CREATE TABLE IF
// NOT EXISTS is safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createContainerStats); err != nil {
		return &Error{Kind: MigrationError, Cause: err}
	}
	if _, err := s.db.ExecContext(ctx, createContainerMetadata); err != nil {
		return &Error{Kind: MigrationError, Cause: err}
	}
	return nil
}

// InsertStatsBatch writes every row in one transaction, rolling back
// entirely on the first failure, matching persister.rs's persist_stats.
func (s *Store) InsertStatsBatch(ctx context.Context, rows []StatsRow) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.LogPersistenceBatch(len(rows), time.Since(start), err)
		return &Error{Kind: InsertError, Cause: err}
	}

	stmt, err := tx.PrepareContext(ctx, insertStatsQuery)
	if err != nil {
		tx.Rollback()
		logger.LogPersistenceBatch(len(rows), time.Since(start), err)
		return &Error{Kind: InsertError, Cause: err}
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.args()...); err != nil {
			tx.Rollback()
			logger.LogPersistenceBatch(len(rows), time.Since(start), err)
			return &Error{Kind: InsertError, Cause: err}
		}
	}

	if err := tx.Commit(); err != nil {
		logger.LogPersistenceBatch(len(rows), time.Since(start), err)
		return &Error{Kind: InsertError, Cause: err}
	}

	logger.LogPersistenceBatch(len(rows), time.Since(start), nil)
	return nil
}

// UpsertMetadata writes every label row in one transaction, matching
// persister.rs's persist_metadata loop over one container's label map.
func (s *Store) UpsertMetadata(ctx context.Context, rows []MetadataRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Kind: InsertError, Cause: err}
	}

	stmt, err := tx.PrepareContext(ctx, upsertMetadataQuery)
	if err != nil {
		tx.Rollback()
		return &Error{Kind: InsertError, Cause: err}
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.ContainerID, row.MachineID, row.Hostname, row.LabelKey, row.LabelValue); err != nil {
			tx.Rollback()
			return &Error{Kind: InsertError, Cause: err}
		}
	}

	return tx.Commit()
}

const selectStatsQuery = `
SELECT
	timestamp, container_id, machine_id,
	cpu_usage_usec, cpu_user_usec, cpu_system_usec,
	cpu_nr_periods, cpu_nr_throttled, cpu_throttled_usec,
	cpu_nr_bursts, cpu_burst_usec,
	cpu_quota, cpu_period,
	memory_anon, memory_file, memory_kernel_stack, memory_slab,
	memory_sock, memory_shmem, memory_file_mapped,
	memory_usage_bytes, memory_limit_bytes,
	io_rbytes, io_wbytes, io_rios, io_wios,
	net_rx_bytes, net_rx_packets, net_tx_bytes, net_tx_packets
FROM container_stats
WHERE (? = '' OR container_id = ?)
ORDER BY timestamp DESC
LIMIT ?
`

const selectMetadataQuery = `
SELECT container_id, machine_id, hostname, label_key, label_value
FROM container_metadata
ORDER BY container_id, label_key
`

// QueryStats returns the most recent rows for containerID (or every
// container, if empty), newest first, capped at limit.
func (s *Store) QueryStats(ctx context.Context, containerID string, limit int) ([]StatsRow, error) {
	rows, err := s.db.QueryContext(ctx, selectStatsQuery, containerID, containerID, limit)
	if err != nil {
		return nil, &Error{Kind: InsertError, Cause: err}
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(
			&row.TimestampSecs, &row.ContainerID, &row.MachineID,
			&row.CPUUsageUsec, &row.CPUUserUsec, &row.CPUSystemUsec,
			&row.CPUNrPeriods, &row.CPUNrThrottled, &row.CPUThrottledUsec,
			&row.CPUNrBursts, &row.CPUBurstUsec,
			&row.CPUQuota, &row.CPUPeriod,
			&row.MemoryAnon, &row.MemoryFile, &row.MemoryKernelStack, &row.MemorySlab,
			&row.MemorySock, &row.MemoryShmem, &row.MemoryFileMapped,
			&row.MemoryUsageBytes, &row.MemoryLimitBytes,
			&row.IORbytes, &row.IOWbytes, &row.IORios, &row.IOWios,
			&row.NetRxBytes, &row.NetRxPackets, &row.NetTxBytes, &row.NetTxPackets,
		); err != nil {
			return nil, &Error{Kind: InsertError, Cause: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Kind: InsertError, Cause: err}
	}
	return out, nil
}

// ContainerSummary is one container's identity plus its label set, as
// exposed by the query surface's /api/v1/containers endpoint.
type ContainerSummary struct {
	ContainerID string
	Hostname    string
	Labels      map[string]string
}

// QueryContainers returns every container with metadata on record, one
// entry per distinct container_id, each carrying its full label map.
func (s *Store) QueryContainers(ctx context.Context) ([]ContainerSummary, error) {
	rows, err := s.db.QueryContext(ctx, selectMetadataQuery)
	if err != nil {
		return nil, &Error{Kind: InsertError, Cause: err}
	}
	defer rows.Close()

	order := make([]string, 0)
	byID := make(map[string]*ContainerSummary)
	for rows.Next() {
		var containerID, hostname, labelKey, labelValue string
		var machineID []byte
		if err := rows.Scan(&containerID, &machineID, &hostname, &labelKey, &labelValue); err != nil {
			return nil, &Error{Kind: InsertError, Cause: err}
		}
		summary, ok := byID[containerID]
		if !ok {
			summary = &ContainerSummary{ContainerID: containerID, Hostname: hostname, Labels: map[string]string{}}
			byID[containerID] = summary
			order = append(order, containerID)
		}
		summary.Labels[labelKey] = labelValue
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Kind: InsertError, Cause: err}
	}

	out := make([]ContainerSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// redactDSN strips credentials from a DSN before it's ever logged, since
// DATABASE_URL embeds a password.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	return "***" + dsn[at:]
}
