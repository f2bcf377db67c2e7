package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"
	"github.com/tebeka/atexit"
)

// clickHouseRecorder writes tables into a ClickHouse database. Tables are
// created from the sample entry's fields, one column per field.
type clickHouseRecorder struct {
	conn      clickhouse.Conn
	lock      sync.Mutex
	batchSize int

	tables     map[string]*table
	entryCount int
}

// NewClickHouse connects to the ClickHouse server described by dsn, for
// example clickhouse://localhost:9000/boxsim?username=default.
func NewClickHouse(dsn string, batchSize int) (DataRecorder, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	opts.DialTimeout = 30 * time.Second
	opts.ConnOpenStrategy = clickhouse.ConnOpenInOrder

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	log.Info().Strs("addr", opts.Addr).Msg("recording to clickhouse")

	r := &clickHouseRecorder{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

func clickHouseColumnType(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool:
		return "Bool", true
	case reflect.Int8:
		return "Int8", true
	case reflect.Int16:
		return "Int16", true
	case reflect.Int32:
		return "Int32", true
	case reflect.Int, reflect.Int64:
		return "Int64", true
	case reflect.Uint8:
		return "UInt8", true
	case reflect.Uint16:
		return "UInt16", true
	case reflect.Uint32:
		return "UInt32", true
	case reflect.Uint, reflect.Uint64:
		return "UInt64", true
	case reflect.Float32:
		return "Float32", true
	case reflect.Float64:
		return "Float64", true
	case reflect.String:
		return "String", true
	default:
		return "", false
	}
}

// clickHouseCreateTable returns the MergeTree DDL for a table ordered by the
// sample's first field.
func clickHouseCreateTable(tableName string, sampleEntry any) (string, error) {
	if err := checkStructFields(sampleEntry); err != nil {
		return "", err
	}

	t := reflect.TypeOf(sampleEntry)
	columns := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		colType, ok := clickHouseColumnType(field.Type.Kind())
		if !ok {
			return "", &InvalidEntryError{Type: t, Field: field.Name}
		}

		columns = append(columns, field.Name+" "+colType)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree()\nORDER BY %s",
		tableName, strings.Join(columns, ",\n\t"), t.Field(0).Name,
	), nil
}

func (r *clickHouseRecorder) CreateTable(tableName string, sampleEntry any) error {
	ddl, err := clickHouseCreateTable(tableName, sampleEntry)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.conn.Exec(context.Background(), ddl); err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	r.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}

	return nil
}

func (r *clickHouseRecorder) InsertData(tableName string, entry any) error {
	r.lock.Lock()

	tbl, exists := r.tables[tableName]
	if !exists {
		r.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrNoSuchTable, tableName)
	}

	tbl.entries = append(tbl.entries, entry)
	r.entryCount++
	full := r.entryCount >= r.batchSize

	r.lock.Unlock()

	if full {
		return r.Flush()
	}

	return nil
}

func (r *clickHouseRecorder) ListTables() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	sort.Strings(tables)

	return tables
}

func (r *clickHouseRecorder) Flush() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.entryCount == 0 {
		return nil
	}

	ctx := context.Background()

	for tableName, tbl := range r.tables {
		if len(tbl.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			return fmt.Errorf("prepare batch for %s: %w", tableName, err)
		}

		for _, entry := range tbl.entries {
			if err := batch.Append(fieldValues(entry)...); err != nil {
				_ = batch.Abort()
				return fmt.Errorf("append to %s: %w", tableName, err)
			}
		}

		if err := batch.Send(); err != nil {
			return fmt.Errorf("send batch for %s: %w", tableName, err)
		}

		tbl.entries = nil
	}

	r.entryCount = 0

	return nil
}

func (r *clickHouseRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	return r.conn.Close()
}
