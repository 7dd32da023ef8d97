// Package testutil provides an in-memory database/sql driver that emulates the
// postgres slot's state table.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

var stubSeq atomic.Int64

// StubConn records executed statements and keeps one payload per bucket. The
// upsert is matched by prefix; SELECT returns every row and ignores WHERE.
type StubConn struct {
	Execs    []string
	Buckets  []string
	Payloads map[string][]byte

	FailExec   bool // also fails Ping
	FailBegin  bool
	FailState  bool // upserts and selects on the state table
	FailCommit bool
	RowsErr    error
}

// NewStubDB registers a fresh driver and returns a sql.DB bound to it.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Payloads: make(map[string][]byte)}
	name := fmt.Sprintf("stubslot%d", stubSeq.Add(1))
	sql.Register(name, stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

// Put seeds a row directly.
func (c *StubConn) Put(bucket string, payload []byte) {
	if _, ok := c.Payloads[bucket]; !ok {
		c.Buckets = append(c.Buckets, bucket)
	}
	c.Payloads[bucket] = payload
}

type stubDriver struct{ conn *StubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailExec {
		return errors.New("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, errors.New("begin fail")
	}
	return stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, errors.New("exec fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		return driver.RowsAffected(0), nil
	}
	if c.FailState {
		return nil, errors.New("exec fail for state")
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("state upsert wants 2 args, got %d", len(args))
	}
	bucket, ok := args[0].Value.(string)
	if !ok {
		return nil, fmt.Errorf("bucket must be text, got %T", args[0].Value)
	}
	payload, ok := args[1].Value.([]byte)
	if !ok {
		return nil, fmt.Errorf("payload must be bytes, got %T", args[1].Value)
	}
	c.Put(bucket, payload)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return nil, fmt.Errorf("cannot run query: %s", query)
	}
	if c.FailState {
		return nil, errors.New("query fail for state")
	}
	rows := &stubRows{err: c.RowsErr}
	for _, bucket := range c.Buckets {
		rows.rows = append(rows.rows, []driver.Value{bucket, c.Payloads[bucket]})
	}
	return rows, nil
}

type stubTx struct{ conn *StubConn }

func (t stubTx) Commit() error {
	if t.conn.FailCommit {
		return errors.New("commit fail")
	}
	return nil
}

func (t stubTx) Rollback() error { return nil }

type stubRows struct {
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
