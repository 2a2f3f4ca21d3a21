package source

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissingRelation = errors.New(`relation "nope" does not exist`)

// mockDialect is an ANSI-quoting dialect that opens connections through go-sqlmock.
type mockDialect struct{}

func (mockDialect) Name() string          { return "mock" }
func (mockDialect) DriverName() string    { return "sqlmock" }
func (mockDialect) DefaultSchema() string { return "public" }
func (mockDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
func (mockDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (mockDialect) TablesQuery() string      { return "SELECT 1" }
func (mockDialect) ColumnsQuery() string     { return "SELECT 1" }
func (mockDialect) NowQuery() string         { return "SELECT now()" }
func (mockDialect) ClassifyError(err error) error {
	switch {
	case errors.Is(err, errMissingRelation):
		return ErrTableNotFound
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrConnection
	default:
		return ErrQuery
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "missing relation", err: errMissingRelation, kind: ErrTableNotFound},
		{name: "dropped connection", err: io.ErrUnexpectedEOF, kind: ErrConnection},
		{name: "server error", err: errors.New("permission denied"), kind: ErrQuery},
		{name: "deadline", err: context.DeadlineExceeded, kind: ErrConnection},
		{name: "canceled", err: context.Canceled, kind: ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(mockDialect{}, tt.err)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, tt.err, "driver error must stay reachable")
			assert.Equal(t, tt.kind, Kind(err))
		})
	}

	assert.NoError(t, Classify(mockDialect{}, nil))
}

func TestKind_Unclassified(t *testing.T) {
	assert.Nil(t, Kind(errors.New("plain")))
	assert.Nil(t, Kind(nil))
}

func TestQualifiedName(t *testing.T) {
	d := mockDialect{}
	assert.Equal(t, `"Tag"`, QualifiedName(d, "", "Tag"))
	assert.Equal(t, `"public"."Tag"`, QualifiedName(d, "public", "Tag"))
	assert.Equal(t, `"a.b"`, QualifiedName(d, "", "a.b"), "dots belong to the identifier")
	assert.Equal(t, `"x""y"`, QualifiedName(d, "", `x"y`))
}

func TestRegistry(t *testing.T) {
	Register(mockDialect{})

	d, err := Lookup("MOCK")
	require.NoError(t, err)
	assert.Equal(t, "mock", d.Name())
	assert.Contains(t, Dialects(), "mock")

	_, err = Lookup("oracle")
	require.Error(t, err)
	var unknown *UnknownDialectError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Name)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "mock")
}

func TestOptions(t *testing.T) {
	assert.Equal(t, DefaultTimeout, Options{}.StatementTimeout())
	assert.Equal(t, -1*DefaultTimeout, Options{Timeout: -DefaultTimeout}.StatementTimeout())
	assert.NotNil(t, Options{}.LoggerOrDiscard())

	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)

	ctx, cancel = WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	_, hasDeadline = ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestOpen_EmptyDSN(t *testing.T) {
	db, err := Open(context.Background(), mockDialect{}, "", nil)
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestOpen_PingSucceeds(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("open_ping_ok", sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	db, err := Open(context.Background(), mockDialect{}, "open_ping_ok", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_PingFails(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("open_ping_fail", sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	db, err := Open(context.Background(), mockDialect{}, "open_ping_fail", nil)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), unknownDriverDialect{}, "whatever", nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

type unknownDriverDialect struct{ mockDialect }

func (unknownDriverDialect) DriverName() string { return "no-such-driver" }
