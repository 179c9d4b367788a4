package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert(t *testing.T) {
	got := BuildInsert(fakeDialect{}, "orders", []string{"id", "Customer Name"})
	assert.Equal(t, `INSERT INTO "orders" ("id", "Customer Name") VALUES (?, ?)`, got)
}

func TestPlanInsert(t *testing.T) {
	idx := TableSchema{Columns: []ColumnDescriptor{
		{Name: "id", DataType: "integer"},
		{Name: "Name", DataType: "text"},
	}}.TypeIndex()

	t.Run("maps headers to catalog names", func(t *testing.T) {
		plan, err := planInsert([]string{"ID", "name"}, idx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ID", "name"}, plan.headers)
		assert.Equal(t, []int{0, 1}, plan.fields)
		assert.Equal(t, []string{"id", "Name"}, plan.columns)
	})

	t.Run("repeated header keeps position and reads last field", func(t *testing.T) {
		plan, err := planInsert([]string{"id", "name", "id"}, idx)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, plan.headers)
		assert.Equal(t, []int{2, 1}, plan.fields)
	})

	t.Run("unknown header", func(t *testing.T) {
		_, err := planInsert([]string{"id", "email"}, idx)
		var colErr *ColumnError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, "email", colErr.Header)
	})
}

func TestLoadFile_NoViolations(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "users")
	path := writeFile(t, t.TempDir(), "users.csv", "id;name\n1;Ada\n2;Grace\n3;\n")

	loader := &Loader{DB: db}
	result, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "users.csv", result.FileName)
	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, 3, result.InsertedRecords)
	assert.NotNil(t, result.SkippedRecords)
	assert.Empty(t, result.SkippedRecords)

	require.Equal(t, 3, db.rowCount("users"))
	assert.Equal(t, Int32(1), db.rows["users"][0][0])
	assert.Equal(t, Text("Grace"), db.rows["users"][1][1])
	assert.True(t, db.rows["users"][2][1].IsNull())
	assert.Equal(t, []string{`INSERT INTO "users" ("id", "name") VALUES (?, ?)`}, db.queries)
	assert.Zero(t, db.open, "connection not released")
}

func TestLoadFile_ConstraintViolationSkipped(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "table_name")
	path := writeFile(t, t.TempDir(), "table_name.csv", "id;name\n1;a\n1;b\n2;c\n")

	obs := &recordingObserver{}
	loader := &Loader{DB: db, Observer: obs}
	result, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "table_name.csv", result.FileName)
	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, 2, result.InsertedRecords)
	require.Len(t, result.SkippedRecords, 1)
	assert.Equal(t, 2, result.SkippedRecords[0].RecordIndex)
	assert.Contains(t, result.SkippedRecords[0].Message, "duplicate key")

	assert.Equal(t, []string{
		"start table_name.csv table_name",
		"skip table_name.csv 2",
		"finish table_name.csv 2/3",
	}, obs.events)
}

func TestLoadFile_CountsAlwaysBalance(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "t")
	path := writeFile(t, t.TempDir(), "t.csv", "id;name\n1;a\n1;a\n2;b\n2;b\n2;b\n3;c\n")

	result, err := (&Loader{DB: db}).LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalRecords)
	assert.Equal(t, result.TotalRecords, result.InsertedRecords+len(result.SkippedRecords))
	var indexes []int
	for _, s := range result.SkippedRecords {
		indexes = append(indexes, s.RecordIndex)
	}
	assert.Equal(t, []int{2, 4, 5}, indexes)
}

func TestLoadFile_PrefixedName(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "orders")
	path := writeFile(t, t.TempDir(), "2-orders.csv", "id;name\n1;x\n")

	result, err := (&Loader{DB: db}).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "2-orders.csv", result.FileName)
	assert.Equal(t, 1, db.rowCount("orders"))
}

func TestLoadFile_HeaderOnly(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "users")
	path := writeFile(t, t.TempDir(), "users.csv", "id;name\n")

	result, err := (&Loader{DB: db}).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, result.TotalRecords)
	assert.Zero(t, result.InsertedRecords)
}

func TestLoadFile_Fatal(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  error
		wantRows int
		record   int
	}{
		{
			name:    "missing column fails before any insert",
			content: "id;email\n1;a@b.c\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:     "conversion error aborts mid-file",
			content:  "id;name\n1;a\nx;b\n3;c\n",
			wantErr:  ErrConversion,
			wantRows: 1,
			record:   2,
		},
		{
			name:     "wrong field count",
			content:  "id;name\n1;a\n2\n",
			wantErr:  ErrMalformedFile,
			wantRows: 1,
			record:   2,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: ErrMalformedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newFakeDB()
			usersTable(db, "users")
			path := writeFile(t, t.TempDir(), "users.csv", tt.content)

			result, err := (&Loader{DB: db}).LoadFile(context.Background(), path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, result.TotalRecords)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "users.csv", loadErr.FileName)
			assert.Equal(t, tt.record, loadErr.Record)

			assert.Equal(t, tt.wantRows, db.rowCount("users"))
			assert.Zero(t, db.open)
		})
	}
}

func TestLoadFile_TableNotFound(t *testing.T) {
	db := newFakeDB()
	path := writeFile(t, t.TempDir(), "1-missing.csv", "id\n1\n")

	_, err := (&Loader{DB: db}).LoadFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Contains(t, err.Error(), "table with name [missing] not found")
	assert.Empty(t, db.queries)
}

func TestLoadFile_OtherExecutionError(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "users")
	boom := errors.New("connection reset by peer")
	db.execErr = func(_ string, args []Value) error {
		if args[0] == Int32(2) {
			return boom
		}
		return nil
	}
	path := writeFile(t, t.TempDir(), "users.csv", "id;name\n1;a\n2;b\n3;c\n")

	_, err := (&Loader{DB: db}).LoadFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecution)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, db.rowCount("users"))
}

func TestLoadFile_Delimiter(t *testing.T) {
	db := newFakeDB()
	usersTable(db, "users")
	path := writeFile(t, t.TempDir(), "users.csv", "id,name\n1,\"Lovelace, Ada\"\n")

	_, err := (&Loader{DB: db, Delimiter: ','}).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Text("Lovelace, Ada"), db.rows["users"][0][1])
}
