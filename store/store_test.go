package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/db"
	"github.com/teranos/gaffer/errors"
	gtesting "github.com/teranos/gaffer/internal/testing"
	"github.com/teranos/gaffer/report"
)

var c = annotation.MustCurie

func setupStore(t *testing.T) *SQLStore {
	t.Helper()
	conn := gtesting.CreateTestDB(t)
	require.NoError(t, db.Migrate(conn, nil))
	return NewSQLStore(conn, nil)
}

func testRecord(lineNo int, subject string) Record {
	return Record{
		LineNo: lineNo,
		Association: &annotation.Association{
			Subject:    annotation.Subject{ID: c(subject), Taxon: c("NCBITaxon:4896")},
			Relation:   annotation.RelEnables,
			Object:     annotation.Term{ID: c("GO:0005515")},
			Negated:    lineNo%2 == 0,
			Evidence:   annotation.Evidence{Type: c("ECO:0000314")},
			ProvidedBy: "PomBase",
		},
		Line: "line " + subject,
	}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	run := &Run{Source: "pombase.gaf", Format: "gaf", Group: "pombase"}
	require.NoError(t, s.CreateRun(ctx, run))
	assert.Len(t, run.ID, 36)
	assert.False(t, run.StartedAt.IsZero())

	require.NoError(t, s.SaveRecords(ctx, run.ID, []Record{
		testRecord(3, "PomBase:SPAC1"),
		testRecord(4, "PomBase:SPAC2"),
	}))
	require.NoError(t, s.SaveMessages(ctx, run.ID, []report.Message{
		{Level: report.Error, Type: report.TypeRule, Rule: "GORULE:0000011", LineNo: 5, Message: "root"},
		{Level: report.Warning, Type: report.TypeInvalidDate, LineNo: 6, Message: "fallback"},
		{Level: report.Warning, Type: report.TypeInvalidDate, LineNo: 7, Message: "fallback"},
	}))

	run.Version = "2.2"
	run.Lines, run.Skipped, run.Accepted, run.Dropped = 7, 1, 2, 1
	require.NoError(t, s.FinishRun(ctx, run))
	require.NotNil(t, run.FinishedAt)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "pombase.gaf", got.Source)
	assert.Equal(t, "2.2", got.Version)
	assert.Equal(t, "pombase", got.Group)
	assert.Equal(t, 7, got.Lines)
	assert.Equal(t, 2, got.Accepted)
	require.NotNil(t, got.FinishedAt)

	assocs, err := s.Associations(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, assocs, 2)
	assert.Equal(t, "PomBase:SPAC1", assocs[0].Subject)
	assert.Equal(t, "RO:0002327", assocs[0].Relation)
	assert.Equal(t, "NCBITaxon:4896", assocs[0].Taxon)
	assert.False(t, assocs[0].Negated)
	assert.True(t, assocs[1].Negated)
	assert.Equal(t, 4, assocs[1].LineNo)

	counts, err := s.MessageCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[report.Level]int{report.Error: 1, report.Warning: 2}, counts)
}

func TestGetRunNotFound(t *testing.T) {
	s := setupStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = s.FinishRun(context.Background(), &Run{ID: "missing"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.gaf", "b.gpad", "c.gaf"} {
		require.NoError(t, s.CreateRun(ctx, &Run{
			Source:    name,
			Format:    "gaf",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c.gaf", runs[0].Source)
	assert.Nil(t, runs[0].FinishedAt)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestForeignKeys(t *testing.T) {
	s := setupStore(t)
	err := s.SaveRecords(context.Background(), "no-such-run", []Record{testRecord(1, "PomBase:SPAC1")})
	assert.Error(t, err)
}

func TestEmptyBatchesAreNoOps(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	s := NewSQLStore(conn, nil)
	assert.NoError(t, s.SaveRecords(context.Background(), "run", nil))
	assert.NoError(t, s.SaveMessages(context.Background(), "run", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRunSQL(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("INSERT INTO runs").
		WithArgs("fixed-id", "x.gpad", "gpad", "2.0", "mgi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO runs").
		WillReturnError(errors.New("disk I/O error"))

	s := NewSQLStore(conn, nil)
	require.NoError(t, s.CreateRun(context.Background(), &Run{
		ID: "fixed-id", Source: "x.gpad", Format: "gpad", Version: "2.0", Group: "mgi",
	}))

	err = s.CreateRun(context.Background(), &Run{ID: "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert run other")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecordsRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO associations")
	prep.ExpectExec().
		WithArgs("run", 1, "PomBase:SPAC1", "RO:0002327", "GO:0005515", false,
			"ECO:0000314", "NCBITaxon:4896", "PomBase", "line PomBase:SPAC1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	s := NewSQLStore(conn, nil)
	err = s.SaveRecords(context.Background(), "run", []Record{
		testRecord(1, "PomBase:SPAC1"),
		testRecord(2, "PomBase:SPAC2"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMessagesCommit(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO messages").ExpectExec().
		WithArgs("run", "WARNING", report.TypeInvalidDate, "", 6, "l", "", "", "fallback").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := NewSQLStore(conn, nil)
	require.NoError(t, s.SaveMessages(context.Background(), "run", []report.Message{
		{Level: report.Warning, Type: report.TypeInvalidDate, LineNo: 6, Line: "l", Message: "fallback"},
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishRunSQLError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("UPDATE runs SET").WillReturnError(db.ErrDatabaseClosed)

	s := NewSQLStore(conn, nil)
	run := &Run{ID: "r"}
	err = s.FinishRun(context.Background(), run)
	require.Error(t, err)
	assert.True(t, db.IsDatabaseClosed(err))
	assert.Nil(t, run.FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
