package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgres_CreateRun(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs`)).
		WithArgs(pgxmock.AnyArg(), "leads.csv", 3, "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "leads.csv", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompleteRun(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET`)).
		WithArgs("complete", pgxmock.AnyArg(), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tally := model.Tally{model.ClassHot: 2}
	require.NoError(t, s.CompleteRun(context.Background(), "run-1", model.RunStatusComplete, tally))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET`)).
		WithArgs("complete", pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", model.RunStatusComplete, nil)
	assert.ErrorContains(t, err, "not found")
}

func TestPostgres_GetRun(t *testing.T) {
	s, mock := newMockPostgres(t)
	created := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, input_path, lead_count, status, tally, created_at, completed_at FROM runs WHERE id = $1`)).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "input_path", "lead_count", "status", "tally", "created_at", "completed_at"},
		).AddRow("run-1", "leads.csv", 5, model.RunStatus("complete"), []byte(`{"HOT":2,"COLD":3}`), created, nil))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 5, run.LeadCount)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, 2, run.Tally[model.ClassHot])
	assert.Equal(t, 3, run.Tally[model.ClassCold])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgres(t)
	created := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE true AND status = $1 ORDER BY created_at DESC LIMIT $2`)).
		WithArgs("complete", 100).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "input_path", "lead_count", "status", "tally", "created_at", "completed_at"},
		).AddRow("run-1", "leads.csv", 5, model.RunStatus("complete"), []byte(nil), created, nil))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveScoredLeads_UsesCopy(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectCopyFrom(
		pgx.Identifier{"scored_leads"},
		[]string{"id", "run_id", "username", "score", "classification", "lead", "created_at"},
	).WillReturnResult(2)

	leads := []model.ScoredLead{
		{
			EnrichedLead: model.EnrichedLead{RawLead: model.RawLead{Username: "a"}},
			Result:       model.ScoreResult{Score: 80, Classification: model.ClassHot},
		},
		{
			EnrichedLead: model.EnrichedLead{RawLead: model.RawLead{Username: "b"}},
			Result:       model.ScoreResult{Score: 10, Classification: model.ClassUnlikely},
		},
	}
	require.NoError(t, s.SaveScoredLeads(context.Background(), "run-1", leads))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveScoredLeads_Empty(t *testing.T) {
	s, mock := newMockPostgres(t)
	require.NoError(t, s.SaveScoredLeads(context.Background(), "run-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListScoredLeads(t *testing.T) {
	s, mock := newMockPostgres(t)

	lead := model.ScoredLead{
		EnrichedLead: model.EnrichedLead{
			RawLead: model.RawLead{Username: "jane"},
			Signals: model.SignalMap{
				"contact": model.ContactSignals{Phones: []string{"5551234567"}},
			},
		},
		Result: model.ScoreResult{Score: 72, Classification: model.ClassHot},
	}
	leadJSON, err := json.Marshal(lead)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT lead FROM scored_leads WHERE run_id = $1 ORDER BY score DESC LIMIT $2`)).
		WithArgs("run-1", 1000).
		WillReturnRows(pgxmock.NewRows([]string{"lead"}).AddRow(leadJSON))

	got, err := s.ListScoredLeads(context.Background(), "run-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jane", got[0].Username)
	assert.Equal(t, 72, got[0].Result.Score)
	contact, ok := got[0].Signals["contact"].(model.ContactSignals)
	require.True(t, ok)
	assert.Equal(t, []string{"5551234567"}, contact.Phones)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Ping(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(`SELECT 1`)).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	assert.NoError(t, s.Ping(context.Background()))
}
