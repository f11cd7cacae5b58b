package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/roster"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterService_Plots(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.roster.CreatePlot(env.farmID, PlotInput{Name: "", SizeAcres: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.roster.CreatePlot(env.farmID, PlotInput{Name: "East", SizeAcres: 0})
	assert.ErrorIs(t, err, ErrValidation)

	plot, err := env.roster.CreatePlot(env.farmID, PlotInput{Name: "East", Code: "E1", SizeAcres: 3.5})
	require.NoError(t, err)

	updated, err := env.roster.UpdatePlot(env.farmID, plot.ID, PlotInput{Name: "East field", Code: "E1", SizeAcres: 4})
	require.NoError(t, err)
	assert.Equal(t, "East field", updated.Name)
	assert.Equal(t, 4.0, updated.SizeAcres)

	plots, err := env.roster.ListPlots(env.farmID)
	require.NoError(t, err)
	assert.Len(t, plots, 1)

	require.NoError(t, env.roster.DeletePlot(env.farmID, plot.ID))
	_, err = env.roster.GetPlot(env.farmID, plot.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRosterService_DeleteReferencedPlotAndTeam(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)

	assert.ErrorIs(t, env.roster.DeletePlot(env.farmID, fx.plot.ID), ErrInvalidState)
	assert.ErrorIs(t, env.roster.DeleteTeam(env.farmID, fx.team.ID), ErrInvalidState)
}

func TestRosterService_WorkerDeletion(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	_, err := env.logs.Create(env.farmID, fx.job.ID, JobLogInput{LogDate: day("2024-03-04"), AcresDone: 1, WorkerID: fx.worker.ID, Mode: "draft"}, "sup")
	require.NoError(t, err)

	err = env.roster.DeleteWorker(env.farmID, fx.worker.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	worker, err := env.roster.SetWorkerActive(env.farmID, fx.worker.ID, false)
	require.NoError(t, err)
	assert.False(t, worker.Active)

	inactive := false
	listed, err := env.roster.ListWorkers(env.farmID, &inactive)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	fresh, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "New hire"})
	require.NoError(t, err)
	require.NoError(t, env.roster.DeleteWorker(env.farmID, fresh.ID))
	_, err = env.roster.GetWorker(env.farmID, fresh.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRosterService_WorkerDeletionBlockedByReferences(t *testing.T) {
	env := setupTestEnv(t)
	period := env.period(t, "2024-03-01", "2024-03-07")

	hire := func(name string) *models.Worker {
		t.Helper()
		worker, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: name})
		require.NoError(t, err)
		return worker
	}

	advanced := hire("Bola Ade")
	_, err := env.payroll.AddAdjustment(env.farmID, AdjustmentInput{
		WorkerID:    advanced.ID,
		PayPeriodID: &period.ID,
		AdjType:     models.AdjustmentAdvance,
		Amount:      decimal.NewFromInt(7000),
	})
	require.NoError(t, err)

	leader := hire("Lead")
	team, err := env.roster.CreateTeam(env.farmID, "South crew", &leader.ID)
	require.NoError(t, err)

	member := hire("Member")
	_, err = env.roster.AddMember(env.farmID, team.ID, member.ID, nil)
	require.NoError(t, err)

	for _, worker := range []*models.Worker{advanced, leader, member} {
		err := env.roster.DeleteWorker(env.farmID, worker.ID)
		assert.ErrorIs(t, err, ErrInvalidState, worker.FullName)

		kept, err := env.roster.GetWorker(env.farmID, worker.ID)
		require.NoError(t, err)
		assert.Equal(t, worker.ID, kept.ID)
	}
}

func TestRosterService_TeamMemberships(t *testing.T) {
	env := setupTestEnv(t)
	leader, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Lead"})
	require.NoError(t, err)
	member, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Member"})
	require.NoError(t, err)

	missing := uint(999)
	_, err = env.roster.CreateTeam(env.farmID, "Crew", &missing)
	assert.ErrorIs(t, err, ErrValidation)

	team, err := env.roster.CreateTeam(env.farmID, "Crew", &leader.ID)
	require.NoError(t, err)
	require.NotNil(t, team.Leader)
	assert.Equal(t, "Lead", team.Leader.FullName)

	start := day("2024-03-01")
	membership, err := env.roster.AddMember(env.farmID, team.ID, member.ID, &start)
	require.NoError(t, err)

	_, err = env.roster.AddMember(env.farmID, team.ID, member.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)

	active, err := env.roster.ActiveMembers(env.farmID, team.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, member.ID, active[0].ID)

	_, err = env.roster.EndMembership(env.farmID, membership.ID, day("2024-02-28"))
	assert.ErrorIs(t, err, ErrValidation)

	ended, err := env.roster.EndMembership(env.farmID, membership.ID, day("2024-03-20"))
	require.NoError(t, err)
	require.NotNil(t, ended.EndDate)

	_, err = env.roster.EndMembership(env.farmID, membership.ID, day("2024-03-21"))
	assert.ErrorIs(t, err, ErrInvalidState)

	active, err = env.roster.ActiveMembers(env.farmID, team.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = env.roster.AddMember(env.farmID, team.ID, member.ID, nil)
	require.NoError(t, err)

	members, err := env.roster.ListMembers(env.farmID, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, env.roster.DeleteTeam(env.farmID, team.ID))
}

func TestRosterService_ImportWorkers(t *testing.T) {
	env := setupTestEnv(t)
	_, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Ada Obi"})
	require.NoError(t, err)

	result, err := env.roster.ImportWorkers(env.farmID, []roster.Entry{
		{FullName: "Ada Obi"},
		{FullName: "Musa Bello", Phone: "0803"},
		{FullName: "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)

	workers, err := env.roster.ListWorkers(env.farmID, nil)
	require.NoError(t, err)
	assert.Len(t, workers, 2)
}

func TestRosterService_UploadPhoto(t *testing.T) {
	env := setupTestEnv(t)
	worker, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Ada"})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "", env.roster.PhotoURL(ctx, worker))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 60))))

	_, err = env.roster.UploadPhoto(ctx, env.farmID, worker.ID, []byte("plain text"))
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := env.roster.UploadPhoto(ctx, env.farmID, worker.ID, buf.Bytes())
	require.NoError(t, err)
	require.NotEmpty(t, updated.PhotoKey)
	assert.Equal(t, env.store.URL(updated.PhotoKey), env.roster.PhotoURL(ctx, updated))

	require.NoError(t, env.store.Delete(ctx, updated.PhotoKey))
	assert.Equal(t, "", env.roster.PhotoURL(ctx, updated))
}
