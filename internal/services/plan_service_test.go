package services

import (
	"testing"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countUnscoped(t *testing.T, env *testEnv, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Unscoped().Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestPlanService_Validation(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.plans.CreatePlan(env.farmID, PlanInput{Title: "", Frequency: models.FrequencyDaily, DateStart: day("2024-03-01"), DateEnd: day("2024-03-02")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.plans.CreatePlan(env.farmID, PlanInput{Title: "x", Frequency: "hourly", DateStart: day("2024-03-01"), DateEnd: day("2024-03-02")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.plans.CreatePlan(env.farmID, PlanInput{Title: "x", Frequency: models.FrequencyDaily, DateStart: day("2024-03-02"), DateEnd: day("2024-03-01")})
	assert.ErrorIs(t, err, ErrValidation)

	plan, err := env.plans.CreatePlan(env.farmID, PlanInput{Title: "x", Frequency: models.FrequencyMonthly, DateStart: day("2024-03-01"), DateEnd: day("2024-03-01")})
	require.NoError(t, err)

	updated, err := env.plans.UpdatePlan(env.farmID, plan.ID, PlanInput{Title: "April", Frequency: models.FrequencyBiweekly, DateStart: day("2024-04-01"), DateEnd: day("2024-04-30")})
	require.NoError(t, err)
	assert.Equal(t, "April", updated.Title)
}

func TestPlanService_DeleteCascadesDraftLogs(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	draft, err := env.logs.Create(env.farmID, fx.job.ID, JobLogInput{LogDate: day("2024-03-04"), AcresDone: 1, WorkerID: fx.worker.ID, Mode: models.LogStatusDraft}, "sup")
	require.NoError(t, err)

	require.NoError(t, env.plans.DeletePlan(env.farmID, fx.plan.ID))

	assert.Equal(t, int64(0), countUnscoped(t, env, &models.Plan{}, "id = ?", fx.plan.ID))
	assert.Equal(t, int64(0), countUnscoped(t, env, &models.Job{}, "id = ?", fx.job.ID))
	assert.Equal(t, int64(0), countUnscoped(t, env, &models.JobLog{}, "id = ?", draft.ID))
	assert.Equal(t, int64(0), countUnscoped(t, env, &models.JobLogTransition{}, "job_log_id = ?", draft.ID))

	_, err = env.plans.GetPlan(env.farmID, fx.plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanService_DeleteBlockedByApprovedLog(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	approved := env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 1)
	draft, err := env.logs.Create(env.farmID, fx.job.ID, JobLogInput{LogDate: day("2024-03-05"), AcresDone: 1, WorkerID: fx.worker.ID, Mode: models.LogStatusDraft}, "sup")
	require.NoError(t, err)

	err = env.plans.DeletePlan(env.farmID, fx.plan.ID)
	assert.ErrorIs(t, err, ErrImmutableState)

	_, err = env.plans.GetPlan(env.farmID, fx.plan.ID)
	assert.NoError(t, err)
	_, err = env.jobs.GetJob(env.farmID, fx.job.ID)
	assert.NoError(t, err)
	_, err = env.logs.Get(env.farmID, approved.ID)
	assert.NoError(t, err)
	_, err = env.logs.Get(env.farmID, draft.ID)
	assert.NoError(t, err)

	err = env.jobs.DeleteJob(env.farmID, fx.job.ID)
	assert.ErrorIs(t, err, ErrImmutableState)
}

func TestPlanService_DeleteOtherFarm(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	other, err := env.farms.CreateFarm("Other", "", "owner")
	require.NoError(t, err)

	err = env.plans.DeletePlan(other.ID, fx.plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
