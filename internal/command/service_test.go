package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/domain/fault"
	"github.com/lifeops/scheduler/internal/infra/persistence/memrepo"
	"github.com/lifeops/scheduler/pkg/logger"
)

// fakeAdapter records provider calls and optionally fails one operation.
type fakeAdapter struct {
	calls   []string
	failOn  string
	trigger []adapter.TriggerRequest
}

func (a *fakeAdapter) op(name string) error {
	a.calls = append(a.calls, name)
	if a.failOn == name {
		return errors.New("provider unavailable")
	}
	return nil
}

func (a *fakeAdapter) RegisterSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	return a.op("register")
}

func (a *fakeAdapter) UpdateSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	return a.op("update")
}

func (a *fakeAdapter) PauseSchedule(ctx context.Context, scheduleID uint64) error {
	return a.op("pause")
}

func (a *fakeAdapter) ResumeSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	return a.op("resume")
}

func (a *fakeAdapter) DeleteSchedule(ctx context.Context, scheduleID uint64) error {
	return a.op("delete")
}

func (a *fakeAdapter) TriggerCallback(ctx context.Context, req adapter.TriggerRequest) error {
	a.trigger = append(a.trigger, req)
	return a.op("trigger")
}

func (a *fakeAdapter) CheckHealth(ctx context.Context) adapter.HealthStatus {
	return adapter.HealthStatus{State: adapter.HealthReady}
}

type svcFixture struct {
	svc       *Service
	intents   *memrepo.IntentRepo
	schedules *memrepo.ScheduleRepo
	audits    *memrepo.AuditRepo
	provider  *fakeAdapter
	actor     actor.Context
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()
	f := &svcFixture{
		intents:   memrepo.NewIntentRepo(),
		schedules: memrepo.NewScheduleRepo(),
		audits:    memrepo.NewAuditRepo(),
		provider:  &fakeAdapter{},
		actor:     actor.Context{ActorType: actor.TypeUser, ActorID: "user-1", Channel: "chat"},
	}
	f.svc = NewService(f.intents, f.schedules, f.audits, f.provider, logger.NewNop())
	return f
}

func intervalCreate() CreateRequest {
	return CreateRequest{
		IntentSummary: "water the plants",
		Type:          schedule.TypeInterval,
		Definition:    schedule.Definition{IntervalCount: 1, IntervalUnit: schedule.UnitDay},
	}
}

func TestCreateActiveSchedule(t *testing.T) {
	f := newSvcFixture(t)

	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, schedule.StateActive, sched.State)
	assert.NotZero(t, sched.TaskIntentID)
	require.NotNil(t, sched.NextRunAt)

	taskIntent, err := f.intents.GetByID(context.Background(), sched.TaskIntentID)
	require.NoError(t, err)
	require.NotNil(t, taskIntent)
	assert.Equal(t, "water the plants", taskIntent.Summary)
	assert.Equal(t, "user-1", taskIntent.CreatorID)

	assert.Equal(t, []string{"register"}, f.provider.calls)

	require.Len(t, f.audits.ScheduleLogs, 1)
	assert.Equal(t, audit.EventCreate, f.audits.ScheduleLogs[0].Event)
}

func TestCreateDraftSkipsProvider(t *testing.T) {
	f := newSvcFixture(t)
	req := intervalCreate()
	req.InitialState = schedule.StateDraft

	sched, err := f.svc.Create(context.Background(), req, f.actor)
	require.NoError(t, err)
	assert.Equal(t, schedule.StateDraft, sched.State)
	assert.Empty(t, f.provider.calls)
}

func TestCreateRejectsInvalidState(t *testing.T) {
	f := newSvcFixture(t)
	req := intervalCreate()
	req.InitialState = schedule.StatePaused

	_, err := f.svc.Create(context.Background(), req, f.actor)
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}

func TestCreateRejectsInvalidDefinition(t *testing.T) {
	f := newSvcFixture(t)
	req := intervalCreate()
	req.Definition.IntervalCount = 0

	_, err := f.svc.Create(context.Background(), req, f.actor)
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}

func TestCreateProviderFailure(t *testing.T) {
	f := newSvcFixture(t)
	f.provider.failOn = "register"

	_, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	assert.True(t, fault.IsKind(err, fault.KindAdapterSync))
}

func TestUpdateRejectsIntentChange(t *testing.T) {
	f := newSvcFixture(t)
	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), sched.ID, UpdateRequest{
		TaskIntentID: mo.Some(sched.TaskIntentID + 1),
	}, f.actor)
	assert.True(t, fault.IsKind(err, fault.KindImmutableField))

	// Restating the current intent id is tolerated.
	_, err = f.svc.Update(context.Background(), sched.ID, UpdateRequest{
		TaskIntentID: mo.Some(sched.TaskIntentID),
	}, f.actor)
	assert.NoError(t, err)
}

func TestUpdateDefinitionRecomputesNextRun(t *testing.T) {
	f := newSvcFixture(t)
	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)
	before := *sched.NextRunAt

	updated, err := f.svc.Update(context.Background(), sched.ID, UpdateRequest{
		Definition: mo.Some(schedule.Definition{IntervalCount: 2, IntervalUnit: schedule.UnitHour}),
	}, f.actor)
	require.NoError(t, err)
	require.NotNil(t, updated.NextRunAt)
	assert.False(t, updated.NextRunAt.Equal(before))
	assert.Equal(t, []string{"register", "update"}, f.provider.calls)
}

func TestPauseResumeLifecycle(t *testing.T) {
	f := newSvcFixture(t)
	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)

	require.NoError(t, f.svc.Pause(context.Background(), sched.ID, TransitionOptions{}, f.actor))
	got, _ := f.schedules.GetByID(context.Background(), sched.ID)
	assert.Equal(t, schedule.StatePaused, got.State)

	// A repeated pause conflicts unless noop is allowed.
	err = f.svc.Pause(context.Background(), sched.ID, TransitionOptions{}, f.actor)
	assert.True(t, fault.IsKind(err, fault.KindConflict))
	assert.NoError(t, f.svc.Pause(context.Background(), sched.ID, TransitionOptions{AllowNoop: true}, f.actor))

	require.NoError(t, f.svc.Resume(context.Background(), sched.ID, TransitionOptions{}, f.actor))
	got, _ = f.schedules.GetByID(context.Background(), sched.ID)
	assert.Equal(t, schedule.StateActive, got.State)
	require.NotNil(t, got.NextRunAt)

	assert.Equal(t, []string{"register", "pause", "resume"}, f.provider.calls)

	var events []audit.EventType
	for _, log := range f.audits.ScheduleLogs {
		events = append(events, log.Event)
	}
	assert.Equal(t, []audit.EventType{audit.EventCreate, audit.EventPause, audit.EventResume}, events)
}

func TestResumeDraftRegisters(t *testing.T) {
	f := newSvcFixture(t)
	req := intervalCreate()
	req.InitialState = schedule.StateDraft
	sched, err := f.svc.Create(context.Background(), req, f.actor)
	require.NoError(t, err)

	require.NoError(t, f.svc.Resume(context.Background(), sched.ID, TransitionOptions{}, f.actor))
	// First activation registers rather than resumes.
	assert.Equal(t, []string{"register"}, f.provider.calls)
}

func TestDeleteThenArchive(t *testing.T) {
	f := newSvcFixture(t)
	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), sched.ID, f.actor))
	got, _ := f.schedules.GetByID(context.Background(), sched.ID)
	assert.Equal(t, schedule.StateCanceled, got.State)

	require.NoError(t, f.svc.Archive(context.Background(), sched.ID, f.actor))
	got, _ = f.schedules.GetByID(context.Background(), sched.ID)
	assert.Equal(t, schedule.StateArchived, got.State)

	// Archiving an archived schedule is a dead end.
	err = f.svc.Archive(context.Background(), sched.ID, f.actor)
	assert.Error(t, err)
}

func TestRunNowPreservesPausedState(t *testing.T) {
	f := newSvcFixture(t)
	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)
	require.NoError(t, f.svc.Pause(context.Background(), sched.ID, TransitionOptions{}, f.actor))

	auditID, err := f.svc.RunNow(context.Background(), sched.ID, RunNowRequest{TraceID: "manual-1"}, f.actor)
	require.NoError(t, err)
	assert.NotZero(t, auditID)

	got, _ := f.schedules.GetByID(context.Background(), sched.ID)
	assert.Equal(t, schedule.StatePaused, got.State, "run-now never mutates state")

	require.Len(t, f.provider.trigger, 1)
	assert.Equal(t, "manual-1", f.provider.trigger[0].TraceID)
	assert.Equal(t, "run_now", f.provider.trigger[0].Source)

	last := f.audits.ScheduleLogs[len(f.audits.ScheduleLogs)-1]
	assert.Equal(t, audit.EventRunNow, last.Event)
	assert.Equal(t, "run_now(state=paused)", last.Diff)
	assert.Equal(t, auditID, last.ID)
}

func TestRunNowGeneratesTraceID(t *testing.T) {
	f := newSvcFixture(t)
	sched, err := f.svc.Create(context.Background(), intervalCreate(), f.actor)
	require.NoError(t, err)

	_, err = f.svc.RunNow(context.Background(), sched.ID, RunNowRequest{}, f.actor)
	require.NoError(t, err)
	require.Len(t, f.provider.trigger, 1)
	assert.NotEmpty(t, f.provider.trigger[0].TraceID)
}

func TestRunNowRejectsNonRunnableStates(t *testing.T) {
	f := newSvcFixture(t)
	req := intervalCreate()
	req.InitialState = schedule.StateDraft
	sched, err := f.svc.Create(context.Background(), req, f.actor)
	require.NoError(t, err)

	_, err = f.svc.RunNow(context.Background(), sched.ID, RunNowRequest{}, f.actor)
	assert.True(t, fault.IsKind(err, fault.KindConflict))
}

func TestSupersedeIntent(t *testing.T) {
	f := newSvcFixture(t)
	old := &intent.TaskIntent{Summary: "old"}
	replacement := &intent.TaskIntent{Summary: "new"}
	require.NoError(t, f.intents.Create(context.Background(), old))
	require.NoError(t, f.intents.Create(context.Background(), replacement))

	require.NoError(t, f.svc.SupersedeIntent(context.Background(), old.ID, replacement.ID))
	got, _ := f.intents.GetByID(context.Background(), old.ID)
	require.NotNil(t, got.SupersededByIntentID)
	assert.Equal(t, replacement.ID, *got.SupersededByIntentID)

	// Re-superseding by the same intent is idempotent.
	require.NoError(t, f.svc.SupersedeIntent(context.Background(), old.ID, replacement.ID))

	err := f.svc.SupersedeIntent(context.Background(), 404, replacement.ID)
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestCreateOneTimeRequiresFutureRunAt(t *testing.T) {
	f := newSvcFixture(t)
	past := time.Now().Add(-time.Hour)
	req := CreateRequest{
		IntentSummary:      "send the report",
		Type:               schedule.TypeOneTime,
		Definition:         schedule.Definition{RunAt: &past},
		RequireFutureRunAt: true,
	}

	_, err := f.svc.Create(context.Background(), req, f.actor)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	req.RequireFutureRunAt = false
	sched, err := f.svc.Create(context.Background(), req, f.actor)
	require.NoError(t, err)
	// A past one-time run still records its run_at as the next occurrence.
	require.NotNil(t, sched.NextRunAt)
	assert.True(t, sched.NextRunAt.Equal(past))
}
