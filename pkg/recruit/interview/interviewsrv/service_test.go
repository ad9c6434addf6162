package interviewsrv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memstore.Store
	svc     *InterviewService
	rec     *events.Recorder
	manager *user.User
	staff   *user.User
	rival   *user.User
	cands   []*user.User
	job     kernel.JobID
}

// setup seeds one company job published by a non manager, with hireNumber
// slots, plus candidates that each own an active resume
func setup(t *testing.T, hireNumber int, candidates int) fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	acme := &company.Company{Name: "Acme"}
	require.NoError(t, s.Companies().Create(ctx, acme))
	other := &company.Company{Name: "Rival"}
	require.NoError(t, s.Companies().Create(ctx, other))

	f := fixture{
		store:   s,
		rec:     events.NewRecorder(),
		manager: user.NewStaff("mgr", "mgr@acme.test", "Mia", "Gr", "x", acme.ID, true),
		staff:   user.NewStaff("stf", "stf@acme.test", "Sam", "Tf", "x", acme.ID, false),
		rival:   user.NewStaff("riv", "riv@rival.test", "Rita", "Val", "x", other.ID, true),
	}
	for _, u := range []*user.User{f.manager, f.staff, f.rival} {
		require.NoError(t, s.Users().Save(ctx, *u))
	}
	for i := 0; i < candidates; i++ {
		id := kernel.NewUserID("cand-" + string(rune('a'+i)))
		c := user.NewCandidate(id, id.String()+"@mail.test", "Cand", string(rune('A'+i)), "x")
		require.NoError(t, s.Users().Save(ctx, *c))
		require.NoError(t, s.Resumes().Create(ctx, &resume.Resume{
			Name: "cv.pdf", UserID: c.ID, URL: "media/resume/" + id.String() + ".pdf", IsActive: true,
		}))
		f.cands = append(f.cands, c)
	}

	j, err := job.NewJob(job.CreateJobRequest{Title: "Backend", HireNumber: hireNumber}, fixedNow)
	require.NoError(t, err)
	j.AttachCompany(acme.ID)
	require.NoError(t, s.Jobs().Create(ctx, j))
	require.NoError(t, s.Jobs().CreatePublishJob(ctx, &job.PublishJob{UserID: f.staff.ID, JobID: j.ID}))
	f.job = j.ID

	f.svc = NewInterviewService(s.Interviews(), s.Jobs(), s.Resumes(), s.Users(), s.Invitations(), s, f.rec).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func scopeOf(u *user.User) scopes.Scope {
	return scopes.Resolve(u.Principal())
}

func status(s interview.Status) interview.UpdateInterviewRequest {
	return interview.UpdateInterviewRequest{Status: &s}
}

func TestApplyCreatesInterviewForPublisher(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	i, err := f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	require.NoError(t, err)
	assert.Equal(t, f.staff.ID, i.InterviewerID)
	assert.Equal(t, f.cands[0].ID, i.CandidateID)
	assert.Equal(t, interview.StatusApplied, i.Status)
	assert.Equal(t, fixedNow, i.PublishTime)

	// applying twice is allowed
	again, err := f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	require.NoError(t, err)
	assert.NotEqual(t, i.ID, again.ID)

	summary, err := f.store.Jobs().FindPublished(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Interviews)
	assert.Equal(t, []string{events.InterviewApplied, events.InterviewApplied}, f.rec.Types())
}

func TestApplyGuards(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, scopes.Scope{}, f.job)
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))

	_, err = f.svc.Apply(ctx, scopeOf(f.cands[0]), 999)
	assert.True(t, errors.Is(err, job.ErrJobNotFound()))

	_, err = f.svc.Apply(ctx, scopeOf(f.staff), f.job)
	assert.True(t, errors.Is(err, interview.ErrStaffCannotApply()))

	noResume := user.NewCandidate("nores", "nores@mail.test", "No", "Res", "x")
	require.NoError(t, f.store.Users().Save(ctx, *noResume))
	_, err = f.svc.Apply(ctx, scopeOf(noResume), f.job)
	assert.True(t, errors.Is(err, resume.ErrNoActiveResume()))

	// a job that stopped accepting applications reads as missing
	j, err := f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	j.Status = job.StatusFinished
	require.NoError(t, f.store.Jobs().Update(ctx, *j))
	_, err = f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	assert.True(t, errors.Is(err, job.ErrJobNotFound()))

	assert.Empty(t, f.rec.Types())
}

func TestPassingFillsQuotaAndFinishesJob(t *testing.T) {
	f := setup(t, 2, 2)
	ctx := context.Background()

	var ids []kernel.InterviewID
	for _, c := range f.cands {
		i, err := f.svc.Apply(ctx, scopeOf(c), f.job)
		require.NoError(t, err)
		ids = append(ids, i.ID)
	}

	first, err := f.svc.Update(ctx, scopeOf(f.manager), f.job, ids[0], status(interview.StatusPassed))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Job.PassNumber)

	j, err := f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPublished, j.Status)

	// re-applying the same pass does not move the count
	_, err = f.svc.Update(ctx, scopeOf(f.manager), f.job, ids[0], status(interview.StatusPassed))
	require.NoError(t, err)
	j, err = f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPublished, j.Status)

	second, err := f.svc.Update(ctx, scopeOf(f.manager), f.job, ids[1], status(interview.StatusPassed))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Job.PassNumber)

	j, err = f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFinished, j.Status)
	assert.Contains(t, f.rec.Types(), events.JobFinished)
}

func TestConcurrentPassesFinishJobOnce(t *testing.T) {
	f := setup(t, 2, 2)
	ctx := context.Background()

	var ids []kernel.InterviewID
	for _, c := range f.cands {
		i, err := f.svc.Apply(ctx, scopeOf(c), f.job)
		require.NoError(t, err)
		ids = append(ids, i.ID)
	}

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id kernel.InterviewID) {
			defer wg.Done()
			<-start
			_, err := f.svc.Update(ctx, scopeOf(f.manager), f.job, id, status(interview.StatusPassed))
			errs <- err
		}(id)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	j, err := f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFinished, j.Status)

	finished := 0
	for _, typ := range f.rec.Types() {
		if typ == events.JobFinished {
			finished++
		}
	}
	assert.Equal(t, 1, finished)
}

func TestSinglePassFinishesSingleHireJob(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	i, err := f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	require.NoError(t, err)

	feedback := interview.Feedback{"note": "great"}
	req := status(interview.StatusPassed)
	req.Feedback = &feedback
	dto, err := f.svc.Update(ctx, scopeOf(f.staff), f.job, i.ID, req)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusPassed, dto.Status)
	assert.Equal(t, "great", dto.Feedback["note"])

	j, err := f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFinished, j.Status)
}

func TestOtherStatusesLeaveJobOpen(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	i, err := f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, scopeOf(f.manager), f.job, i.ID, status(2))
	require.NoError(t, err)

	j, err := f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPublished, j.Status)

	_, err = f.svc.Update(ctx, scopeOf(f.manager), f.job, i.ID, status(-1))
	assert.True(t, errors.Is(err, interview.ErrInvalidStatus()))
}

func TestInterviewScoping(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	i, err := f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	require.NoError(t, err)

	// another company's manager cannot see or touch it
	_, err = f.svc.Get(ctx, scopeOf(f.rival), f.job, i.ID)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
	_, err = f.svc.Update(ctx, scopeOf(f.rival), f.job, i.ID, status(interview.StatusPassed))
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	rows, err := f.svc.List(ctx, scopeOf(f.rival), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// the interviewer and the manager both see it
	for _, u := range []*user.User{f.staff, f.manager} {
		rows, err := f.svc.List(ctx, scopeOf(u), &f.job)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, i.ID, rows[0].ID)
	}

	// a colleague who does not interview it does not
	colleague := user.NewStaff("col", "col@acme.test", "Col", "Lea", "x", f.manager.CompanyID(), false)
	require.NoError(t, f.store.Users().Save(ctx, *colleague))
	rows, err = f.svc.List(ctx, scopeOf(colleague), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, err = f.svc.Get(ctx, scopeOf(colleague), f.job, i.ID)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	// the interview must belong to the job in the path
	_, err = f.svc.Get(ctx, scopeOf(f.manager), f.job+1, i.ID)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	_, err = f.svc.List(ctx, scopeOf(f.cands[0]), nil)
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))

	// the job stays open after the rejected cross company pass
	j, err := f.store.Jobs().FindByID(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPublished, j.Status)
}

func TestDTOCarriesCurrentInvitation(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	i, err := f.svc.Apply(ctx, scopeOf(f.cands[0]), f.job)
	require.NoError(t, err)

	first := invitation.New(i.ID, 1, "round one", f.staff.ID, f.cands[0].ID, fixedNow, 72*time.Hour)
	require.NoError(t, f.store.Invitations().Create(ctx, first))
	second := invitation.New(i.ID, 2, "round two", f.staff.ID, f.cands[0].ID, fixedNow, 72*time.Hour)
	require.NoError(t, f.store.Invitations().Create(ctx, second))

	dto, err := f.svc.Get(ctx, scopeOf(f.manager), f.job, i.ID)
	require.NoError(t, err)
	assert.Nil(t, dto.Invitation)
	assert.Equal(t, "Tf Sam", dto.Interviewer)
	assert.Equal(t, f.cands[0].ID, dto.Candidate.ID)
	assert.Equal(t, "cv.pdf", dto.Resume.Name)
	assert.Equal(t, "Backend", dto.Job.Title)

	dto, err = f.svc.Update(ctx, scopeOf(f.manager), f.job, i.ID, status(2))
	require.NoError(t, err)
	require.NotNil(t, dto.Invitation)
	assert.Equal(t, second.ID, dto.Invitation.ID)
	assert.Equal(t, "round two", dto.Invitation.Message)
}
