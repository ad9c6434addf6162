package jobsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/ptrx"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func staffScope(id string, companyID kernel.CompanyID, manager bool) scopes.Scope {
	uid := kernel.NewUserID(id)
	return scopes.Resolve(&kernel.AuthContext{
		UserID:  &uid,
		IsStaff: true,
		Staff:   &kernel.StaffProfile{CompanyID: companyID, IsManager: manager},
	})
}

func candidateScope(id string) scopes.Scope {
	uid := kernel.NewUserID(id)
	return scopes.Resolve(&kernel.AuthContext{UserID: &uid})
}

func newService(store *memstore.Store, repo job.JobRepository, rec events.Publisher) *JobService {
	return NewJobService(repo, store.Interviews(), store.Resumes(), store, rec).
		WithClock(func() time.Time { return fixedNow })
}

// failingPublishRepo breaks the PublishJob insert after the job row is written
type failingPublishRepo struct {
	job.JobRepository
}

func (failingPublishRepo) CreatePublishJob(context.Context, *job.PublishJob) error {
	return errors.New("publish bind failed")
}

// pausingPublishRepo holds createJob between the job insert and the
// PublishJob insert until release delivers the bind result
type pausingPublishRepo struct {
	job.JobRepository
	reached chan struct{}
	release chan error
}

func (r pausingPublishRepo) CreatePublishJob(ctx context.Context, pj *job.PublishJob) error {
	close(r.reached)
	if err := <-r.release; err != nil {
		return err
	}
	return r.JobRepository.CreatePublishJob(ctx, pj)
}

func TestCreateAndScopeContainment(t *testing.T) {
	store := memstore.New()
	rec := events.NewRecorder()
	svc := newService(store, store.Jobs(), rec)
	ctx := context.Background()

	manager := staffScope("mgr", 1, true)
	alice := staffScope("alice", 1, false)
	bob := staffScope("bob", 1, false)

	a, err := svc.Create(ctx, alice, job.CreateJobRequest{Title: "Go developer"})
	require.NoError(t, err)
	assert.Equal(t, job.StatusPublished, a.Status)
	assert.Equal(t, 1, a.HireNumber)
	assert.Equal(t, fixedNow, a.PublishTime)
	assert.Equal(t, kernel.CompanyID(1), a.Company())

	_, err = svc.Create(ctx, bob, job.CreateJobRequest{Title: "Designer"})
	require.NoError(t, err)

	mine, err := svc.ListForScope(ctx, alice, "", kernel.NewPage(0, 0))
	require.NoError(t, err)
	require.Equal(t, 1, mine.Count)
	assert.Equal(t, a.ID, mine.Results[0].ID)

	all, err := svc.ListForScope(ctx, manager, "", kernel.NewPage(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count)

	names, err := svc.Names(ctx, bob)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "Designer", names[0].Title)

	assert.Equal(t, []string{events.JobCreated, events.JobCreated}, rec.Types())
}

func TestCreateRequiresCompanyAndStaff(t *testing.T) {
	store := memstore.New()
	svc := newService(store, store.Jobs(), events.NoopPublisher{})
	ctx := context.Background()

	uid := kernel.NewUserID("drifter")
	noCompany := scopes.Resolve(&kernel.AuthContext{UserID: &uid, IsStaff: true})
	_, err := svc.Create(ctx, noCompany, job.CreateJobRequest{Title: "x"})
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	_, err = svc.Create(ctx, candidateScope("c1"), job.CreateJobRequest{Title: "x"})
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))

	_, err = svc.Create(ctx, scopes.Scope{}, job.CreateJobRequest{Title: "x"})
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))
}

func TestCreateIsAtomic(t *testing.T) {
	store := memstore.New()
	rec := events.NewRecorder()
	svc := newService(store, failingPublishRepo{JobRepository: store.Jobs()}, rec)
	ctx := context.Background()
	manager := staffScope("mgr", 1, true)

	_, err := svc.Create(ctx, manager, job.CreateJobRequest{Title: "Ghost"})
	require.Error(t, err)

	rows, total, err := store.Jobs().ListScoped(ctx, manager.Ownership(), "", kernel.NewPage(0, 0))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)

	_, total, err = store.Jobs().ListPublished(ctx, job.PublicFilter{Page: kernel.NewPage(0, 0)})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rec.Types())
}

func TestConcurrentReadersNeverSeeHalfCreatedJob(t *testing.T) {
	for name, bindErr := range map[string]error{
		"commit":   nil,
		"rollback": errors.New("publish bind failed"),
	} {
		t.Run(name, func(t *testing.T) {
			store := memstore.New()
			repo := pausingPublishRepo{
				JobRepository: store.Jobs(),
				reached:       make(chan struct{}),
				release:       make(chan error),
			}
			svc := newService(store, repo, events.NoopPublisher{})
			ctx := context.Background()
			manager := staffScope("mgr", 1, true)

			done := make(chan error, 1)
			go func() {
				_, err := svc.Create(ctx, manager, job.CreateJobRequest{Title: "Pending"})
				done <- err
			}()
			<-repo.reached

			// the job row is written, the PublishJob row is not
			_, total, err := store.Jobs().ListScoped(ctx, manager.Ownership(), "", kernel.NewPage(0, 0))
			require.NoError(t, err)
			assert.Zero(t, total)
			_, total, err = store.Jobs().ListPublished(ctx, job.PublicFilter{Page: kernel.NewPage(0, 0)})
			require.NoError(t, err)
			assert.Zero(t, total)

			repo.release <- bindErr
			createErr := <-done

			_, total, err = store.Jobs().ListScoped(ctx, manager.Ownership(), "", kernel.NewPage(0, 0))
			require.NoError(t, err)
			if bindErr != nil {
				require.Error(t, createErr)
				assert.Zero(t, total)
			} else {
				require.NoError(t, createErr)
				assert.Equal(t, 1, total)
			}
		})
	}
}

func TestUpdateOutsideScopeIsNotFound(t *testing.T) {
	store := memstore.New()
	svc := newService(store, store.Jobs(), events.NoopPublisher{})
	ctx := context.Background()

	alice := staffScope("alice", 1, false)
	j, err := svc.Create(ctx, alice, job.CreateJobRequest{Title: "Go developer"})
	require.NoError(t, err)

	closed := job.StatusClosed
	_, err = svc.UpdateForScope(ctx, staffScope("bob", 1, false), j.ID, job.UpdateJobRequest{Status: &closed})
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
	_, err = svc.UpdateForScope(ctx, staffScope("eve", 2, true), j.ID, job.UpdateJobRequest{Status: &closed})
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	got, err := svc.UpdateForScope(ctx, staffScope("mgr", 1, true), j.ID, job.UpdateJobRequest{
		Status: &closed,
		Title:  ptrx.String("Senior Go developer"),
	})
	require.NoError(t, err)
	assert.Equal(t, job.StatusClosed, got.Status)
	assert.Equal(t, "Senior Go developer", got.Title)
	assert.Equal(t, fixedNow, got.PublishTime)

	_, err = svc.GetPublished(ctx, scopes.Scope{}, j.ID)
	assert.True(t, errx.IsType(err, errx.TypeNotFound), "closed jobs are hidden from the public")
}

func TestPublicDetailFlags(t *testing.T) {
	store := memstore.New()
	svc := newService(store, store.Jobs(), events.NoopPublisher{})
	ctx := context.Background()

	j, err := svc.Create(ctx, staffScope("mgr", 1, true), job.CreateJobRequest{Title: "Go developer"})
	require.NoError(t, err)

	cand := candidateScope("cand")
	dto, err := svc.GetPublished(ctx, cand, j.ID)
	require.NoError(t, err)
	assert.False(t, dto.HasResume)
	assert.False(t, dto.Applied)

	res := &resume.Resume{Name: "cv.pdf", UserID: "cand", URL: "media/resume/cv.pdf", IsActive: true}
	require.NoError(t, store.Resumes().Create(ctx, res))
	require.NoError(t, store.Interviews().Create(ctx, interview.NewInterview(j.ID, "mgr", "cand", res.ID, fixedNow)))

	dto, err = svc.GetPublished(ctx, cand, j.ID)
	require.NoError(t, err)
	assert.True(t, dto.HasResume)
	assert.True(t, dto.Applied)

	list, err := svc.ListPublished(ctx, cand, job.PublicFilter{Page: kernel.NewPage(0, 0)})
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Nil(t, list.Results[0].PassNumber, "hiring counters are staff only")

	staffList, err := svc.ListPublished(ctx, staffScope("mgr", 1, true), job.PublicFilter{Page: kernel.NewPage(0, 0)})
	require.NoError(t, err)
	require.NotNil(t, staffList.Results[0].Resumes)
	assert.Equal(t, 1, *staffList.Results[0].Resumes)
}
