package interviewapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview/interviewsrv"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	app    *fiber.App
	store  *memstore.Store
	tokens map[string]string
	job    kernel.JobID
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	acme := &company.Company{Name: "Acme"}
	require.NoError(t, s.Companies().Create(ctx, acme))
	rivalCo := &company.Company{Name: "Rival"}
	require.NoError(t, s.Companies().Create(ctx, rivalCo))

	staff := user.NewStaff("stf", "stf@acme.test", "Sam", "Tf", "x", acme.ID, false)
	rival := user.NewStaff("riv", "riv@rival.test", "Rita", "Val", "x", rivalCo.ID, true)
	cand := user.NewCandidate("cand", "cand@mail.test", "Cora", "Nd", "x")
	for _, u := range []*user.User{staff, rival, cand} {
		require.NoError(t, s.Users().Save(ctx, *u))
	}
	require.NoError(t, s.Resumes().Create(ctx, &resume.Resume{Name: "cv.pdf", UserID: cand.ID, URL: "media/cv.pdf", IsActive: true}))

	j, err := job.NewJob(job.CreateJobRequest{Title: "Backend", HireNumber: 1}, time.Now())
	require.NoError(t, err)
	j.AttachCompany(acme.ID)
	require.NoError(t, s.Jobs().Create(ctx, j))
	require.NoError(t, s.Jobs().CreatePublishJob(ctx, &job.PublishJob{UserID: staff.ID, JobID: j.ID}))

	jwt := auth.NewJWTServiceFromConfig(config.JWTConfig{
		SecretKey:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
		Issuer:          "peekpa",
	})
	tokens := map[string]string{}
	for _, u := range []*user.User{staff, rival, cand} {
		tok, err := jwt.GenerateAccessToken(u.Principal())
		require.NoError(t, err)
		tokens[u.ID.String()] = tok
	}

	svc := interviewsrv.NewInterviewService(s.Interviews(), s.Jobs(), s.Resumes(), s.Users(), s.Invitations(), s, events.NoopPublisher{})
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(false)})
	NewInterviewHandlers(svc).RegisterRoutes(app, auth.NewMiddleware(jwt, auth.NewMemoryBlacklist(), s.Users(), "access_token"))

	return harness{app: app, store: s, tokens: tokens, job: j.ID}
}

func (h harness) do(t *testing.T, method, path, who, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != "" {
		req.Header.Set("Authorization", "Bearer "+h.tokens[who])
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestApplyThenPassFinishesJob(t *testing.T) {
	h := newHarness(t)
	base := "/manage/job/" + h.job.String() + "/interview"

	status, _ := h.do(t, http.MethodPost, "/jobs/"+h.job.String()+"/apply", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw := h.do(t, http.MethodPost, "/jobs/"+h.job.String()+"/apply", "cand", "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var applied struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &applied))
	iid := kernel.InterviewID(applied.ID).String()

	status, raw = h.do(t, http.MethodGet, "/manage/job/all/interview", "stf", "")
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 1)

	status, _ = h.do(t, http.MethodGet, base+"/"+iid, "riv", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = h.do(t, http.MethodPatch, base+"/"+iid, "stf", `{"status": 4}`)
	require.Equal(t, http.StatusOK, status, string(raw))

	j, err := h.store.Jobs().FindByID(context.Background(), h.job)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFinished, j.Status)
}

func TestInterviewRouteGuards(t *testing.T) {
	h := newHarness(t)
	base := "/manage/job/" + h.job.String() + "/interview"

	status, _ := h.do(t, http.MethodGet, base, "cand", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(t, http.MethodGet, "/manage/job/abc/interview", "stf", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(t, http.MethodPut, base+"/1", "stf", `{}`)
	assert.Equal(t, http.StatusNotImplemented, status)

	status, _ = h.do(t, http.MethodPost, "/jobs/"+h.job.String()+"/apply", "stf", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeactivatedStaffIsLockedOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	status, _ := h.do(t, http.MethodGet, "/manage/job/all/interview", "stf", "")
	require.Equal(t, http.StatusOK, status)

	stf, err := h.store.Users().FindByID(ctx, "stf")
	require.NoError(t, err)
	stf.IsActive = false
	require.NoError(t, h.store.Users().Save(ctx, *stf))

	status, _ = h.do(t, http.MethodGet, "/manage/job/all/interview", "stf", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
