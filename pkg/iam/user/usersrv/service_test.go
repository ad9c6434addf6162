package usersrv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/fsx/fsxlocal"
	"github.com/mlinyun/Peekpa/pkg/iam/auth/authinfra"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/ptrx"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	svc   *UserService
	store *memstore.Store
	dir   string
}

func setup(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	files, err := fsxlocal.NewLocalFileSystem(dir)
	require.NoError(t, err)

	store := memstore.New()
	svc := NewUserService(
		store.Users(),
		store.Avatars(),
		authinfra.NewBcryptPasswordService(bcrypt.MinCost),
		user.PasswordPolicy{MinLength: 6, MaxLength: 20},
		store,
		files,
		"media",
	)
	return env{svc: svc, store: store, dir: dir}
}

func (e env) manager(t *testing.T, companyID kernel.CompanyID) scopes.Scope {
	t.Helper()
	m, err := e.svc.CreateManager(context.Background(), companyID, user.CreateStaffRequest{
		Email: "boss@acme.test", Password: "secret1", FirstName: "Ann", LastName: "Boss",
	})
	require.NoError(t, err)
	return scopes.Resolve(m.Principal())
}

func TestSignup(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	u, err := e.svc.Signup(ctx, user.SignupRequest{Email: "jo@Example.COM", Password: "secret1", FirstName: "Jo", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", u.Email)
	assert.False(t, u.IsStaff)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.Password)
	assert.Equal(t, "Doe Jo", u.Name())

	_, err = e.svc.Signup(ctx, user.SignupRequest{Email: "jo@example.com", Password: "secret1"})
	assert.True(t, errx.IsType(err, errx.TypeConflict))
}

func TestSignupValidation(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Signup(ctx, user.SignupRequest{Email: "not-an-email", Password: "secret1"})
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	_, err = e.svc.Signup(ctx, user.SignupRequest{Email: "a@b.test", Password: "12345"})
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	_, err = e.svc.Signup(ctx, user.SignupRequest{Email: "a@b.test", Password: "123456789012345678901"})
	assert.True(t, errx.IsType(err, errx.TypeValidation))
}

func TestUpdateProfile(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	u, err := e.svc.Signup(ctx, user.SignupRequest{Email: "jo@example.com", Password: "secret1", FirstName: "Jo"})
	require.NoError(t, err)
	scope := scopes.Resolve(u.Principal())

	female := user.GenderFemale
	got, err := e.svc.UpdateProfile(ctx, scope, user.UpdateProfileRequest{LastName: ptrx.String("Roe"), Gender: &female})
	require.NoError(t, err)
	assert.Equal(t, "Jo", got.FirstName)
	assert.Equal(t, "Roe", got.LastName)
	assert.Equal(t, user.GenderFemale, got.Gender)

	bad := user.Gender(7)
	_, err = e.svc.UpdateProfile(ctx, scope, user.UpdateProfileRequest{Gender: &bad})
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	_, err = e.svc.UpdateProfile(ctx, scopes.Scope{}, user.UpdateProfileRequest{})
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	u, err := e.svc.Signup(ctx, user.SignupRequest{Email: "jo@example.com", Password: "secret1"})
	require.NoError(t, err)
	scope := scopes.Resolve(u.Principal())

	first, err := e.svc.UploadAvatar(ctx, scope, "me.png", []byte("one"))
	require.NoError(t, err)
	firstPath := filepath.Join(e.dir, fsx.PathFromURL("media", first.URL))
	assert.FileExists(t, firstPath)

	second, err := e.svc.UploadAvatar(ctx, scope, "me.png", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first.URL, second.URL)

	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err), "old avatar blob must be removed")

	avatars, err := e.store.Avatars().FindByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, avatars, 1)
	assert.Equal(t, second.URL, avatars[0].URL)

	_, err = e.svc.UploadAvatar(ctx, scope, "me.png", nil)
	assert.True(t, errx.IsType(err, errx.TypeValidation))
}

func TestStaffManagement(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	acme := &company.Company{Name: "Acme"}
	require.NoError(t, e.store.Companies().Create(ctx, acme))
	rival := &company.Company{Name: "Rival"}
	require.NoError(t, e.store.Companies().Create(ctx, rival))

	mgr := e.manager(t, acme.ID)

	staff, err := e.svc.CreateStaff(ctx, mgr, user.CreateStaffRequest{Email: "dev@acme.test", Password: "secret1", FirstName: "Dev"})
	require.NoError(t, err)
	assert.True(t, staff.IsStaff)
	assert.Equal(t, acme.ID, staff.CompanyID())
	assert.False(t, staff.IsManager())

	page, err := e.svc.ListStaff(ctx, mgr, "", kernel.NewPage(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, staff.ID, page.Results[0].ID)

	updated, err := e.svc.UpdateStaff(ctx, mgr, staff.ID, user.UpdateStaffRequest{IsActive: ptrx.Bool(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	outsider, err := e.svc.CreateManager(ctx, rival.ID, user.CreateStaffRequest{Email: "x@rival.test", Password: "secret1"})
	require.NoError(t, err)
	_, err = e.svc.UpdateStaff(ctx, mgr, outsider.ID, user.UpdateStaffRequest{IsActive: ptrx.Bool(false)})
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	staffScope := scopes.Resolve(staff.Principal())
	_, err = e.svc.ListStaff(ctx, staffScope, "", kernel.NewPage(0, 0))
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))
}
