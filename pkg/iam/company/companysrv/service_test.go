package companysrv

import (
	"context"
	"testing"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx/fsxlocal"
	"github.com/mlinyun/Peekpa/pkg/iam/auth/authinfra"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/iam/user/usersrv"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/ptrx"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var root = func() scopes.Scope {
	id := kernel.NewUserID("root")
	return scopes.Resolve(&kernel.AuthContext{UserID: &id, IsSuperuser: true})
}()

func setup(t *testing.T) (*CompanyService, *memstore.Store) {
	t.Helper()
	files, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)

	store := memstore.New()
	users := usersrv.NewUserService(
		store.Users(), store.Avatars(),
		authinfra.NewBcryptPasswordService(bcrypt.MinCost),
		user.PasswordPolicy{MinLength: 6, MaxLength: 20},
		store, files, "media",
	)
	return NewCompanyService(store.Companies(), store.Users(), store.Jobs(), users, store), store
}

func createRequest(name, email string) company.CreateCompanyRequest {
	return company.CreateCompanyRequest{
		Name: name, Website: "https://" + name + ".test",
		Email: email, Password: "secret1", FirstName: "Ann", LastName: "Boss",
	}
}

func TestCreateWithManager(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	dto, err := svc.CreateWithManager(ctx, root, createRequest("acme", "boss@acme.test"))
	require.NoError(t, err)
	require.NotNil(t, dto.User)
	assert.Equal(t, "boss@acme.test", dto.User.Email)

	mgr, err := store.Users().FindByEmail(ctx, "boss@acme.test")
	require.NoError(t, err)
	assert.True(t, mgr.IsManager())
	assert.Equal(t, dto.ID, mgr.CompanyID())

	list, err := svc.ListWithManagers(ctx, root)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mgr.ID, list[0].User.ID)
}

func TestCreateWithManagerRollsBackCompany(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	_, err := svc.CreateWithManager(ctx, root, createRequest("acme", "boss@acme.test"))
	require.NoError(t, err)

	_, err = svc.CreateWithManager(ctx, root, createRequest("copycat", "boss@acme.test"))
	assert.True(t, errx.IsType(err, errx.TypeConflict))

	all, err := store.Companies().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "company row must not survive a failed manager insert")
}

func TestAdminRequiresSuperuser(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.ListWithManagers(ctx, scopes.Scope{})
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))

	id := kernel.NewUserID("c1")
	cand := scopes.Resolve(&kernel.AuthContext{UserID: &id})
	_, err = svc.CreateWithManager(ctx, cand, createRequest("acme", "a@acme.test"))
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))
}

func TestOwnCompany(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	dto, err := svc.CreateWithManager(ctx, root, createRequest("acme", "boss@acme.test"))
	require.NoError(t, err)
	mgr, err := store.Users().FindByEmail(ctx, "boss@acme.test")
	require.NoError(t, err)
	scope := scopes.Resolve(mgr.Principal())

	got, err := svc.UpdateOwn(ctx, scope, company.UpdateCompanyRequest{Slogan: ptrx.String("We build things")})
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)
	assert.Equal(t, "We build things", got.Slogan)

	_, err = svc.UpdateOwn(ctx, scope, company.UpdateCompanyRequest{Name: ptrx.String("  ")})
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	plain := user.NewStaff("s1", "s1@acme.test", "S", "One", "x", dto.ID, false)
	staffScope := scopes.Resolve(plain.Principal())
	own, err := svc.GetOwn(ctx, staffScope)
	require.NoError(t, err)
	assert.Equal(t, "We build things", own.Slogan)

	_, err = svc.UpdateOwn(ctx, staffScope, company.UpdateCompanyRequest{Slogan: ptrx.String("no")})
	assert.True(t, errx.IsType(err, errx.TypeAuthorization))
}

func TestPublicListAndDetail(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateWithManager(ctx, root, createRequest("acme", "boss@acme.test"))
	require.NoError(t, err)
	b, err := svc.CreateWithManager(ctx, root, createRequest("bolt", "boss@bolt.test"))
	require.NoError(t, err)

	page, err := svc.List(ctx, company.ListFilter{Query: "BOL", Page: kernel.NewPage(0, 0)})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, b.ID, page.Results[0].ID)

	detail, err := svc.Get(ctx, scopes.Scope{}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "bolt", detail.Name)
	assert.Empty(t, detail.Jobs)

	_, err = svc.Get(ctx, scopes.Scope{}, 999)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
}
