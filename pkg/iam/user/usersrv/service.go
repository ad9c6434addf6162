package usersrv

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

const avatarDir = "avatar"

// UserService proporciona operaciones de negocio para usuarios
type UserService struct {
	userRepo    user.UserRepository
	avatarRepo  user.AvatarRepository
	passwordSvc user.PasswordService
	policy      user.PasswordPolicy
	tx          dbx.TxManager
	files       fsx.FileSystem
	mediaPrefix string
}

// NewUserService crea una nueva instancia del servicio de usuarios
func NewUserService(
	userRepo user.UserRepository,
	avatarRepo user.AvatarRepository,
	passwordSvc user.PasswordService,
	policy user.PasswordPolicy,
	tx dbx.TxManager,
	files fsx.FileSystem,
	mediaPrefix string,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		avatarRepo:  avatarRepo,
		passwordSvc: passwordSvc,
		policy:      policy,
		tx:          tx,
		files:       files,
		mediaPrefix: mediaPrefix,
	}
}

// NewID genera el identificador corto de un usuario
func NewID() kernel.UserID {
	return kernel.NewUserID(shortuuid.New())
}

// Signup registra un candidato
func (s *UserService) Signup(ctx context.Context, req user.SignupRequest) (*user.User, error) {
	hash, err := s.checkNewAccount(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewCandidate(NewID(), req.Email, req.FirstName, req.LastName, hash)
	if err := s.userRepo.Save(ctx, *u); err != nil {
		return nil, errx.Wrap(err, "failed to save user", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{"user_id": u.ID}).Info("candidate signed up")
	return u, nil
}

// CreateManager builds and stores the first manager of a company. It runs
// inside the caller's transaction when ctx carries one.
func (s *UserService) CreateManager(ctx context.Context, companyID kernel.CompanyID, req user.CreateStaffRequest) (*user.User, error) {
	return s.createStaff(ctx, companyID, req, true)
}

// checkNewAccount validates credentials for a new account and hashes the password
func (s *UserService) checkNewAccount(ctx context.Context, email, password string) (string, error) {
	email = user.NormalizeEmail(email)
	if err := user.ValidateEmail(email); err != nil {
		return "", err
	}
	if err := s.policy.Check(password); err != nil {
		return "", err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return "", errx.Wrap(err, "failed to check email existence", errx.TypeInternal)
	}
	if exists {
		return "", user.ErrUserAlreadyExists().WithDetail("email", email)
	}

	hash, err := s.passwordSvc.HashPassword(password)
	if err != nil {
		return "", errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	return hash, nil
}

// ============================================================================
// Profile
// ============================================================================

// GetCurrent devuelve el usuario del scope
func (s *UserService) GetCurrent(ctx context.Context, scope scopes.Scope) (*user.User, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, scope.UserID)
}

// UpdateProfile aplica una actualización parcial al perfil propio
func (s *UserService) UpdateProfile(ctx context.Context, scope scopes.Scope, req user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.GetCurrent(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := u.ApplyProfile(req); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, *u); err != nil {
		return nil, errx.Wrap(err, "failed to update profile", errx.TypeInternal)
	}
	return u, nil
}

// UploadAvatar replaces the avatar of the scope's user. The new blob is
// written first and removed again if the database work fails; the old
// blobs are removed only after commit.
func (s *UserService) UploadAvatar(ctx context.Context, scope scopes.Scope, filename string, data []byte) (*user.Avatar, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, user.ErrAvatarMissing()
	}

	name := fsx.UniqueName(avatarDir, filename)
	if err := s.files.WriteFile(ctx, name, data); err != nil {
		return nil, errx.Wrap(err, "failed to store avatar", errx.TypeInternal)
	}

	avatar := &user.Avatar{
		UserID: scope.UserID,
		Name:   filename,
		URL:    fsx.PublicURL(s.mediaPrefix, name),
	}

	var old []*user.Avatar
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		old, err = s.avatarRepo.FindByUser(ctx, scope.UserID)
		if err != nil {
			return err
		}
		if err := s.avatarRepo.DeleteByUser(ctx, scope.UserID); err != nil {
			return err
		}
		return s.avatarRepo.Create(ctx, avatar)
	})
	if err != nil {
		s.removeBlob(ctx, name)
		return nil, errx.Wrap(err, "failed to save avatar", errx.TypeInternal)
	}

	for _, a := range old {
		s.removeBlob(ctx, fsx.PathFromURL(s.mediaPrefix, a.URL))
	}
	return avatar, nil
}

func (s *UserService) removeBlob(ctx context.Context, name string) {
	if err := s.files.DeleteFile(ctx, name); err != nil {
		logx.WithFields(logx.Fields{"file": name, "error": err.Error()}).Warn("failed to delete blob")
	}
}

// ============================================================================
// Company staff (manager only)
// ============================================================================

// ListStaff lista el staff de la empresa del manager, sin incluirle
func (s *UserService) ListStaff(ctx context.Context, scope scopes.Scope, query string, page kernel.Page) (*kernel.Paginated[user.StaffDTO], error) {
	if err := scope.RequireManager(); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.ListStaff(ctx, user.StaffFilter{
		CompanyID: scope.CompanyID,
		ExcludeID: scope.UserID,
		Query:     query,
		Page:      page,
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to list staff", errx.TypeInternal)
	}

	out := &kernel.Paginated[user.StaffDTO]{Count: total, Results: make([]user.StaffDTO, 0, len(users))}
	for _, u := range users {
		out.Results = append(out.Results, u.ToStaffDTO())
	}
	return out, nil
}

// CreateStaff adds a non-manager colleague to the manager's company
func (s *UserService) CreateStaff(ctx context.Context, scope scopes.Scope, req user.CreateStaffRequest) (*user.User, error) {
	if err := scope.RequireManager(); err != nil {
		return nil, err
	}
	if !scope.HasCompany() {
		return nil, company.ErrNoCompany()
	}
	return s.createStaff(ctx, scope.CompanyID, req, false)
}

func (s *UserService) createStaff(ctx context.Context, companyID kernel.CompanyID, req user.CreateStaffRequest, manager bool) (*user.User, error) {
	hash, err := s.checkNewAccount(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewStaff(NewID(), req.Email, req.FirstName, req.LastName, hash, companyID, manager)
	if err := s.userRepo.Save(ctx, *u); err != nil {
		return nil, errx.Wrap(err, "failed to save staff user", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{
		"user_id":    u.ID,
		"company_id": companyID,
		"manager":    manager,
	}).Info("staff user created")
	return u, nil
}

// GetStaff returns a colleague of the manager's company
func (s *UserService) GetStaff(ctx context.Context, scope scopes.Scope, id kernel.UserID) (*user.User, error) {
	if err := scope.RequireManager(); err != nil {
		return nil, err
	}
	return s.userRepo.FindStaff(ctx, scope.CompanyID, id)
}

// UpdateStaff edits a colleague; users of other companies are NotFound
func (s *UserService) UpdateStaff(ctx context.Context, scope scopes.Scope, id kernel.UserID, req user.UpdateStaffRequest) (*user.User, error) {
	u, err := s.GetStaff(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := u.ApplyStaffUpdate(req); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, *u); err != nil {
		return nil, errx.Wrap(err, "failed to update staff user", errx.TypeInternal)
	}
	return u, nil
}
