package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

type UserRepository struct {
	s *Store
}

var _ user.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	var out *user.User
	err := r.s.read(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		c := copyUser(u)
		out = &c
		return nil
	})
	return out, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var out *user.User
	err := r.s.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, email) {
				c := copyUser(u)
				out = &c
				return nil
			}
		}
		return user.ErrUserNotFound().WithDetail("email", email)
	})
	return out, err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepository) Save(ctx context.Context, u user.User) error {
	return r.s.write(ctx, func(t *tables) error {
		for id, other := range t.users {
			if id != u.ID && strings.EqualFold(other.Email, u.Email) {
				return user.ErrUserAlreadyExists().WithDetail("email", u.Email)
			}
		}
		t.users[u.ID] = copyUser(u)
		return nil
	})
}

func (r *UserRepository) FindStaff(ctx context.Context, companyID kernel.CompanyID, id kernel.UserID) (*user.User, error) {
	var out *user.User
	err := r.s.read(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok || !inCompany(u, companyID) {
			return user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		c := copyUser(u)
		out = &c
		return nil
	})
	return out, err
}

func (r *UserRepository) ListStaff(ctx context.Context, filter user.StaffFilter) ([]*user.User, int, error) {
	var matched []user.User
	_ = r.s.read(ctx, func(t *tables) error {
		q := strings.ToLower(filter.Query)
		for _, u := range t.users {
			if !inCompany(u, filter.CompanyID) || u.ID == filter.ExcludeID {
				continue
			}
			if q != "" && !containsFold(q, u.FirstName, u.LastName, u.Email) {
				continue
			}
			matched = append(matched, copyUser(u))
		}
		return nil
	})

	slices.SortFunc(matched, func(a, b user.User) int {
		return cmp.Or(a.DateJoined.Compare(b.DateJoined), cmp.Compare(a.ID, b.ID))
	})

	start, end := filter.Page.Slice(len(matched))
	out := make([]*user.User, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, &matched[i])
	}
	return out, len(matched), nil
}

func (r *UserRepository) FindManager(ctx context.Context, companyID kernel.CompanyID) (*user.User, error) {
	var candidates []user.User
	_ = r.s.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if inCompany(u, companyID) && u.Staff.IsManager {
				candidates = append(candidates, copyUser(u))
			}
		}
		return nil
	})
	if len(candidates) == 0 {
		return nil, user.ErrUserNotFound().WithDetail("company_id", companyID.String())
	}
	first := slices.MinFunc(candidates, func(a, b user.User) int {
		return cmp.Or(a.DateJoined.Compare(b.DateJoined), cmp.Compare(a.ID, b.ID))
	})
	return &first, nil
}

// inCompany mirrors the details @> {"company_id": X} predicate
func inCompany(u user.User, companyID kernel.CompanyID) bool {
	return companyID.Valid() && u.Staff != nil && u.Staff.CompanyID == companyID
}

type AvatarRepository struct {
	s *Store
}

var _ user.AvatarRepository = (*AvatarRepository)(nil)

func (r *AvatarRepository) FindByUser(ctx context.Context, userID kernel.UserID) ([]*user.Avatar, error) {
	var out []*user.Avatar
	_ = r.s.read(ctx, func(t *tables) error {
		for _, a := range t.avatars {
			if a.UserID == userID {
				c := a
				out = append(out, &c)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *user.Avatar) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *AvatarRepository) DeleteByUser(ctx context.Context, userID kernel.UserID) error {
	return r.s.write(ctx, func(t *tables) error {
		for id, a := range t.avatars {
			if a.UserID == userID {
				delete(t.avatars, id)
			}
		}
		return nil
	})
}

func (r *AvatarRepository) Create(ctx context.Context, a *user.Avatar) error {
	return r.s.write(ctx, func(t *tables) error {
		a.ID = kernel.AvatarID(t.next("avatars"))
		t.avatars[a.ID] = *a
		return nil
	})
}
