package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

type ResumeRepository struct {
	s *Store
}

var _ resume.ResumeRepository = (*ResumeRepository)(nil)

func (r *ResumeRepository) Create(ctx context.Context, res *resume.Resume) error {
	return r.s.write(ctx, func(t *tables) error {
		res.ID = kernel.ResumeID(t.next("resumes"))
		t.resumes[res.ID] = *res
		return nil
	})
}

func (r *ResumeRepository) FindByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	var out *resume.Resume
	err := r.s.read(ctx, func(t *tables) error {
		res, ok := t.resumes[id]
		if !ok {
			return resume.ErrResumeNotFound().WithDetail("resume_id", id.String())
		}
		out = &res
		return nil
	})
	return out, err
}

func (r *ResumeRepository) FindActive(ctx context.Context, userID kernel.UserID) (*resume.Resume, error) {
	var out *resume.Resume
	err := r.s.read(ctx, func(t *tables) error {
		for _, res := range t.resumes {
			if res.UserID == userID && res.IsActive && (out == nil || res.ID > out.ID) {
				res := res
				out = &res
			}
		}
		if out == nil {
			return resume.ErrNoActiveResume()
		}
		return nil
	})
	return out, err
}

func (r *ResumeRepository) ListUnused(ctx context.Context, userID kernel.UserID) ([]*resume.Resume, error) {
	return r.list(ctx, func(t *tables, res resume.Resume) bool {
		return res.UserID == userID && !t.resumeReferenced(res.ID)
	}, -1), nil
}

func (r *ResumeRepository) DeactivateAll(ctx context.Context, userID kernel.UserID) error {
	return r.s.write(ctx, func(t *tables) error {
		for id, res := range t.resumes {
			if res.UserID == userID && res.IsActive {
				res.IsActive = false
				t.resumes[id] = res
			}
		}
		return nil
	})
}

func (r *ResumeRepository) Delete(ctx context.Context, ids []kernel.ResumeID) error {
	return r.s.write(ctx, func(t *tables) error {
		for _, id := range ids {
			delete(t.resumes, id)
			for _, set := range t.jobResumes {
				delete(set, id)
			}
		}
		return nil
	})
}

func (r *ResumeRepository) ListOrphans(ctx context.Context, limit int) ([]*resume.Resume, error) {
	return r.list(ctx, func(t *tables, res resume.Resume) bool {
		return !res.IsActive && !t.resumeReferenced(res.ID)
	}, limit), nil
}

func (r *ResumeRepository) list(ctx context.Context, keep func(t *tables, res resume.Resume) bool, limit int) []*resume.Resume {
	var out []*resume.Resume
	_ = r.s.read(ctx, func(t *tables) error {
		for _, res := range t.resumes {
			if keep(t, res) {
				res := res
				out = append(out, &res)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *resume.Resume) int { return cmp.Compare(a.ID, b.ID) })
	return out[:window(len(out), limit)]
}

func (t *tables) resumeReferenced(id kernel.ResumeID) bool {
	for _, i := range t.interviews {
		if i.ResumeID == id {
			return true
		}
	}
	return false
}
