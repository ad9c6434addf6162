// Package memstore keeps every repository in process memory. It backs the
// "memory" database driver and the service tests.
package memstore

import (
	"context"
	"maps"
	"sync"

	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

type tables struct {
	users       map[kernel.UserID]user.User
	avatars     map[kernel.AvatarID]user.Avatar
	companies   map[kernel.CompanyID]company.Company
	jobs        map[kernel.JobID]job.Job
	publishJobs map[int64]job.PublishJob
	jobResumes  map[kernel.JobID]map[kernel.ResumeID]struct{}
	resumes     map[kernel.ResumeID]resume.Resume
	interviews  map[kernel.InterviewID]interview.Interview
	invitations map[kernel.InvitationID]invitation.Invitation
	seq         map[string]int64
}

func newTables() *tables {
	return &tables{
		users:       make(map[kernel.UserID]user.User),
		avatars:     make(map[kernel.AvatarID]user.Avatar),
		companies:   make(map[kernel.CompanyID]company.Company),
		jobs:        make(map[kernel.JobID]job.Job),
		publishJobs: make(map[int64]job.PublishJob),
		jobResumes:  make(map[kernel.JobID]map[kernel.ResumeID]struct{}),
		resumes:     make(map[kernel.ResumeID]resume.Resume),
		interviews:  make(map[kernel.InterviewID]interview.Interview),
		invitations: make(map[kernel.InvitationID]invitation.Invitation),
		seq:         make(map[string]int64),
	}
}

// clone deep copies every table for a transaction working copy
func (t *tables) clone() *tables {
	c := &tables{
		users:       make(map[kernel.UserID]user.User, len(t.users)),
		avatars:     maps.Clone(t.avatars),
		companies:   maps.Clone(t.companies),
		jobs:        make(map[kernel.JobID]job.Job, len(t.jobs)),
		publishJobs: maps.Clone(t.publishJobs),
		jobResumes:  make(map[kernel.JobID]map[kernel.ResumeID]struct{}, len(t.jobResumes)),
		resumes:     maps.Clone(t.resumes),
		interviews:  make(map[kernel.InterviewID]interview.Interview, len(t.interviews)),
		invitations: maps.Clone(t.invitations),
		seq:         maps.Clone(t.seq),
	}
	for id, u := range t.users {
		c.users[id] = copyUser(u)
	}
	for id, j := range t.jobs {
		c.jobs[id] = copyJob(j)
	}
	for id, set := range t.jobResumes {
		c.jobResumes[id] = maps.Clone(set)
	}
	for id, i := range t.interviews {
		c.interviews[id] = copyInterview(i)
	}
	return c
}

func (t *tables) next(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

// Store is the in-memory database. Transactions are serialized: one
// WithinTx runs at a time against a private copy of the tables, which
// replaces the live tables on commit and is dropped on error. Readers
// outside the transaction only ever see committed rows; writes outside it
// wait until it ends.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    *tables
}

func New() *Store {
	return &Store{t: newTables()}
}

type txKey struct{}

// txState is the working copy of a running transaction
type txState struct {
	store *Store
	t     *tables
}

var _ dbx.TxManager = (*Store)(nil)

// WithinTx runs fn against a copy of the tables and commits it when fn
// returns nil
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	tx := &txState{store: s, t: s.t.clone()}
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	s.mu.Lock()
	s.t = tx.t
	s.mu.Unlock()
	return nil
}

func (s *Store) txOf(ctx context.Context) *txState {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok || tx.store != s {
		return nil
	}
	return tx
}

func (s *Store) inTx(ctx context.Context) bool {
	return s.txOf(ctx) != nil
}

// tables picks the transaction copy for ctx, or the committed tables.
// Callers hold s.mu.
func (s *Store) tables(ctx context.Context) *tables {
	if tx := s.txOf(ctx); tx != nil {
		return tx.t
	}
	return s.t
}

// read runs fn with the tables locked
func (s *Store) read(ctx context.Context, fn func(t *tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tables(ctx))
}

// write runs fn with the tables locked, waiting for any running
// transaction unless ctx belongs to it
func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tables(ctx))
}

// Ping always succeeds; it mirrors the SQL health check
func (s *Store) Ping(context.Context) error {
	return nil
}

// ============================================================================
// Repositories
// ============================================================================

func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }
func (s *Store) Avatars() *AvatarRepository         { return &AvatarRepository{s: s} }
func (s *Store) Companies() *CompanyRepository      { return &CompanyRepository{s: s} }
func (s *Store) Jobs() *JobRepository               { return &JobRepository{s: s} }
func (s *Store) Resumes() *ResumeRepository         { return &ResumeRepository{s: s} }
func (s *Store) Interviews() *InterviewRepository   { return &InterviewRepository{s: s} }
func (s *Store) Invitations() *InvitationRepository { return &InvitationRepository{s: s} }
func (s *Store) Dashboard() *DashboardRepository    { return &DashboardRepository{s: s} }

// ============================================================================
// Copies
// ============================================================================

func copyUser(u user.User) user.User {
	if u.Staff != nil {
		p := *u.Staff
		u.Staff = &p
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		u.LastLogin = &t
	}
	return u
}

func copyJob(j job.Job) job.Job {
	if j.CompanyID != nil {
		id := *j.CompanyID
		j.CompanyID = &id
	}
	return j
}

func copyInterview(i interview.Interview) interview.Interview {
	i.Feedback = maps.Clone(i.Feedback)
	if i.Feedback == nil {
		i.Feedback = interview.Feedback{}
	}
	return i
}
