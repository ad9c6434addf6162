package invitationinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
)

const invitationColumns = `id, interview_id, status, message, interviewer_id, candidate_id,
	response, publish_time, update_time, due_time`

// PostgresInvitationRepository implementación de PostgreSQL para InvitationRepository
type PostgresInvitationRepository struct {
	db *sqlx.DB
}

func NewPostgresInvitationRepository(db *sqlx.DB) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{db: db}
}

var _ invitation.InvitationRepository = (*PostgresInvitationRepository)(nil)

func (r *PostgresInvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	query := `
		INSERT INTO invitations (interview_id, status, message, interviewer_id, candidate_id,
			response, publish_time, update_time, due_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &inv.ID, query,
		int64(inv.InterviewID), inv.Status, inv.Message, inv.InterviewerID.String(), inv.CandidateID.String(),
		inv.Response, inv.PublishTime, inv.UpdateTime, inv.DueTime)
	if err != nil {
		return errx.Wrap(err, "failed to create invitation", errx.TypeInternal)
	}
	return nil
}

// Update never touches publish_time or due_time
func (r *PostgresInvitationRepository) Update(ctx context.Context, inv invitation.Invitation) error {
	query := `
		UPDATE invitations SET
			status = :status, message = :message, response = :response, update_time = :update_time
		WHERE id = :id`
	res, err := dbx.Conn(ctx, r.db).NamedExecContext(ctx, query, inv)
	if err != nil {
		return errx.Wrap(err, "failed to update invitation", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return invitation.ErrInvitationNotFound().WithDetail("invitation_id", inv.ID.String())
	}
	return nil
}

func (r *PostgresInvitationRepository) FindForCandidate(ctx context.Context, id kernel.InvitationID, candidateID kernel.UserID) (*invitation.Invitation, error) {
	return r.findOne(ctx, id, `candidate_id = $2`, candidateID.String())
}

func (r *PostgresInvitationRepository) FindForInterview(ctx context.Context, id kernel.InvitationID, interviewID kernel.InterviewID) (*invitation.Invitation, error) {
	return r.findOne(ctx, id, `interview_id = $2`, int64(interviewID))
}

func (r *PostgresInvitationRepository) ListByInterview(ctx context.Context, interviewID kernel.InterviewID) ([]*invitation.Invitation, error) {
	var out []*invitation.Invitation
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE interview_id = $1 ORDER BY id`
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &out, query, int64(interviewID)); err != nil {
		return nil, errx.Wrap(err, "failed to list invitations", errx.TypeInternal)
	}
	return out, nil
}

func (r *PostgresInvitationRepository) findOne(ctx context.Context, id kernel.InvitationID, cond string, arg any) (*invitation.Invitation, error) {
	var inv invitation.Invitation
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1 AND ` + cond
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &inv, query, int64(id), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invitation.ErrInvitationNotFound().WithDetail("invitation_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find invitation", errx.TypeInternal)
	}
	return &inv, nil
}
