package invitation

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// InvitationRepository define el contrato para la persistencia de invitaciones
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	Update(ctx context.Context, inv Invitation) error
	FindForCandidate(ctx context.Context, id kernel.InvitationID, candidateID kernel.UserID) (*Invitation, error)
	FindForInterview(ctx context.Context, id kernel.InvitationID, interviewID kernel.InterviewID) (*Invitation, error)
	// ListByInterview returns invitations ordered by id
	ListByInterview(ctx context.Context, interviewID kernel.InterviewID) ([]*Invitation, error)
}
