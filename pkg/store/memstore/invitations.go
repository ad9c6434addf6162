package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
)

type InvitationRepository struct {
	s *Store
}

var _ invitation.InvitationRepository = (*InvitationRepository)(nil)

func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	return r.s.write(ctx, func(t *tables) error {
		inv.ID = kernel.InvitationID(t.next("invitations"))
		t.invitations[inv.ID] = *inv
		return nil
	})
}

func (r *InvitationRepository) Update(ctx context.Context, inv invitation.Invitation) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.invitations[inv.ID]; !ok {
			return invitation.ErrInvitationNotFound().WithDetail("invitation_id", inv.ID.String())
		}
		t.invitations[inv.ID] = inv
		return nil
	})
}

func (r *InvitationRepository) FindForCandidate(ctx context.Context, id kernel.InvitationID, candidateID kernel.UserID) (*invitation.Invitation, error) {
	return r.find(ctx, id, func(inv invitation.Invitation) bool { return inv.CandidateID == candidateID })
}

func (r *InvitationRepository) FindForInterview(ctx context.Context, id kernel.InvitationID, interviewID kernel.InterviewID) (*invitation.Invitation, error) {
	return r.find(ctx, id, func(inv invitation.Invitation) bool { return inv.InterviewID == interviewID })
}

func (r *InvitationRepository) ListByInterview(ctx context.Context, interviewID kernel.InterviewID) ([]*invitation.Invitation, error) {
	var out []*invitation.Invitation
	_ = r.s.read(ctx, func(t *tables) error {
		for _, inv := range t.invitations {
			if inv.InterviewID == interviewID {
				inv := inv
				out = append(out, &inv)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *invitation.Invitation) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *InvitationRepository) find(ctx context.Context, id kernel.InvitationID, match func(invitation.Invitation) bool) (*invitation.Invitation, error) {
	var out *invitation.Invitation
	err := r.s.read(ctx, func(t *tables) error {
		inv, ok := t.invitations[id]
		if !ok || !match(inv) {
			return invitation.ErrInvitationNotFound().WithDetail("invitation_id", id.String())
		}
		out = &inv
		return nil
	})
	return out, err
}
