package staffmail

import (
	"testing"

	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestRenderIdentity(t *testing.T) {
	tests := []struct {
		name  string
		mode  entities.Mode
		actor Actor
		want  Identity
	}{
		{
			name:  "NamedUserShownToStaff",
			mode:  entities.ModeNamed,
			actor: ActorUser,
			want:  testUser,
		},
		{
			name:  "AnonymousUserShownToStaff",
			mode:  entities.ModeAnonymous,
			actor: ActorUser,
			want:  AnonymousIdentity,
		},
		{
			name:  "StaffOnNamedTicket",
			mode:  entities.ModeNamed,
			actor: ActorStaff,
			want:  StaffIdentity,
		},
		{
			name:  "StaffOnAnonymousTicket",
			mode:  entities.ModeAnonymous,
			actor: ActorStaff,
			want:  StaffIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := testUser
			if tt.actor == ActorStaff {
				actual = testStaff
			}

			first := RenderIdentity(tt.mode, tt.actor, actual)
			require.Equal(t, tt.want, first)

			// Same inputs, same identity for the life of the ticket.
			for i := 0; i < 3; i++ {
				require.Equal(t, first, RenderIdentity(tt.mode, tt.actor, actual))
			}
		})
	}
}

func TestErrTicketAlreadyOpen(t *testing.T) {
	require.ErrorIs(t, ErrTicketAlreadyOpen, ErrCreationRejected)
	require.NotErrorIs(t, ErrCreationRejected, ErrTicketAlreadyOpen)
	require.True(t, StaffIdentity.Generic())
	require.False(t, testUser.Generic())
}
