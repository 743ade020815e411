package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func newCommentFixture(t *testing.T) (*ticketFixture, *CommentService, *EnrichedTicket) {
	t.Helper()
	f := newTicketFixture()
	comments := NewCommentService(f.service, f.comments)
	ticket, err := f.service.Create(context.Background(), requester, TicketCreateInput{
		Title:       "VPN down",
		Description: "cannot connect since this morning",
	})
	require.NoError(t, err)
	return f, comments, ticket
}

func TestAddComment(t *testing.T) {
	f, comments, ticket := newCommentFixture(t)
	ctx := context.Background()

	comment, err := comments.Add(ctx, requester, ticket.ID, "  still broken  ", nil)
	require.NoError(t, err)
	require.Equal(t, "still broken", comment.Content)
	require.Equal(t, requester.ID, comment.AuthorID)
	require.Nil(t, comment.ParentID)

	logged := f.timeline.byAction(domain.TimelineActionCommentAdded)
	require.Len(t, logged, 1)

	types := f.dispatcher.types()
	require.Equal(t, events.EventTicketCommentAdded, types[len(types)-1])
}

func TestAddCommentValidation(t *testing.T) {
	_, comments, ticket := newCommentFixture(t)
	ctx := context.Background()

	_, err := comments.Add(ctx, requester, ticket.ID, "   ", nil)
	requireDomainCode(t, err, "FIELD_REQUIRED", 400)

	_, err = comments.Add(ctx, requester, "missing", "hello", nil)
	requireDomainCode(t, err, "TICKET_NOT_FOUND", 404)

	_, err = comments.Add(ctx, otherUser, ticket.ID, "hello", nil)
	requireDomainCode(t, err, "FORBIDDEN", 403)
}

func TestAddCommentParentThreading(t *testing.T) {
	f, comments, ticket := newCommentFixture(t)
	ctx := context.Background()

	parent, err := comments.Add(ctx, requester, ticket.ID, "first", nil)
	require.NoError(t, err)

	reply, err := comments.Add(ctx, agentUser, ticket.ID, "on it", &parent.ID)
	require.NoError(t, err)
	require.Equal(t, parent.ID, *reply.ParentID)

	missing := "comment-999"
	_, err = comments.Add(ctx, requester, ticket.ID, "reply", &missing)
	requireDomainCode(t, err, "INVALID_PARENT", 400)

	// A parent on a different ticket is rejected too.
	second, err := f.service.Create(ctx, requester, TicketCreateInput{Title: "other", Description: "d"})
	require.NoError(t, err)
	_, err = comments.Add(ctx, requester, second.ID, "reply", &parent.ID)
	requireDomainCode(t, err, "INVALID_PARENT", 400)
}

func TestListCommentsAccess(t *testing.T) {
	_, comments, ticket := newCommentFixture(t)
	ctx := context.Background()

	_, err := comments.Add(ctx, requester, ticket.ID, "first", nil)
	require.NoError(t, err)

	listed, err := comments.ListComments(ctx, agentUser, ticket.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = comments.ListComments(ctx, otherUser, ticket.ID)
	requireDomainCode(t, err, "FORBIDDEN", 403)
}

func TestPreviewTruncatesOnRuneBoundary(t *testing.T) {
	require.Equal(t, "short", preview("  short  ", 120))
	require.Equal(t, "ab...", preview("abcdefgh", 5))
	require.Equal(t, "ab", preview("abcdefgh", 2))

	// Multi-byte runes count as one character and never get split.
	truncated := preview("héllo wörld", 8)
	require.Equal(t, "héllo...", truncated)
	for _, r := range truncated {
		require.NotEqual(t, '�', r)
	}
}

func TestListTimelineOrder(t *testing.T) {
	f, comments, ticket := newCommentFixture(t)
	ctx := context.Background()

	_, err := comments.Add(ctx, requester, ticket.ID, "first", nil)
	require.NoError(t, err)
	status := "in_progress"
	_, err = f.service.Update(ctx, agentUser, ticket.ID, TicketUpdateInput{Status: &status})
	require.NoError(t, err)

	timeline, err := comments.ListTimeline(ctx, requester, ticket.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	require.Equal(t, domain.TimelineActionCreated, timeline[0].Action)
	require.Equal(t, domain.TimelineActionCommentAdded, timeline[1].Action)
	require.Equal(t, domain.TimelineActionStatusChanged, timeline[2].Action)
}
