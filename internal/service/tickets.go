package service

import (
	"context"
	"strings"

	"github.com/iliyamo/gymhub/internal/model"
)

// TicketService handles support requests.
type TicketService struct {
	Tickets TicketStore
}

func (s *TicketService) Create(ctx context.Context, author model.User, subject, message string) (model.Ticket, error) {
	subject, message = strings.TrimSpace(subject), strings.TrimSpace(message)
	if subject == "" || message == "" {
		return model.Ticket{}, fail(ErrValidation, "subject and message are required")
	}
	if len(subject) > 255 {
		return model.Ticket{}, fail(ErrValidation, "subject is too long")
	}
	t := model.Ticket{UserID: author.ID, Subject: subject, Message: message, Status: model.TicketOpen}
	if err := s.Tickets.Create(ctx, &t); err != nil {
		return model.Ticket{}, fromStore(err, "create ticket", "ticket")
	}
	return t, nil
}

func (s *TicketService) ListMine(ctx context.Context, user model.User) ([]model.Ticket, error) {
	out, err := s.Tickets.ListByUser(ctx, user.ID)
	return out, fromStore(err, "list tickets", "ticket")
}

// AdminList lists every ticket; status may be empty.
func (s *TicketService) AdminList(ctx context.Context, status string) ([]model.Ticket, error) {
	var filter *model.TicketStatus
	if strings.TrimSpace(status) != "" {
		st, ok := model.ParseTicketStatus(status)
		if !ok {
			return nil, fail(ErrValidation, "unknown ticket status %q", status)
		}
		filter = &st
	}
	out, err := s.Tickets.List(ctx, filter)
	return out, fromStore(err, "list tickets", "ticket")
}

// AdminReply answers a ticket and sets its status.  An empty status keeps
// the current one.
func (s *TicketService) AdminReply(ctx context.Context, id uint64, status, reply string) (model.Ticket, error) {
	t, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return model.Ticket{}, fromStore(err, "load ticket", "ticket")
	}
	next := t.Status
	if strings.TrimSpace(status) != "" {
		st, ok := model.ParseTicketStatus(status)
		if !ok {
			return model.Ticket{}, fail(ErrValidation, "unknown ticket status %q", status)
		}
		next = st
	}
	reply = strings.TrimSpace(reply)
	if err := s.Tickets.Reply(ctx, id, next, reply); err != nil {
		return model.Ticket{}, fromStore(err, "reply ticket", "ticket")
	}
	t.Status, t.AdminReply = next, reply
	return t, nil
}
