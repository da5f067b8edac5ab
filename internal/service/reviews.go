package service

import (
	"context"
	"strings"

	"github.com/iliyamo/gymhub/internal/model"
)

// ReviewService lets members rate gyms after a completed booking.
type ReviewService struct {
	Bookings BookingStore
	Reviews  ReviewStore
}

type ReviewInput struct {
	BookingID uint64 `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Create stores a review.  The booking must be completed and belong to the
// author, and each booking can be reviewed once.
func (s *ReviewService) Create(ctx context.Context, author model.User, in ReviewInput) (model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, fail(ErrValidation, "rating must be between 1 and 5")
	}
	b, err := s.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return model.Review{}, fromStore(err, "load booking", "booking")
	}
	if !boughtBy(b, author) {
		return model.Review{}, fail(ErrForbidden, "you can only review your own bookings")
	}
	if b.Status != model.BookingCompleted {
		return model.Review{}, fail(ErrValidation, "only completed bookings can be reviewed")
	}
	uid := author.ID
	r := model.Review{
		BookingID: b.ID,
		GymID:     b.GymID,
		UserID:    &uid,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.Reviews.Create(ctx, &r); err != nil {
		return model.Review{}, fromStore(err, "create review", "review for this booking")
	}
	return r, nil
}

// boughtBy matches signed-in purchases by user id and guest purchases by
// the member email.
func boughtBy(b model.Booking, u model.User) bool {
	if b.UserID != nil {
		return *b.UserID == u.ID
	}
	return strings.EqualFold(b.MemberEmail, u.Email)
}

func (s *ReviewService) ListByGym(ctx context.Context, gymID uint64) ([]model.Review, error) {
	out, err := s.Reviews.ListByGym(ctx, gymID)
	return out, fromStore(err, "list reviews", "review")
}

// Delete removes a review; used for moderation.
func (s *ReviewService) Delete(ctx context.Context, id uint64) error {
	return fromStore(s.Reviews.Delete(ctx, id), "delete review", "review")
}
