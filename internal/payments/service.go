package payments

import (
	"context"

	"github.com/google/uuid"

	"stagepass/internal/bookings"
	"stagepass/internal/shared/apperrors"
	"stagepass/pkg/clock"
	"stagepass/pkg/logger"
)

type Service interface {
	// InitializePayment creates the PENDING payment record for a PENDING
	// booking. A booking can carry at most one payment.
	InitializePayment(ctx context.Context, bookingID uuid.UUID, amount float64, method string) (*PaymentResponse, error)

	GetPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*PaymentResponse, error)

	// VerifyPayment asks the gateway for the transaction outcome. A COMPLETED
	// payment verifies again as a no-op. A positive verdict completes the
	// payment and confirms the booking; a negative verdict marks the payment
	// FAILED and leaves the booking PENDING so payment can be retried.
	VerifyPayment(ctx context.Context, bookingID uuid.UUID) (*PaymentResponse, error)

	// RefundPayment refunds a COMPLETED payment through the gateway and
	// force-cancels the booking. Gateway failure here is fatal; the refund
	// retry sweep picks the payment up later.
	RefundPayment(ctx context.Context, bookingID uuid.UUID) (*PaymentResponse, error)

	// ListCompletedForEvent returns every COMPLETED payment for an event.
	ListCompletedForEvent(ctx context.Context, eventID uuid.UUID) ([]bookings.Payment, error)
}

type service struct {
	repo           Repository
	bookingService bookings.Service
	bookingRepo    bookings.Repository
	gateway        PaymentGateway
	clock          clock.Clock
	log            *logger.Logger
}

func NewService(repo Repository, bookingService bookings.Service, bookingRepo bookings.Repository, gateway PaymentGateway, clk clock.Clock) Service {
	return &service{
		repo:           repo,
		bookingService: bookingService,
		bookingRepo:    bookingRepo,
		gateway:        gateway,
		clock:          clk,
		log:            logger.GetDefault(),
	}
}

func (s *service) InitializePayment(ctx context.Context, bookingID uuid.UUID, amount float64, method string) (*PaymentResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookings.StatusPending {
		return nil, apperrors.NewConflict("booking is %s and cannot accept payment", booking.Status)
	}
	if amount != booking.TotalAmount {
		return nil, apperrors.NewValidation("payment amount %.2f does not match booking total %.2f", amount, booking.TotalAmount)
	}
	if existing, err := s.repo.GetByBookingID(ctx, bookingID); err == nil && existing != nil {
		return nil, apperrors.NewConflict("payment already initialized for this booking")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	if method == "" {
		method = "CARD"
	}
	payment := &bookings.Payment{
		BookingID:            bookingID,
		Amount:               amount,
		Status:               bookings.PaymentStatusPending,
		PaymentMethod:        method,
		TransactionReference: uuid.NewString(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	resp := toResponse(payment)
	return &resp, nil
}

func (s *service) GetPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(payment)
	return &resp, nil
}

func (s *service) VerifyPayment(ctx context.Context, bookingID uuid.UUID) (*PaymentResponse, error) {
	var result *bookings.Payment
	var verified bool

	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		payment, err := txRepo.GetByBookingIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if payment.Status == bookings.PaymentStatusCompleted {
			result = payment
			return nil
		}
		if payment.Status == bookings.PaymentStatusRefunded {
			return apperrors.NewConflict("payment has been refunded")
		}

		ok, err := s.gateway.VerifyTransaction(ctx, payment.TransactionReference)
		if err != nil {
			return err
		}
		if ok {
			now := s.clock.Now()
			payment.Status = bookings.PaymentStatusCompleted
			payment.PaidAt = &now
			verified = true
		} else {
			payment.Status = bookings.PaymentStatusFailed
		}
		if err := txRepo.Save(ctx, payment); err != nil {
			return err
		}
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if verified {
		if err := s.bookingService.ConfirmBooking(ctx, bookingID); err != nil {
			return nil, err
		}
	} else if result.Status == bookings.PaymentStatusFailed {
		// booking stays PENDING so the user can retry payment
		return nil, apperrors.NewConflict("payment verification failed")
	}

	resp := toResponse(result)
	return &resp, nil
}

func (s *service) RefundPayment(ctx context.Context, bookingID uuid.UUID) (*PaymentResponse, error) {
	var result *bookings.Payment

	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		payment, err := txRepo.GetByBookingIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if payment.Status == bookings.PaymentStatusRefunded {
			return apperrors.NewConflict("payment has already been refunded")
		}
		if payment.Status != bookings.PaymentStatusCompleted {
			return apperrors.NewConflict("only completed payments can be refunded")
		}

		ok, err := s.gateway.RefundTransaction(ctx, payment.TransactionReference)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewFatal("gateway rejected refund for transaction %s", payment.TransactionReference)
		}

		payment.Status = bookings.PaymentStatusRefunded
		if err := txRepo.Save(ctx, payment); err != nil {
			// the gateway has already paid out; losing the local record here
			// means the retry sweep would refund the money again
			err = apperrors.NewFatal("refund for transaction %s succeeded at the gateway but was not recorded: %v", payment.TransactionReference, err)
			s.log.LogRefundOutcome(ctx, payment.ID.String(), err)
			return err
		}
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.bookingService.CancelRefundedBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	s.log.LogRefundOutcome(ctx, result.ID.String(), nil)

	resp := toResponse(result)
	return &resp, nil
}

func (s *service) ListCompletedForEvent(ctx context.Context, eventID uuid.UUID) ([]bookings.Payment, error) {
	return s.repo.FindCompletedByEvent(ctx, eventID)
}
