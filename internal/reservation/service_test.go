package reservation_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	paymentDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
	reservationDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/reservation"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/events"
	paymentPkg "github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
	reservationPkg "github.com/mostafaSataki/LprParkingWeb-sub000/internal/reservation"
)

func TestReservationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reservation Service Suite")
}

// Mock repository with injectable errors.
type mockReservationRepository struct {
	reservations map[int64]*reservationDatamodel.Reservation
	payments     []*paymentDatamodel.Payment

	getError           error
	createError        error
	createPaymentError error
	settleError        error
	finalizeError      error
	updateStatusError  error
}

func newMockReservationRepository() *mockReservationRepository {
	return &mockReservationRepository{
		reservations: make(map[int64]*reservationDatamodel.Reservation),
	}
}

func (m *mockReservationRepository) GetByID(id int64) (*reservationDatamodel.Reservation, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	res, ok := m.reservations[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return res, nil
}

func (m *mockReservationRepository) GetByCode(code string) (*reservationDatamodel.Reservation, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, res := range m.reservations {
		if res.ReservationCode == code {
			return res, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *mockReservationRepository) List(limit, offset int) ([]*reservationDatamodel.Reservation, int64, error) {
	if m.getError != nil {
		return nil, 0, m.getError
	}
	var out []*reservationDatamodel.Reservation
	for _, res := range m.reservations {
		out = append(out, res)
	}
	return out, int64(len(out)), nil
}

func (m *mockReservationRepository) Create(res *reservationDatamodel.Reservation) error {
	if m.createError != nil {
		return m.createError
	}
	res.ID = int64(len(m.reservations) + 1)
	res.CreatedAt = time.Now()
	m.reservations[res.ID] = res
	return nil
}

func (m *mockReservationRepository) UpdateStatus(id int64, status string) error {
	if m.updateStatusError != nil {
		return m.updateStatusError
	}
	if res, ok := m.reservations[id]; ok {
		res.Status = status
	}
	return nil
}

func (m *mockReservationRepository) CreatePayment(p *paymentDatamodel.Payment) error {
	if m.createPaymentError != nil {
		return m.createPaymentError
	}
	p.ID = int64(len(m.payments) + 1)
	p.CreatedAt = time.Now()
	m.payments = append(m.payments, p)
	if res, ok := m.reservations[p.ReservationID]; ok {
		res.Payments = append([]*paymentDatamodel.Payment{p}, res.Payments...)
	}
	return nil
}

func (m *mockReservationRepository) SettleOffline(reservationID int64, p *paymentDatamodel.Payment) (*reservationDatamodel.Reservation, error) {
	if m.settleError != nil {
		return nil, m.settleError
	}
	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, internal.ErrReservationNotFound
	}
	if err := m.CreatePayment(p); err != nil {
		return nil, err
	}
	var paid int64
	for _, pay := range res.Payments {
		paid += pay.Amount
	}
	res.PaidAmount = paid
	res.IsPaid = paid >= res.TotalAmount
	if res.IsPaid &&
		(res.Status == reservationDatamodel.StatusPending ||
			res.Status == reservationDatamodel.StatusActive) {
		res.Status = reservationDatamodel.StatusConfirmed
	}
	return res, nil
}

func (m *mockReservationRepository) FinalizeOnline(transactionID string, succeeded bool, failureReason *string, refID string) (*paymentDatamodel.Payment, *reservationDatamodel.Reservation, error) {
	if m.finalizeError != nil {
		return nil, nil, m.finalizeError
	}
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			if p.Status != paymentDatamodel.StatusPending {
				return p, nil, nil
			}
			now := time.Now()
			p.ProcessedAt = &now
			if !succeeded {
				p.Status = paymentDatamodel.StatusFailed
				p.FailureReason = failureReason
				return p, nil, nil
			}
			p.Status = paymentDatamodel.StatusCompleted
			res := m.reservations[p.ReservationID]
			var paid int64
			for _, pay := range res.Payments {
				paid += pay.Amount
			}
			res.PaidAmount = paid
			res.IsPaid = paid >= res.TotalAmount
			if res.IsPaid &&
				(res.Status == reservationDatamodel.StatusPending ||
					res.Status == reservationDatamodel.StatusActive) {
				res.Status = reservationDatamodel.StatusConfirmed
			}
			return p, res, nil
		}
	}
	return nil, nil, internal.ErrPaymentNotFound
}

type mockTariffQuoter struct {
	amount int64
	err    error
}

func (m *mockTariffQuoter) QuoteStay(tariffID int64, entry time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.amount, nil
}

var _ = Describe("SettlementService", func() {
	var (
		service    *reservationPkg.Service
		mockRepo   *mockReservationRepository
		mockServer *httptest.Server
		logger     *slog.Logger
		ctx        context.Context

		gatewayFail bool
	)

	newReservation := func(total, paid int64, status string) *reservationDatamodel.Reservation {
		res := &reservationDatamodel.Reservation{
			ReservationCode: reservationPkg.NewReservationCode(),
			CustomerName:    "Test Customer",
			CustomerPhone:   "09120000000",
			LicensePlate:    "11B222-33",
			EntryTime:       time.Now().Add(-time.Hour),
			TotalAmount:     total,
			Status:          status,
		}
		Expect(mockRepo.Create(res)).To(Succeed())
		if paid > 0 {
			p := &paymentDatamodel.Payment{
				ReservationID: res.ID,
				TransactionID: paymentPkg.NewTransactionID(),
				Amount:        paid,
				PaymentMethod: paymentDatamodel.MethodCash,
				Status:        paymentDatamodel.StatusCompleted,
			}
			Expect(mockRepo.CreatePayment(p)).To(Succeed())
			res.PaidAmount = paid
		}
		return res
	}

	BeforeEach(func() {
		ctx = context.Background()
		gatewayFail = false
		mockRepo = newMockReservationRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if gatewayFail {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"errors": []string{"merchant temporarily disabled"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{
					"authority":   "A0000123",
					"payment_url": "https://gateway.test/pay/A0000123",
				},
			})
		}))

		gatewayClient := paymentgateway.NewClient(paymentgateway.Config{
			BaseURL:    mockServer.URL,
			MerchantID: "test-merchant",
		}, logger)

		service = reservationPkg.NewService(
			mockRepo,
			gatewayClient,
			&mockTariffQuoter{amount: 50000},
			events.NewEventBus(logger),
			"http://localhost:8080/api/v1/payment/callback",
			logger,
		)
	})

	AfterEach(func() {
		mockServer.Close()
	})

	Describe("GetPaymentInfo", func() {
		Context("when the reservation exists", func() {
			It("returns balance figures over all payments", func() {
				// Given
				res := newReservation(100000, 40000, reservationDatamodel.StatusPending)

				// When
				info, err := service.GetPaymentInfo(ctx, res.ID)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(info.TotalPaid).To(Equal(int64(40000)))
				Expect(info.RemainingAmount).To(Equal(int64(60000)))
				Expect(info.IsFullyPaid).To(BeFalse())
				Expect(info.Reservation.ID).To(Equal(res.ID))
			})

			It("counts pending payments toward the total", func() {
				// Given
				res := newReservation(100000, 0, reservationDatamodel.StatusPending)
				pending := &paymentDatamodel.Payment{
					ReservationID: res.ID,
					TransactionID: paymentPkg.NewTransactionID(),
					Amount:        30000,
					PaymentMethod: paymentDatamodel.MethodOnline,
					Status:        paymentDatamodel.StatusPending,
				}
				Expect(mockRepo.CreatePayment(pending)).To(Succeed())

				// When
				info, err := service.GetPaymentInfo(ctx, res.ID)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(info.TotalPaid).To(Equal(int64(30000)))
				Expect(info.RemainingAmount).To(Equal(int64(70000)))
			})
		})

		Context("when the reservation does not exist", func() {
			It("returns a not found error", func() {
				// When
				info, err := service.GetPaymentInfo(ctx, 999)

				// Then
				Expect(err).To(Equal(internal.ErrReservationNotFound))
				Expect(info).To(BeNil())
			})
		})
	})

	Describe("SubmitPayment", func() {
		Describe("validation order", func() {
			It("rejects a non-positive amount before anything else", func() {
				// Given an unknown reservation so existence would also fail
				dto := reservationPkg.SubmitPaymentDTO{Amount: 0, PaymentMethod: "BOGUS"}

				// When
				resp, err := service.SubmitPayment(ctx, 999, dto)

				// Then the amount error wins
				Expect(resp).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.GetDetailedMessage()).To(ContainSubstring("amount must be greater than 0"))
			})

			It("rejects an unknown payment method before touching the repository", func() {
				// Given
				dto := reservationPkg.SubmitPaymentDTO{Amount: 1000, PaymentMethod: "BITCOIN"}

				// When
				resp, err := service.SubmitPayment(ctx, 999, dto)

				// Then
				Expect(resp).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.GetDetailedMessage()).To(ContainSubstring("payment_method must be one of"))
			})

			It("returns not found for an unknown reservation", func() {
				// When
				resp, err := service.SubmitPayment(ctx, 999, reservationPkg.SubmitPaymentDTO{
					Amount:        1000,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then
				Expect(resp).To(BeNil())
				Expect(err).To(Equal(internal.ErrReservationNotFound))
			})

			It("rejects cancelled reservations", func() {
				// Given
				res := newReservation(100000, 0, reservationDatamodel.StatusCancelled)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        1000,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then
				Expect(resp).To(BeNil())
				Expect(err).To(Equal(internal.ErrReservationNotPayable))
			})

			It("rejects completed reservations", func() {
				// Given
				res := newReservation(100000, 0, reservationDatamodel.StatusCompleted)

				// When
				_, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        1000,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then
				Expect(err).To(Equal(internal.ErrReservationNotPayable))
			})

			It("rejects fully settled reservations", func() {
				// Given
				res := newReservation(50000, 50000, reservationDatamodel.StatusConfirmed)

				// When
				_, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        1000,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then
				Expect(err).To(Equal(internal.ErrAlreadySettled))
			})

			It("rejects amounts above the remaining balance and reports the maximum", func() {
				// Given
				res := newReservation(100000, 70000, reservationDatamodel.StatusPending)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        30001,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then no payment record is created
				Expect(resp).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeAmountExceedsBalance))
				Expect(appErr.Message).To(ContainSubstring("maximum allowed is 30000"))
				// only the pre-existing partial payment remains
				Expect(mockRepo.payments).To(HaveLen(1))
			})
		})

		Describe("offline settlement", func() {
			It("records a COMPLETED payment with a receipt and updates the balance", func() {
				// Given
				res := newReservation(100000, 0, reservationDatamodel.StatusPending)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        40000,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Payment.Status).To(Equal(paymentDatamodel.StatusCompleted))
				Expect(resp.Payment.TransactionID).To(MatchRegexp(`^TRX-\d+-[0-9A-Z]{6}$`))
				Expect(resp.Payment.ReceiptNumber).ToNot(BeNil())
				Expect(*resp.Payment.ReceiptNumber).To(MatchRegexp(`^RCT-\d+$`))
				Expect(resp.PaymentURL).To(BeEmpty())
				Expect(resp.Authority).To(BeEmpty())
				Expect(resp.Message).To(ContainSubstring("recorded"))
				stored := mockRepo.reservations[res.ID]
				Expect(stored.PaidAmount).To(Equal(int64(40000)))
				Expect(stored.IsPaid).To(BeFalse())
				Expect(stored.Status).To(Equal(reservationDatamodel.StatusPending))
			})

			It("confirms an active reservation once it is fully paid", func() {
				// Given: a session already in progress
				res := newReservation(100000, 60000, reservationDatamodel.StatusActive)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        40000,
					PaymentMethod: paymentDatamodel.MethodCash,
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Payment.Status).To(Equal(paymentDatamodel.StatusCompleted))
				stored := mockRepo.reservations[res.ID]
				Expect(stored.IsPaid).To(BeTrue())
				Expect(stored.Status).To(Equal(reservationDatamodel.StatusConfirmed))
			})

			It("confirms the reservation when the payment settles it exactly", func() {
				// Given
				res := newReservation(100000, 60000, reservationDatamodel.StatusPending)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        40000,
					PaymentMethod: paymentDatamodel.MethodPOS,
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Message).ToNot(BeEmpty())
				stored := mockRepo.reservations[res.ID]
				Expect(stored.PaidAmount).To(Equal(int64(100000)))
				Expect(stored.IsPaid).To(BeTrue())
				Expect(stored.Status).To(Equal(reservationDatamodel.StatusConfirmed))
			})

			It("wraps repository failures as internal errors", func() {
				// Given
				res := newReservation(100000, 0, reservationDatamodel.StatusPending)
				mockRepo.settleError = errors.New("connection reset")

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        1000,
					PaymentMethod: paymentDatamodel.MethodCard,
				})

				// Then
				Expect(resp).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})

		Describe("online payments", func() {
			It("creates a PENDING payment with the gateway redirect data", func() {
				// Given
				res := newReservation(100000, 0, reservationDatamodel.StatusPending)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        100000,
					PaymentMethod: paymentDatamodel.MethodOnline,
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Payment.Status).To(Equal(paymentDatamodel.StatusPending))
				Expect(resp.Payment.ReceiptNumber).To(BeNil())
				Expect(resp.Authority).To(Equal("A0000123"))
				Expect(resp.PaymentURL).To(Equal("https://gateway.test/pay/A0000123"))
				Expect(resp.Message).To(ContainSubstring("redirect"))

				// And the reservation balance fields stay untouched
				stored := mockRepo.reservations[res.ID]
				Expect(stored.IsPaid).To(BeFalse())
				Expect(stored.Status).To(Equal(reservationDatamodel.StatusPending))
			})

			It("surfaces gateway rejections without persisting anything", func() {
				// Given
				gatewayFail = true
				res := newReservation(100000, 0, reservationDatamodel.StatusPending)

				// When
				resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
					Amount:        100000,
					PaymentMethod: paymentDatamodel.MethodOnline,
				})

				// Then
				Expect(resp).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeGatewayError))
				Expect(mockRepo.payments).To(BeEmpty())
			})
		})
	})

	Describe("CompleteOnlinePayment", func() {
		It("transitions the pending payment and settles the reservation", func() {
			// Given a fully pending online payment
			res := newReservation(50000, 0, reservationDatamodel.StatusPending)
			resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
				Amount:        50000,
				PaymentMethod: paymentDatamodel.MethodOnline,
			})
			Expect(err).ToNot(HaveOccurred())

			// When
			completed, err := service.CompleteOnlinePayment(ctx, resp.Payment.TransactionID, "REF-1")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(completed.Status).To(Equal(paymentDatamodel.StatusCompleted))
			stored := mockRepo.reservations[res.ID]
			Expect(stored.IsPaid).To(BeTrue())
			Expect(stored.Status).To(Equal(reservationDatamodel.StatusConfirmed))
		})
	})

	Describe("FailOnlinePayment", func() {
		It("marks the payment failed and leaves the reservation alone", func() {
			// Given
			res := newReservation(50000, 0, reservationDatamodel.StatusPending)
			resp, err := service.SubmitPayment(ctx, res.ID, reservationPkg.SubmitPaymentDTO{
				Amount:        50000,
				PaymentMethod: paymentDatamodel.MethodOnline,
			})
			Expect(err).ToNot(HaveOccurred())

			// When
			failed, err := service.FailOnlinePayment(ctx, resp.Payment.TransactionID, "customer abandoned")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(failed.Status).To(Equal(paymentDatamodel.StatusFailed))
			Expect(*failed.FailureReason).To(Equal("customer abandoned"))
			stored := mockRepo.reservations[res.ID]
			Expect(stored.IsPaid).To(BeFalse())
			Expect(stored.Status).To(Equal(reservationDatamodel.StatusPending))
		})
	})

	Describe("CreateReservation", func() {
		It("generates a reservation code and persists the reservation", func() {
			// When
			res, err := service.CreateReservation(ctx, reservationPkg.CreateReservationDTO{
				CustomerName: "New Customer",
				LicensePlate: "77C888-99",
				EntryTime:    time.Now(),
				TotalAmount:  25000,
			})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ReservationCode).To(MatchRegexp(`^RSV-\d+-[0-9A-Z]{4}$`))
			Expect(res.Status).To(Equal(reservationDatamodel.StatusPending))
		})

		It("quotes the total from the tariff when omitted", func() {
			// Given
			tariffID := int64(1)

			// When
			res, err := service.CreateReservation(ctx, reservationPkg.CreateReservationDTO{
				CustomerName: "Quoted Customer",
				LicensePlate: "55D666-77",
				EntryTime:    time.Now(),
				TariffID:     &tariffID,
			})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(res.TotalAmount).To(Equal(int64(50000)))
		})

		It("rejects a reservation with neither total nor tariff", func() {
			// When
			_, err := service.CreateReservation(ctx, reservationPkg.CreateReservationDTO{
				CustomerName: "Broken",
				LicensePlate: "00E111-22",
				EntryTime:    time.Now(),
			})

			// Then
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("either total_amount or tariff_id"))
		})
	})

	Describe("CancelReservation", func() {
		It("cancels an active reservation", func() {
			// Given
			res := newReservation(10000, 0, reservationDatamodel.StatusPending)

			// When
			cancelled, err := service.CancelReservation(ctx, res.ID)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(cancelled.Status).To(Equal(reservationDatamodel.StatusCancelled))
		})

		It("refuses to cancel a completed reservation", func() {
			// Given
			res := newReservation(10000, 0, reservationDatamodel.StatusCompleted)

			// When
			_, err := service.CancelReservation(ctx, res.ID)

			// Then
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeReservationNotActive))
		})
	})
})
