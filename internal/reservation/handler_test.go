package reservation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	paymentDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
	reservationPkg "github.com/mostafaSataki/LprParkingWeb-sub000/internal/reservation"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport"
)

type mockSettlementService struct {
	paymentInfo       *reservationPkg.PaymentInfoResponse
	submitResponse    *reservationPkg.SubmitPaymentResponse
	reservation       *reservationPkg.ReservationResponse
	paymentInfoError  error
	submitError       error
	reservationError  error
	lastSubmittedDTO  reservationPkg.SubmitPaymentDTO
	lastReservationID int64
}

func (m *mockSettlementService) GetPaymentInfo(ctx context.Context, reservationID int64) (*reservationPkg.PaymentInfoResponse, error) {
	m.lastReservationID = reservationID
	if m.paymentInfoError != nil {
		return nil, m.paymentInfoError
	}
	return m.paymentInfo, nil
}

func (m *mockSettlementService) SubmitPayment(ctx context.Context, reservationID int64, dto reservationPkg.SubmitPaymentDTO) (*reservationPkg.SubmitPaymentResponse, error) {
	m.lastReservationID = reservationID
	m.lastSubmittedDTO = dto
	if m.submitError != nil {
		return nil, m.submitError
	}
	return m.submitResponse, nil
}

func (m *mockSettlementService) ListReservations(ctx context.Context, page, perPage int) ([]*reservationPkg.ReservationResponse, int64, error) {
	if m.reservationError != nil {
		return nil, 0, m.reservationError
	}
	return []*reservationPkg.ReservationResponse{m.reservation}, 1, nil
}

func (m *mockSettlementService) GetReservation(ctx context.Context, id int64) (*reservationPkg.ReservationResponse, error) {
	if m.reservationError != nil {
		return nil, m.reservationError
	}
	return m.reservation, nil
}

func (m *mockSettlementService) CreateReservation(ctx context.Context, dto reservationPkg.CreateReservationDTO) (*reservationPkg.ReservationResponse, error) {
	if m.reservationError != nil {
		return nil, m.reservationError
	}
	return m.reservation, nil
}

func (m *mockSettlementService) CancelReservation(ctx context.Context, id int64) (*reservationPkg.ReservationResponse, error) {
	if m.reservationError != nil {
		return nil, m.reservationError
	}
	return m.reservation, nil
}

var _ = Describe("Reservation Handler", func() {
	var (
		handler     *reservationPkg.Handler
		mockService *mockSettlementService
		router      *chi.Mux
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockService = &mockSettlementService{
			reservation: &reservationPkg.ReservationResponse{ID: 1, ReservationCode: "RSV-1-TEST"},
		}
		handler = reservationPkg.NewHandler(transport.NewBaseHandler(logger), mockService)

		router = chi.NewRouter()
		router.Get("/reservations/{id}/payment", handler.GetPaymentInfo)
		router.Post("/reservations/{id}/payment", handler.SubmitPayment)
		router.Get("/reservations/{id}", handler.GetReservation)
		router.Patch("/reservations/{id}/cancel", handler.CancelReservation)
	})

	Describe("GET /reservations/{id}/payment", func() {
		It("wraps the payment info in the success envelope", func() {
			// Given
			mockService.paymentInfo = &reservationPkg.PaymentInfoResponse{
				Reservation:     mockService.reservation,
				TotalPaid:       40000,
				RemainingAmount: 60000,
			}

			// When
			req := httptest.NewRequest(http.MethodGet, "/reservations/1/payment", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(BeTrue())
			data := body["data"].(map[string]interface{})
			Expect(data["totalPaid"]).To(BeNumerically("==", 40000))
			Expect(data["remainingAmount"]).To(BeNumerically("==", 60000))
			Expect(mockService.lastReservationID).To(Equal(int64(1)))
		})

		It("maps not found onto the error envelope", func() {
			// Given
			mockService.paymentInfoError = internal.ErrReservationNotFound

			// When
			req := httptest.NewRequest(http.MethodGet, "/reservations/42/payment", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(BeFalse())
			Expect(body["error"]).To(Equal("reservation not found"))
		})

		It("rejects a non-numeric id", func() {
			// When
			req := httptest.NewRequest(http.MethodGet, "/reservations/abc/payment", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /reservations/{id}/payment", func() {
		It("passes the decoded payload to the service and returns 200", func() {
			// Given
			mockService.submitResponse = &reservationPkg.SubmitPaymentResponse{
				Message: "payment recorded successfully",
			}
			payload := bytes.NewBufferString(`{"amount": 40000, "paymentMethod": "CASH", "description": "booth 3"}`)

			// When
			req := httptest.NewRequest(http.MethodPost, "/reservations/7/payment", payload)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastReservationID).To(Equal(int64(7)))
			Expect(mockService.lastSubmittedDTO.Amount).To(Equal(int64(40000)))
			Expect(mockService.lastSubmittedDTO.PaymentMethod).To(Equal(paymentDatamodel.MethodCash))
			Expect(mockService.lastSubmittedDTO.Description).To(Equal("booth 3"))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			data := body["data"].(map[string]interface{})
			Expect(data["message"]).To(Equal("payment recorded successfully"))
		})

		It("puts the redirect data at the top of the payload for online payments", func() {
			// Given
			mockService.submitResponse = &reservationPkg.SubmitPaymentResponse{
				PaymentURL: "https://gateway.test/pay/A0000123",
				Authority:  "A0000123",
				Message:    "online payment initiated, redirect the customer to the payment URL",
			}

			// When
			req := httptest.NewRequest(http.MethodPost, "/reservations/7/payment",
				bytes.NewBufferString(`{"amount": 40000, "paymentMethod": "ONLINE"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			data := body["data"].(map[string]interface{})
			Expect(data["paymentUrl"]).To(Equal("https://gateway.test/pay/A0000123"))
			Expect(data["authority"]).To(Equal("A0000123"))
			Expect(data["message"]).ToNot(BeEmpty())
		})

		It("returns 400 for a malformed body", func() {
			// When
			req := httptest.NewRequest(http.MethodPost, "/reservations/7/payment", bytes.NewBufferString("{not json"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("carries validation details from the service", func() {
			// Given
			mockService.submitError = internal.NewAmountExceedsBalanceError(30000)

			// When
			req := httptest.NewRequest(http.MethodPost, "/reservations/7/payment",
				bytes.NewBufferString(`{"amount": 30001, "paymentMethod": "CASH"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(BeFalse())
			Expect(body["code"]).To(Equal("AMOUNT_EXCEEDS_BALANCE"))
			details := body["details"].(map[string]interface{})
			Expect(details["max_amount"]).To(BeNumerically("==", 30000))
		})
	})

	Describe("PATCH /reservations/{id}/cancel", func() {
		It("returns the cancelled reservation", func() {
			// When
			req := httptest.NewRequest(http.MethodPatch, "/reservations/1/cancel", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})
})
