package payment_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	paymentDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/events"
	paymentDomain "github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport"
)

var _ = Describe("Webhook Handler", func() {
	var (
		mockRepo      *mockPaymentRepository
		settlement    *mockSettlement
		gatewayServer *httptest.Server
		handler       *paymentDomain.WebhookHandler
	)

	seedPending := func(transactionID, authority string) *paymentDatamodel.Payment {
		gw, err := paymentDomain.GatewayResponseData{
			Authority:  authority,
			PaymentURL: "https://gateway.test/pay/" + authority,
		}.Marshal()
		Expect(err).NotTo(HaveOccurred())

		p := &paymentDatamodel.Payment{
			ID:              1,
			ReservationID:   42,
			TransactionID:   transactionID,
			Amount:          50000,
			PaymentMethod:   paymentDatamodel.MethodOnline,
			Status:          paymentDatamodel.StatusPending,
			GatewayResponse: gw,
			CreatedAt:       time.Now(),
		}
		mockRepo.payments[transactionID] = p
		settlement.payment = p
		return p
	}

	postCallback := func(body interface{}) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/callback", bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		handler.HandleGatewayCallback(rec, req)
		return rec
	}

	BeforeEach(func() {
		mockRepo = newMockPaymentRepository()
		settlement = &mockSettlement{}

		gatewayServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"ref_id": "REF-5555", "status": "OK"},
			})
		}))

		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		gatewayClient := paymentgateway.NewClient(paymentgateway.Config{
			BaseURL:    gatewayServer.URL,
			MerchantID: "merchant-test",
		}, logger)
		service := paymentDomain.NewService(mockRepo, gatewayClient, settlement, events.NewEventBus(logger), logger)
		handler = paymentDomain.NewWebhookHandler(transport.NewBaseHandler(logger), service)
	})

	AfterEach(func() {
		gatewayServer.Close()
	})

	It("acknowledges a verified callback", func() {
		p := seedPending("TRX-1-WEB001", "A1001")

		rec := postCallback(map[string]interface{}{
			"transaction_id": p.TransactionID,
			"authority":      "A1001",
			"status":         paymentDomain.CallbackStatusOK,
			"amount":         50000,
		})

		Expect(rec.Code).To(Equal(http.StatusOK))

		var envelope map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &envelope)).To(Succeed())
		Expect(envelope["success"]).To(BeTrue())
		data := envelope["data"].(map[string]interface{})
		Expect(data["status"]).To(Equal("received"))
		Expect(settlement.completed).To(ConsistOf(p.TransactionID))
	})

	It("rejects a payload without a transaction id", func() {
		rec := postCallback(map[string]interface{}{
			"authority": "A1002",
			"status":    paymentDomain.CallbackStatusOK,
		})

		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		var envelope map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &envelope)).To(Succeed())
		Expect(envelope["success"]).To(BeFalse())
	})

	It("rejects a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/callback", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		handler.HandleGatewayCallback(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns not found for an unknown transaction", func() {
		rec := postCallback(map[string]interface{}{
			"transaction_id": "TRX-1-GHOST1",
			"authority":      "A1003",
			"status":         paymentDomain.CallbackStatusOK,
		})

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
