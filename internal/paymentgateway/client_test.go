package paymentgateway_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
)

func TestPaymentGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Gateway Suite")
}

var _ = Describe("Gateway Client", func() {
	var (
		server      *httptest.Server
		client      *paymentgateway.Client
		ctx         context.Context
		handlerFunc http.HandlerFunc
		lastPayload map[string]interface{}
	)

	BeforeEach(func() {
		ctx = context.Background()
		lastPayload = nil
		handlerFunc = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&lastPayload)
			handlerFunc(w, r)
		}))

		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		client = paymentgateway.NewClient(paymentgateway.Config{
			BaseURL:    server.URL,
			MerchantID: "merchant-test",
		}, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("RequestPayment", func() {
		validRequest := func() *paymentgateway.PaymentRequest {
			return &paymentgateway.PaymentRequest{
				Amount:      50000,
				OrderID:     "TRX-1-ORDER1",
				Description: "parking payment",
				CallbackURL: "http://localhost:8080/api/v1/payment/callback",
			}
		}

		It("returns the authority and redirect URL", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/payment/request"))
				json.NewEncoder(w).Encode(map[string]interface{}{
					"data": map[string]string{
						"authority":   "A0000123",
						"payment_url": "https://gateway.test/pay/A0000123",
					},
				})
			}

			result, err := client.RequestPayment(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Authority).To(Equal("A0000123"))
			Expect(result.PaymentURL).To(Equal("https://gateway.test/pay/A0000123"))

			Expect(lastPayload["merchant_id"]).To(Equal("merchant-test"))
			Expect(lastPayload["amount"]).To(BeEquivalentTo(50000))
			Expect(lastPayload["callback_url"]).To(Equal("http://localhost:8080/api/v1/payment/callback"))
		})

		It("surfaces gateway-side rejections", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"errors": []string{"merchant is suspended"},
				})
			}

			_, err := client.RequestPayment(ctx, validRequest())
			Expect(err).To(MatchError(ContainSubstring("merchant is suspended")))
		})

		It("rejects incomplete gateway responses", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"data": map[string]string{"authority": "A0000123"},
				})
			}

			_, err := client.RequestPayment(ctx, validRequest())
			Expect(err).To(MatchError(ContainSubstring("incomplete")))
		})

		It("rejects non-200 responses", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}

			_, err := client.RequestPayment(ctx, validRequest())
			Expect(err).To(MatchError(ContainSubstring("status 502")))
		})

		It("validates the request before calling out", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				Fail("gateway should not be called for an invalid request")
			}

			req := validRequest()
			req.Amount = 0
			_, err := client.RequestPayment(ctx, req)
			Expect(err).To(MatchError(ContainSubstring("amount must be greater than 0")))
		})
	})

	Describe("VerifyPayment", func() {
		It("returns the gateway reference id", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/payment/verify"))
				json.NewEncoder(w).Encode(map[string]interface{}{
					"data": map[string]string{"ref_id": "REF-1234", "status": "OK"},
				})
			}

			result, err := client.VerifyPayment(ctx, "A0000123", 50000)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RefID).To(Equal("REF-1234"))
			Expect(lastPayload["authority"]).To(Equal("A0000123"))
			Expect(lastPayload["amount"]).To(BeEquivalentTo(50000))
		})

		It("fails when the gateway reports a verification error", func() {
			handlerFunc = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"errors": []string{"authority expired"},
				})
			}

			_, err := client.VerifyPayment(ctx, "A0000123", 50000)
			Expect(err).To(MatchError(ContainSubstring("authority expired")))
		})

		It("requires an authority", func() {
			_, err := client.VerifyPayment(ctx, "", 50000)
			Expect(err).To(MatchError(ContainSubstring("authority is required")))
		})
	})
})
