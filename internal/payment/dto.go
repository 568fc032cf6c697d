package payment

import (
	"time"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
)

// GatewayCallbackDTO is the payload the payment gateway posts back once the
// customer finishes (or abandons) an online payment.
type GatewayCallbackDTO struct {
	Authority     string `json:"authority"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}

const (
	CallbackStatusOK  = "OK"
	CallbackStatusNOK = "NOK"
)

func (d GatewayCallbackDTO) Succeeded() bool {
	return d.Status == CallbackStatusOK
}

// PaymentResponse is the read model returned by the payment listing surface.
type PaymentResponse struct {
	ID            int64      `json:"id"`
	ReservationID int64      `json:"reservationId"`
	TransactionID string     `json:"transactionId"`
	ReceiptNumber *string    `json:"receiptNumber,omitempty"`
	Amount        int64      `json:"amount"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	Description   string     `json:"description,omitempty"`
	PaymentURL    string     `json:"paymentUrl,omitempty"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func ToPaymentResponse(p *payment.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		TransactionID: p.TransactionID,
		ReceiptNumber: p.ReceiptNumber,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		Description:   p.Description,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
	}
	if gw, err := ParseGatewayResponse(p.GatewayResponse); err == nil {
		resp.PaymentURL = gw.PaymentURL
	}
	return resp
}

func ToPaymentResponses(payments []*payment.Payment) []*PaymentResponse {
	out := make([]*PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}
