package payment

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewTransactionID generates a payment transaction identifier of the form
// TRX-<epoch-millis>-<6 char base36>. The suffix is sourced from crypto/rand
// so concurrent requests cannot collide the way a naive PRNG would.
func NewTransactionID() string {
	suffix := make([]byte, 6)
	raw := make([]byte, 6)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a time-derived suffix rather than refusing the payment.
		for i := range suffix {
			suffix[i] = base36Alphabet[(time.Now().UnixNano()>>uint(i*5))%36]
		}
		return fmt.Sprintf("TRX-%d-%s", time.Now().UnixMilli(), string(suffix))
	}
	for i, b := range raw {
		suffix[i] = base36Alphabet[int(b)%36]
	}
	return fmt.Sprintf("TRX-%d-%s", time.Now().UnixMilli(), string(suffix))
}

// NewReceiptNumber generates a receipt number for offline payments.
func NewReceiptNumber() string {
	return fmt.Sprintf("RCT-%d", time.Now().UnixMilli())
}

// GatewayResponseData is the payload stored alongside a PENDING online
// payment so a later callback can be correlated and verified.
type GatewayResponseData struct {
	Authority  string `json:"authority"`
	PaymentURL string `json:"payment_url"`
	RefID      string `json:"ref_id,omitempty"`
}

func (d GatewayResponseData) Marshal() (json.RawMessage, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway response: %w", err)
	}
	return raw, nil
}

func ParseGatewayResponse(raw json.RawMessage) (*GatewayResponseData, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty gateway response")
	}
	var d GatewayResponseData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return &d, nil
}
