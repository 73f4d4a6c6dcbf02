package gateway

import (
	"encoding/json"
	"errors"
)

const EventChargeSuccess = "charge.success"

// WebhookEvent is the part of a Paystack event the escrow engine needs
type WebhookEvent struct {
	Event         string
	Reference     string
	WalletAddress string
	Status        string
}

var errMalformedEvent = errors.New("malformed webhook event")

// ParseWebhookEvent decodes a Paystack webhook body
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var payload struct {
		Event string `json:"event"`
		Data  struct {
			Reference  string `json:"reference"`
			Status     string `json:"status"`
			Subaccount struct {
				SubaccountCode string `json:"subaccount_code"`
			} `json:"subaccount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Join(errMalformedEvent, err)
	}
	if payload.Event == "" || payload.Data.Reference == "" {
		return nil, errMalformedEvent
	}
	return &WebhookEvent{
		Event:         payload.Event,
		Reference:     payload.Data.Reference,
		WalletAddress: payload.Data.Subaccount.SubaccountCode,
		Status:        payload.Data.Status,
	}, nil
}
