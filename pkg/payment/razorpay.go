package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

type RazorpayProvider struct {
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	client := razorpay.NewClient(keyID, keySecret)

	return &RazorpayProvider{
		client: client,
	}
}

func (r *RazorpayProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	orderData := map[string]interface{}{
		"amount":   request.Amount,
		"currency": request.Currency,
		"receipt":  request.CustomerID,
		"notes":    request.Metadata,
	}

	order, err := r.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Razorpay authorizes on the client side; the order here is captured later.
	return &PaymentResponse{
		TransactionID: order["id"].(string),
		Status:        "created",
		Amount:        int64(order["amount"].(int)),
		Currency:      order["currency"].(string),
		CreatedAt:     int64(order["created_at"].(int)),
	}, nil
}

func (r *RazorpayProvider) RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	refundData := map[string]interface{}{
		"amount": int(request.Amount),
		"notes": map[string]interface{}{
			"reason": request.Reason,
		},
	}

	refund, err := r.client.Payment.Refund(request.TransactionID, int(request.Amount), refundData, map[string]string{})
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	return &RefundResponse{
		RefundID:  refund["id"].(string),
		Status:    refund["status"].(string),
		Amount:    int64(refund["amount"].(int)),
		Currency:  refund["currency"].(string),
		CreatedAt: int64(refund["created_at"].(int)),
	}, nil
}
