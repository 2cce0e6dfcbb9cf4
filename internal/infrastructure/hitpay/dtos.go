package hitpay

// createPaymentRequestResponse is the subset of the 201 body the kiosk reads.
type createPaymentRequestResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	ReferenceID string `json:"reference_number"`
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// webhookBody is the JSON body of a payment notification.
type webhookBody struct {
	ID               string `json:"id"`
	PaymentRequestID string `json:"payment_request_id"`
	Status           string `json:"status"`
}
