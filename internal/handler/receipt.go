package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/zerolog"

	"github.com/berniyo/receeco-lambda/pkg/receeco"
)

// Supported event actions.
const (
	ActionCreate        = "create"
	ActionGet           = "get"
	ActionUpdateContact = "update_contact"
)

// ReceiptClient defines the subset of the Receeco client used by the processor.
type ReceiptClient interface {
	CreateReceipt(ctx context.Context, in receeco.ReceiptInput) (*receeco.CreatedReceipt, error)
	GetReceipt(ctx context.Context, tokenOrCode string) (*receeco.Receipt, error)
	UpdateReceiptContact(ctx context.Context, in receeco.ContactUpdateInput) (*receeco.ContactUpdateResult, error)
}

// ReceiptEvent represents the payload sent to the Lambda function.
type ReceiptEvent struct {
	Action  string                      `json:"action,omitempty"`
	Receipt *receeco.ReceiptInput       `json:"receipt,omitempty"`
	Token   string                      `json:"token,omitempty"`
	Contact *receeco.ContactUpdateInput `json:"contact,omitempty"`
}

// ReceiptResponse is emitted after processing completes.
type ReceiptResponse struct {
	Action    string                       `json:"action"`
	Status    string                       `json:"status"`
	Token     string                       `json:"token,omitempty"`
	Created   *receeco.CreatedReceipt      `json:"created,omitempty"`
	Receipt   *receeco.Receipt             `json:"receipt,omitempty"`
	Contact   *receeco.ContactUpdateResult `json:"contact,omitempty"`
	ErrorCode string                       `json:"error_code,omitempty"`
	Message   string                       `json:"message,omitempty"`
	RequestID string                       `json:"request_id,omitempty"`
}

// CallbackSender delivers receipt outcomes to downstream systems.
type CallbackSender interface {
	Send(ctx context.Context, payload ReceiptResponse) error
}

// Processor runs one receipt operation per event.
type Processor struct {
	client   ReceiptClient
	logger   zerolog.Logger
	callback CallbackSender
}

// Option customizes the processor.
type Option func(*Processor)

// WithLogger lets callers supply a custom logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithCallbackSender wires a callback destination invoked after processing concludes.
func WithCallbackSender(sender CallbackSender) Option {
	return func(p *Processor) {
		p.callback = sender
	}
}

// NewProcessor builds a Processor with sane defaults.
func NewProcessor(client ReceiptClient, opts ...Option) *Processor {
	p := &Processor{
		client: client,
		logger: zerolog.New(os.Stdout).With().Timestamp().Str("component", "receipt-processor").Logger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Handle implements the AWS Lambda handler entry point. Malformed events are
// returned as errors; failures reported by the receipt service are returned
// in the response with Status "failed" so they reach the callback too.
func (p *Processor) Handle(ctx context.Context, event ReceiptEvent) (ReceiptResponse, error) {
	action, err := validateEvent(event)
	if err != nil {
		return ReceiptResponse{}, err
	}

	resp := ReceiptResponse{Action: action}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		resp.RequestID = lc.AwsRequestID
		ctx = receeco.WithRequestID(ctx, lc.AwsRequestID)
	}

	logger := p.logger.With().Str("action", action).Str("request_id", resp.RequestID).Logger()

	switch action {
	case ActionCreate:
		logger.Info().
			Str("merchant", event.Receipt.MerchantStringID).
			Int64("total_amount", event.Receipt.TotalAmount).
			Int("items", len(event.Receipt.Items)).
			Msg("creating receipt")
		created, err := p.client.CreateReceipt(ctx, *event.Receipt)
		if err == nil {
			resp.Created = created
			resp.Token = created.Token
		}
		p.finish(&resp, err)
	case ActionGet:
		logger.Info().Str("token", event.Token).Msg("fetching receipt")
		receipt, err := p.client.GetReceipt(ctx, event.Token)
		if err == nil {
			resp.Receipt = receipt
			resp.Token = receipt.Token
		}
		p.finish(&resp, err)
	case ActionUpdateContact:
		resp.Token = event.Contact.Token
		logger.Info().Str("token", event.Contact.Token).Msg("updating receipt contact")
		result, err := p.client.UpdateReceiptContact(ctx, *event.Contact)
		if err == nil {
			resp.Contact = result
		}
		p.finish(&resp, err)
	}

	if resp.Status == statusFailed {
		logger.Warn().Str("error_code", resp.ErrorCode).Str("message", resp.Message).Msg("receipt operation failed")
	} else {
		logger.Info().Str("token", resp.Token).Msg("receipt operation succeeded")
	}

	p.emitCallback(ctx, resp)
	return resp, nil
}

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

func (p *Processor) finish(resp *ReceiptResponse, err error) {
	if err == nil {
		resp.Status = statusSucceeded
		return
	}

	resp.Status = statusFailed
	resp.ErrorCode = receeco.CodeOf(err)
	resp.Message = err.Error()

	var sdkErr *receeco.Error
	if errors.As(err, &sdkErr) {
		resp.Message = sdkErr.Message
	}
}

func validateEvent(event ReceiptEvent) (string, error) {
	action := strings.ToLower(strings.TrimSpace(event.Action))
	if action == "" {
		action = ActionCreate
	}

	switch action {
	case ActionCreate:
		if event.Receipt == nil {
			return "", errors.New("receipt is required")
		}
	case ActionGet:
		if strings.TrimSpace(event.Token) == "" {
			return "", errors.New("token is required")
		}
	case ActionUpdateContact:
		if event.Contact == nil {
			return "", errors.New("contact is required")
		}
	default:
		return "", fmt.Errorf("unsupported action %q", event.Action)
	}
	return action, nil
}

func (p *Processor) emitCallback(ctx context.Context, resp ReceiptResponse) {
	if p.callback == nil {
		return
	}
	if err := p.callback.Send(ctx, resp); err != nil {
		p.logger.Error().Err(err).Str("action", resp.Action).Msg("callback delivery failed")
	}
}
