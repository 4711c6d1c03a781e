package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// ReceiptDraft is the structured result of scanning a receipt image. All
// fields are suggestions for a transaction the user still has to confirm;
// a non-receipt image yields IsReceipt=false with empty fields.
type ReceiptDraft struct {
	IsReceipt       bool    `json:"is_receipt" jsonschema_description:"False if the image is not a receipt; all other fields are then empty"`
	Amount          string  `json:"amount" jsonschema_description:"Total amount as a decimal string, e.g. '12500.00'"`
	Date            string  `json:"date" jsonschema_description:"Receipt date in YYYY-MM-DD format"`
	Description     string  `json:"description" jsonschema_description:"Brief summary of the items purchased"`
	MerchantName    string  `json:"merchant_name" jsonschema_description:"Merchant or store name"`
	Category        string  `json:"category" jsonschema_description:"Suggested category, e.g. 'Utility Payment'"`
	TransactionKind string  `json:"transaction_kind" jsonschema_description:"One of the recognized transaction kinds, e.g. EXPENSE, PURCHASE, UTILITY_PAYMENT"`
	Confidence      float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

type ReceiptScanner interface {
	ScanReceipt(ctx context.Context, mimeType string, imageData []byte) (*ReceiptDraft, error)
}

type Scanner struct {
	client *openai.Client
}

func NewScanner(apiKey string) *Scanner {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Scanner{client: &client}
}

const scanPrompt = `Analyze this receipt image and extract the transaction details.
Rules:
1. Amount is the receipt total, as an exact decimal string (e.g. "12500.00").
2. Date must be YYYY-MM-DD.
3. transaction_kind must be one of: SALE, PURCHASE, EXPENSE, REFUND, TRANSFER,
   LOAN_DISBURSEMENT, LOAN_REPAYMENT, SUBSCRIPTION_PAYMENT, INVESTMENT_INFLOW,
   INVESTMENT_OUTFLOW, TAX_PAYMENT, SALARY_PAYMENT, COMMISSION, DONATION,
   GRANT_RECEIPT, UTILITY_PAYMENT, MAINTENANCE_EXPENSE, INSURANCE_PAYMENT,
   REIMBURSEMENT, PENALTY_OR_FINE, DEPRECIATION.
4. If the image is not a receipt, set is_receipt to false and leave the other
   fields empty.`

// ScanReceipt sends the image to the model with a strict JSON schema and
// parses the draft it returns.
func (s *Scanner) ScanReceipt(ctx context.Context, mimeType string, imageData []byte) (*ReceiptDraft, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(scanPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				Type: constant.JSONSchema("json_schema"),
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "receipt_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Transaction details extracted from a receipt image"),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var draft ReceiptDraft
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	return &draft, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v ReceiptDraft
	return reflector.Reflect(v)
}
