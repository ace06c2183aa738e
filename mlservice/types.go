package mlservice

// Wire types mirror the remote service's JSON contract exactly; snake_case
// where the remote expects it.

type SalesHistoryRequest struct {
	SalesHistory []float64 `json:"sales_history"`
}

type ForecastResponse struct {
	Forecast   int     `json:"forecast"`
	Confidence float64 `json:"confidence"`
}

type DecisionPayload struct {
	Forecast     int     `json:"forecast"`
	Confidence   float64 `json:"confidence"`
	CurrentStock int     `json:"current_stock"`
	UnitCost     float64 `json:"unit_cost"`
}

type InventoryDecision struct {
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type AvailabilitySlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type StaffInput struct {
	StaffId             int                `json:"staffId"`
	Skills              []string           `json:"skills"`
	HourlyRate          float64            `json:"hourlyRate"`
	HoursWorkedThisWeek int                `json:"hoursWorkedThisWeek"`
	Availability        []AvailabilitySlot `json:"availability"`
}

type ShiftInput struct {
	ShiftId       int    `json:"shiftId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	RequiredSkill string `json:"requiredSkill"`
}

type RosterInput struct {
	Date   string       `json:"date"`
	Shifts []ShiftInput `json:"shifts"`
	Staff  []StaffInput `json:"staff"`
}

type ShiftAssignmentDecision struct {
	ShiftId    int     `json:"shiftId"`
	StaffId    int     `json:"staffId"`
	Confidence float64 `json:"confidence"`
}

type RosterDecision struct {
	Assignments        []ShiftAssignmentDecision `json:"assignments"`
	CoveragePercentage float64                   `json:"coveragePercentage"`
	OvertimeRisk       bool                      `json:"overtimeRisk"`
}

type ReceiptPurchaseOrderBlock struct {
	PurchaseOrderId int    `json:"purchaseOrderId"`
	CreatedAt       string `json:"createdAt"`
	ApprovedAt      string `json:"approvedAt"`
}

type ReceiptManufacturerBlock struct {
	Name            string `json:"name"`
	EmailId         string `json:"emailId"`
	PaymentMode     string `json:"paymentMode"`
	AdvanceRequired bool   `json:"advanceRequired"`
}

type ReceiptItemBlock struct {
	Sku      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unitCost"`
}

type ReceiptTotalsBlock struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grandTotal"`
}

type ReceiptRequest struct {
	PurchaseOrder ReceiptPurchaseOrderBlock `json:"purchaseOrder"`
	Manufacturer  ReceiptManufacturerBlock  `json:"manufacturer"`
	Items         []ReceiptItemBlock        `json:"items"`
	Totals        ReceiptTotalsBlock        `json:"totals"`
}

type SourcingContext struct {
	PurchaseOrderId      int      `json:"purchaseOrderId"`
	PreferredPaymentMode string   `json:"preferredPaymentMode"`
	Confidence           *float64 `json:"confidence"`
	CreatedAt            string   `json:"createdAt"`
}

type SourcingItem struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type SourcingProductOffer struct {
	Sku                  string  `json:"sku"`
	CostPrice            float64 `json:"costPrice"`
	MinimumOrderQuantity int     `json:"minimumOrderQuantity"`
}

type SourcingManufacturerCandidate struct {
	ManufacturerId       int                    `json:"manufacturerId"`
	DistanceKm           float64                `json:"distanceKm"`
	AverageRating        float64                `json:"averageRating"`
	AdvanceRequired      bool                   `json:"advanceRequired"`
	PreferredPaymentMode string                 `json:"preferredPaymentMode"`
	Products             []SourcingProductOffer `json:"products"`
}

type SourcingRequest struct {
	Context       SourcingContext                 `json:"context"`
	Items         []SourcingItem                  `json:"items"`
	Manufacturers []SourcingManufacturerCandidate `json:"manufacturers"`
}

type IntentStockItem struct {
	Sku    string `json:"sku"`
	Name   string `json:"name"`
	OnHand int    `json:"onHand"`
}

type CustomerIntentRequest struct {
	UserInput string            `json:"user_input"`
	StockList []IntentStockItem `json:"stock_list"`
}

type IntentBundleItem struct {
	Sku                 string `json:"sku"`
	QuantityRecommended int    `json:"quantity_recommended"`
	AvailableStock      int    `json:"available_stock"`
	Status              string `json:"status"`
	Reasoning           string `json:"reasoning"`
}

type CustomerIntentResponse struct {
	Action             string             `json:"action"`
	IntentCategory     string             `json:"intent_category"`
	Message            string             `json:"message"`
	ClarifyingQuestion *string            `json:"clarifying_question"`
	Bundle             []IntentBundleItem `json:"bundle"`
	ConfidenceScore    float64            `json:"confidence_score"`
}
