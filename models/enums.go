package models

import (
	"errors"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPendingApproval    PurchaseOrderStatus = "PENDING_APPROVAL"
	PurchaseOrderStatusApproved           PurchaseOrderStatus = "APPROVED"
	PurchaseOrderStatusAiDocumentsReady   PurchaseOrderStatus = "AI_DOCUMENTS_READY"
	PurchaseOrderStatusReadyToSend        PurchaseOrderStatus = "READY_TO_SEND"
	PurchaseOrderStatusSentToManufacturer PurchaseOrderStatus = "SENT_TO_MANUFACTURER"
	PurchaseOrderStatusReceived           PurchaseOrderStatus = "RECEIVED"
)

// legal forward transitions; RECEIVED is terminal
var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderStatusPendingApproval:    {PurchaseOrderStatusApproved},
	PurchaseOrderStatusApproved:           {PurchaseOrderStatusAiDocumentsReady, PurchaseOrderStatusReadyToSend},
	PurchaseOrderStatusAiDocumentsReady:   {PurchaseOrderStatusReadyToSend},
	PurchaseOrderStatusReadyToSend:        {PurchaseOrderStatusSentToManufacturer},
	PurchaseOrderStatusSentToManufacturer: {PurchaseOrderStatusReceived},
	PurchaseOrderStatusReceived:           {},
}

// CanTransitionTo reports whether next is a legal forward transition
// from the current status.
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, allowed := range purchaseOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *PurchaseOrderStatus) UnmarshalText(b []byte) error {
	switch PurchaseOrderStatus(b) {
	case PurchaseOrderStatusPendingApproval, PurchaseOrderStatusApproved,
		PurchaseOrderStatusAiDocumentsReady, PurchaseOrderStatusReadyToSend,
		PurchaseOrderStatusSentToManufacturer, PurchaseOrderStatusReceived:
		*s = PurchaseOrderStatus(b)
		return nil
	}
	return errors.New("invalid purchase order status")
}

type ShiftStatus string

const (
	ShiftStatusOpen      ShiftStatus = "OPEN"
	ShiftStatusAssigned  ShiftStatus = "ASSIGNED"
	ShiftStatusOffered   ShiftStatus = "OFFERED"
	ShiftStatusCompleted ShiftStatus = "COMPLETED"
)

func (s *ShiftStatus) UnmarshalText(b []byte) error {
	switch ShiftStatus(b) {
	case ShiftStatusOpen, ShiftStatusAssigned, ShiftStatusOffered, ShiftStatusCompleted:
		*s = ShiftStatus(b)
		return nil
	}
	return errors.New("invalid shift status")
}

// DecisionAction is the action proposed by the inventory decision service.
type DecisionAction string

const (
	DecisionActionRequireApproval  DecisionAction = "REQUIRE_APPROVAL"
	DecisionActionAutoReorder      DecisionAction = "AUTO_REORDER"
	DecisionActionNone             DecisionAction = "NONE"
	DecisionActionFallbackToManual DecisionAction = "FALLBACK_TO_MANUAL"
)

// StockReferenceType tags a stock movement with the document that caused it.
type StockReferenceType string

const (
	StockReferencePurchaseOrder StockReferenceType = "PO"
	StockReferenceSale          StockReferenceType = "SALE"
	StockReferenceAdjustment    StockReferenceType = "ADJ"
)

type PaymentMode string

const (
	PaymentModeCredit       PaymentMode = "CREDIT"
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeUpi          PaymentMode = "UPI"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
)

func (m *PaymentMode) UnmarshalText(b []byte) error {
	switch PaymentMode(b) {
	case PaymentModeCredit, PaymentModeCash, PaymentModeUpi, PaymentModeBankTransfer:
		*m = PaymentMode(b)
		return nil
	}
	return errors.New("invalid payment mode")
}
