package services

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/finledger/fin_ledger_app/internal/dto"
)

// SupplierInvoiceSvcFacade drives the AP invoice state machine.
type SupplierInvoiceSvcFacade interface {
	CreateInvoice(ctx context.Context, caller domain.Caller, req dto.CreateSupplierInvoiceRequest) (*domain.SupplierInvoice, error)
	SubmitInvoice(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, error)
	ApproveInvoice(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, error)
	// PostInvoice posts the approved invoice to the ledger, returning the
	// document and its journal. Reposting an already-posted invoice returns
	// the same journal without creating a second one.
	PostInvoice(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, *domain.JournalEntry, error)
	GetInvoiceByID(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, error)
	// GetInvoiceTaxLines returns the persisted tax lines of the invoice, the
	// same rows the posting path revalidates.
	GetInvoiceTaxLines(ctx context.Context, caller domain.Caller, invoiceID string) ([]domain.TaxLine, error)
}

// CustomerReceiptSvcFacade drives the customer receipt state machine.
type CustomerReceiptSvcFacade interface {
	CreateReceipt(ctx context.Context, caller domain.Caller, req dto.CreateReceiptRequest) (*domain.CustomerReceipt, error)
	SubmitReceipt(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, error)
	ApproveReceipt(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, error)
	PostReceipt(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, *domain.JournalEntry, error)
	GetReceiptByID(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, error)
}

// CreditNoteSvcFacade drives the customer credit note state machine,
// including void via a compensating reversal.
type CreditNoteSvcFacade interface {
	CreateCreditNote(ctx context.Context, caller domain.Caller, req dto.CreateCreditNoteRequest) (*domain.CustomerCreditNote, error)
	SubmitCreditNote(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, error)
	ApproveCreditNote(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, error)
	PostCreditNote(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, *domain.JournalEntry, error)
	// VoidCreditNote builds the mirror-image reversal journal dated on the
	// credit note's own date and marks the document VOID. Voiding an already
	// VOID credit note is a no-op returning the current state.
	VoidCreditNote(ctx context.Context, caller domain.Caller, creditNoteID, reason string) (*domain.CustomerCreditNote, *domain.JournalEntry, error)
	GetCreditNoteByID(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, error)
}

// RefundSvcFacade drives the customer refund state machine, including void.
type RefundSvcFacade interface {
	CreateRefund(ctx context.Context, caller domain.Caller, req dto.CreateRefundRequest) (*domain.CustomerRefund, error)
	SubmitRefund(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, error)
	ApproveRefund(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, error)
	PostRefund(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, *domain.JournalEntry, error)
	VoidRefund(ctx context.Context, caller domain.Caller, refundID, reason string) (*domain.CustomerRefund, *domain.JournalEntry, error)
	GetRefundByID(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, error)
}

// BankMatchSvcFacade drives the bank reconciliation match state machine.
type BankMatchSvcFacade interface {
	CreateMatch(ctx context.Context, caller domain.Caller, req dto.CreateBankMatchRequest) (*domain.BankMatch, error)
	SubmitMatch(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, error)
	ApproveMatch(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, error)
	PostMatch(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, *domain.JournalEntry, error)
	GetMatchByID(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, error)
}
