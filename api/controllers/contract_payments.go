package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lamnguyendev/talentbridge-backend/api/responses"
	"github.com/lamnguyendev/talentbridge-backend/api/validators"
	"github.com/lamnguyendev/talentbridge-backend/internal/contracts"
	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/internal/invoices"
	"github.com/lamnguyendev/talentbridge-backend/internal/payments"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

const maxInvoiceUploadBytes = 16 << 20

type contractPaymentResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ContractNumber      string     `json:"contract_number"`
	Side                string     `json:"side"`
	ProjectPeriodID     uuid.UUID  `json:"project_period_id"`
	TalentAssignmentID  uuid.UUID  `json:"talent_assignment_id"`
	PeriodStart         time.Time  `json:"period_start"`
	PeriodEnd           time.Time  `json:"period_end"`
	ContractStatus      string     `json:"contract_status"`
	PaymentStatus       string     `json:"payment_status"`
	UnitPriceForeign    string     `json:"unit_price_foreign"`
	CurrencyCode        string     `json:"currency_code"`
	ExchangeRate        string     `json:"exchange_rate"`
	CalculationMethod   string     `json:"calculation_method"`
	PercentageValue     string     `json:"percentage_value"`
	FixedAmount         string     `json:"fixed_amount"`
	StandardHours       string     `json:"standard_hours"`
	PlannedAmountVND    string     `json:"planned_amount_vnd"`
	ReportedHours       string     `json:"reported_hours"`
	BillableHours       string     `json:"billable_hours"`
	ManMonthCoefficient string     `json:"man_month_coefficient"`
	ActualAmountVND     string     `json:"actual_amount_vnd"`
	TotalPaidAmount     string     `json:"total_paid_amount"`
	RemainingBalance    string     `json:"remaining_balance"`
	InvoiceNumber       *string    `json:"invoice_number,omitempty"`
	InvoiceDate         *time.Time `json:"invoice_date,omitempty"`
	AcceptanceAt        *time.Time `json:"acceptance_at,omitempty"`
	LastPaymentDate     *time.Time `json:"last_payment_date,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	RejectionReason     *string    `json:"rejection_reason,omitempty"`
	IsFinished          bool       `json:"is_finished"`
	Version             int        `json:"version"`
}

func toContractPaymentResponse(cp *models.ContractPayment) contractPaymentResponse {
	return contractPaymentResponse{
		ID:                  cp.ID,
		ContractNumber:      cp.ContractNumber,
		Side:                cp.Side.String(),
		ProjectPeriodID:     cp.ProjectPeriodID,
		TalentAssignmentID:  cp.TalentAssignmentID,
		PeriodStart:         cp.PeriodStart,
		PeriodEnd:           cp.PeriodEnd,
		ContractStatus:      cp.ContractStatus.String(),
		PaymentStatus:       cp.PaymentStatus.String(),
		UnitPriceForeign:    cp.UnitPriceForeign.String(),
		CurrencyCode:        cp.CurrencyCode,
		ExchangeRate:        cp.ExchangeRate.String(),
		CalculationMethod:   cp.CalculationMethod.String(),
		PercentageValue:     cp.PercentageValue.String(),
		FixedAmount:         cp.FixedAmount.String(),
		StandardHours:       cp.StandardHours.String(),
		PlannedAmountVND:    cp.PlannedAmountVND.String(),
		ReportedHours:       cp.ReportedHours.String(),
		BillableHours:       cp.BillableHours.String(),
		ManMonthCoefficient: cp.ManMonthCoefficient.String(),
		ActualAmountVND:     cp.ActualAmountVND.String(),
		TotalPaidAmount:     cp.TotalPaidAmount.String(),
		RemainingBalance:    cp.RemainingBalance().String(),
		InvoiceNumber:       cp.InvoiceNumber,
		InvoiceDate:         cp.InvoiceDate,
		AcceptanceAt:        cp.AcceptanceAt,
		LastPaymentDate:     cp.LastPaymentDate,
		Notes:               cp.Notes,
		RejectionReason:     cp.RejectionReason,
		IsFinished:          cp.IsFinished,
		Version:             cp.Version,
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contract payment id")
	}
	return id, nil
}

// ContractPaymentGet returns a single contract payment.
func ContractPaymentGet(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

// ContractPaymentList returns both sides of a project period.
func ContractPaymentList(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periodID, err := uuid.Parse(r.URL.Query().Get("project_period_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project_period_id"))
			return
		}
		cps, err := svc.ListByProjectPeriod(r.Context(), periodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]contractPaymentResponse, 0, len(cps))
		for i := range cps {
			out = append(out, toContractPaymentResponse(&cps[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type submitRequest struct {
	UnitPriceForeign      decimal.Decimal `json:"unit_price_foreign"`
	CurrencyCode          string          `json:"currency_code" validate:"required"`
	ExchangeRate          decimal.Decimal `json:"exchange_rate"`
	CalculationMethod     string          `json:"calculation_method" validate:"required,oneof=FixedAmount Percentage"`
	PercentageValue       decimal.Decimal `json:"percentage_value"`
	FixedAmount           decimal.Decimal `json:"fixed_amount"`
	StandardHours         decimal.Decimal `json:"standard_hours"`
	ContractFileReference string          `json:"contract_file_reference" validate:"required"`
	Notes                 string          `json:"notes"`
}

// ContractPaymentSubmit moves a draft into review with its pricing terms.
func ContractPaymentSubmit(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req submitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.Submit(r.Context(), contracts.SubmitCommand{
			ContractPaymentID:     id,
			UnitPriceForeign:      req.UnitPriceForeign,
			CurrencyCode:          req.CurrencyCode,
			ExchangeRate:          req.ExchangeRate,
			CalculationMethod:     enums.CalculationMethod(req.CalculationMethod),
			PercentageValue:       req.PercentageValue,
			FixedAmount:           req.FixedAmount,
			StandardHours:         req.StandardHours,
			ContractFileReference: req.ContractFileReference,
			Notes:                 req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

type requestInfoRequest struct {
	Notes string `json:"notes" validate:"required"`
}

func ContractPaymentRequestInfo(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req requestInfoRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.RequestMoreInformation(r.Context(), contracts.RequestInfoCommand{
			ContractPaymentID: id,
			Notes:             req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

func ContractPaymentVerify(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.Verify(r.Context(), contracts.VerifyCommand{ContractPaymentID: id})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

func ContractPaymentApprove(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.Approve(r.Context(), contracts.ApproveCommand{ContractPaymentID: id})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type rejectResponse struct {
	ContractPayment contractPaymentResponse `json:"contract_payment"`
	Warnings        []rejectWarning         `json:"warnings"`
}

type rejectWarning struct {
	Step  string `json:"step"`
	Cause string `json:"cause"`
}

// ContractPaymentReject rejects the record and reports any cleanup steps
// that failed; those never fail the request.
func ContractPaymentReject(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Reject(r.Context(), contracts.RejectCommand{
			ContractPaymentID: id,
			Reason:            req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := rejectResponse{
			ContractPayment: toContractPaymentResponse(result.ContractPayment),
			Warnings:        make([]rejectWarning, 0, len(result.Warnings)),
		}
		for _, warning := range result.Warnings {
			out.Warnings = append(out.Warnings, rejectWarning{
				Step:  warning.Step,
				Cause: warning.Err.Error(),
			})
		}
		responses.WriteSuccess(w, out)
	}
}

type startBillingRequest struct {
	ReportedHours          decimal.Decimal `json:"reported_hours"`
	BillableHours          decimal.Decimal `json:"billable_hours"`
	TimesheetFileReference string          `json:"timesheet_file_reference" validate:"required"`
}

func ContractPaymentStartBilling(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req startBillingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.StartBilling(r.Context(), contracts.StartBillingCommand{
			ContractPaymentID:      id,
			ReportedHours:          req.ReportedHours,
			BillableHours:          req.BillableHours,
			TimesheetFileReference: req.TimesheetFileReference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

type acceptanceRequest struct {
	AcceptanceFileReference string `json:"acceptance_file_reference" validate:"required"`
}

func ContractPaymentAcceptance(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req acceptanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cp, err := svc.RecordAcceptance(r.Context(), contracts.AcceptanceCommand{
			ContractPaymentID:       id,
			AcceptanceFileReference: req.AcceptanceFileReference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

// ContractPaymentInvoice accepts the invoice as a multipart upload next to
// its metadata fields.
func ContractPaymentInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := r.ParseMultipartForm(maxInvoiceUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		invoiceDate, err := time.Parse(dateLayout, r.FormValue("invoice_date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invoice_date must be YYYY-MM-DD"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invoice file is required"))
			return
		}
		defer file.Close()

		cp, err := svc.Record(r.Context(), contracts.InvoiceCommand{
			ContractPaymentID:  id,
			InvoiceNumber:      r.FormValue("invoice_number"),
			InvoiceDate:        invoiceDate,
			InvoiceFileName:    header.Filename,
			InvoiceContentType: header.Header.Get("Content-Type"),
		}, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

type paymentRequest struct {
	ReceivedAmount decimal.Decimal `json:"received_amount"`
	PaymentDate    string          `json:"payment_date" validate:"required,datetime=2006-01-02"`
}

func ContractPaymentRecordPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment_date must be YYYY-MM-DD"))
			return
		}
		cp, err := svc.Record(r.Context(), contracts.PaymentCommand{
			ContractPaymentID: id,
			ReceivedAmount:    req.ReceivedAmount,
			PaymentDate:       paymentDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toContractPaymentResponse(cp))
	}
}

type documentResponse struct {
	ID                uuid.UUID `json:"id"`
	ContractPaymentID uuid.UUID `json:"contract_payment_id"`
	Kind              string    `json:"kind"`
	FileReference     string    `json:"file_reference"`
	Description       *string   `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ContractPaymentDocuments lists the files attached to a contract payment.
func ContractPaymentDocuments(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		docs, err := svc.ListByContractPayment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]documentResponse, 0, len(docs))
		for _, doc := range docs {
			out = append(out, documentResponse{
				ID:                doc.ID,
				ContractPaymentID: doc.ContractPaymentID,
				Kind:              doc.Kind.String(),
				FileReference:     doc.FileReference,
				Description:       doc.Description,
				CreatedAt:         doc.CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
