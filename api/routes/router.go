package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lamnguyendev/talentbridge-backend/api/controllers"
	"github.com/lamnguyendev/talentbridge-backend/api/middleware"
	"github.com/lamnguyendev/talentbridge-backend/internal/contracts"
	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/internal/exchange"
	"github.com/lamnguyendev/talentbridge-backend/internal/invoices"
	"github.com/lamnguyendev/talentbridge-backend/internal/payments"
	"github.com/lamnguyendev/talentbridge-backend/pkg/config"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
	"github.com/lamnguyendev/talentbridge-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	contractService contracts.Service,
	documentService documents.Service,
	invoiceService invoices.Service,
	paymentService payments.Service,
	rateSource exchange.RateSource,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/contract-payments", func(r chi.Router) {
		r.Get("/", controllers.ContractPaymentList(contractService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.ContractPaymentGet(contractService, logg))
			r.Get("/documents", controllers.ContractPaymentDocuments(documentService, logg))
			r.Post("/submit", controllers.ContractPaymentSubmit(contractService, logg))
			r.Post("/request-information", controllers.ContractPaymentRequestInfo(contractService, logg))
			r.Post("/verify", controllers.ContractPaymentVerify(contractService, logg))
			r.Post("/approve", controllers.ContractPaymentApprove(contractService, logg))
			r.Post("/reject", controllers.ContractPaymentReject(contractService, logg))
			r.Post("/start-billing", controllers.ContractPaymentStartBilling(contractService, logg))
			r.Post("/acceptance", controllers.ContractPaymentAcceptance(contractService, logg))
			r.Post("/invoice", controllers.ContractPaymentInvoice(invoiceService, logg))
			r.Post("/payments", controllers.ContractPaymentRecordPayment(paymentService, logg))
		})
	})

	r.Route("/api/v1/exchange-rates", func(r chi.Router) {
		r.Get("/{currency}", controllers.ExchangeRate(rateSource, logg))
	})

	return r
}
