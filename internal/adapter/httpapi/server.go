package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/carteiralab/carteira-backend/internal/domain"
	"github.com/carteiralab/carteira-backend/internal/usecase/ledger"
	"github.com/carteiralab/carteira-backend/internal/usecase/portfolio"
)

// Server is the REST adapter over the ledger and portfolio services.
type Server struct {
	ledger    *ledger.LedgerService
	portfolio *portfolio.PortfolioService
	logger    *zap.Logger
	router    *mux.Router
}

// NewServer creates a new API server with all routes registered.
func NewServer(ledgerService *ledger.LedgerService, portfolioService *portfolio.PortfolioService, apiToken string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ledger:    ledgerService,
		portfolio: portfolioService,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	s.setupRoutes(apiToken)
	return s
}

func (s *Server) setupRoutes(apiToken string) {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(LoggingMiddleware(s.logger))
	api.Use(AuthMiddleware(apiToken))

	api.HandleFunc("/transactions", s.handleSubmitTransaction).Methods("POST")
	api.HandleFunc("/transactions/bulk", s.handleSubmitTransactionBatch).Methods("POST")
	api.HandleFunc("/transactions", s.handleListTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods("DELETE")

	api.HandleFunc("/assets", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/assets", s.handleAddAsset).Methods("POST")
	api.HandleFunc("/assets/bulk", s.handleImportAssets).Methods("POST")
	api.HandleFunc("/assets/{id}", s.handleDeleteAsset).Methods("DELETE")
}

// Handler returns the fully wrapped HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-User-ID"},
	})
	return c.Handler(s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// handleSubmitTransaction processes one trade event.
// Result mapping: success -> 201, rejected -> 400, failed -> 500.
func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result := s.ledger.Submit(r.Context(), owner, input)
	switch result.Status {
	case domain.StatusSuccess:
		writeJSON(w, http.StatusCreated, toTradeResultResponse(result))
	case domain.StatusRejected:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: result.Reason})
	default:
		s.logger.Error("transaction processing failed",
			zap.String("ticker", result.Ticker), zap.Error(result.Cause))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error processing transaction"})
	}
}

// handleSubmitTransactionBatch processes a sequence of trade events,
// returning every individual outcome. The batch itself always answers 201:
// callers inspect the per-item statuses.
func (s *Server) handleSubmitTransactionBatch(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var reqs []tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	inputs := make([]domain.TradeInput, 0, len(reqs))
	for _, req := range reqs {
		input, err := req.toInput()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		inputs = append(inputs, input)
	}

	results := s.ledger.SubmitBatch(r.Context(), owner, inputs)
	details := make([]tradeResultResponse, 0, len(results))
	for _, result := range results {
		if result.Status == domain.StatusFailed {
			s.logger.Error("transaction processing failed",
				zap.String("ticker", result.Ticker), zap.Error(result.Cause))
		}
		details = append(details, toTradeResultResponse(result))
	}

	writeJSON(w, http.StatusCreated, struct {
		Message string                `json:"message"`
		Details []tradeResultResponse `json:"details"`
	}{Message: "batch processed", Details: details})
}

// handleListTransactions returns the owner's trade history, optionally
// windowed by startDate/endDate (YYYY-MM-DD, both inclusive).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var from, to *time.Time
	if v := r.URL.Query().Get("startDate"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid startDate: must be YYYY-MM-DD"})
			return
		}
		from = &parsed
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid endDate: must be YYYY-MM-DD"})
			return
		}
		// Inclusive of the whole end day
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	trades, err := s.ledger.History(r.Context(), owner, from, to)
	if err != nil {
		s.logger.Error("failed to list trade history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list transactions"})
		return
	}

	payload := make([]tradeResponse, 0, len(trades))
	for _, trade := range trades {
		payload = append(payload, toTradeResponse(trade))
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleDeleteTransaction removes one history record without recomputing
// position state.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	tradeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	if err := s.ledger.Reverse(r.Context(), owner, tradeID); err != nil {
		if errors.Is(err, domain.ErrTradeNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "transaction not found"})
			return
		}
		s.logger.Error("failed to delete trade", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete transaction"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetPortfolio returns all positions plus the consolidated value.
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	summary, err := s.portfolio.GetSummary(r.Context(), owner)
	if err != nil {
		s.logger.Error("failed to load portfolio", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load portfolio"})
		return
	}

	assets := make([]positionResponse, 0, len(summary.Positions))
	for _, position := range summary.Positions {
		assets = append(assets, toPositionResponse(position))
	}
	writeJSON(w, http.StatusOK, portfolioResponse{
		TotalConsolidated: summary.TotalValue,
		Count:             summary.Count,
		Assets:            assets,
	})
}

// handleAddAsset manually creates a single seeded position.
func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	position, err := s.portfolio.AddPosition(r.Context(), owner, req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrTickerExists) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "asset already exists for ticker"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, toPositionResponse(position))
}

// handleImportAssets bulk-creates positions for a portfolio migration.
func (s *Server) handleImportAssets(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var reqs []positionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	inputs := make([]portfolio.PositionInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, req.toInput())
	}

	count, err := s.portfolio.Import(r.Context(), owner, inputs)
	if err != nil {
		if errors.Is(err, domain.ErrTickerExists) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "asset already exists for ticker"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "import completed", Count: count})
}

// handleDeleteAsset removes a position from the portfolio.
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	positionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return
	}

	if err := s.portfolio.Remove(r.Context(), owner, positionID); err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "asset not found"})
			return
		}
		s.logger.Error("failed to delete asset", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete asset"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
