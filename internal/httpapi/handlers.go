package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/export"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts, try again later"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		a.log.WithField("username", req.Username).Warn("login rejected")
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": a.generateCSRFToken()})
}

func (a *API) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accountType := domain.AccountType(strings.TrimSpace(r.URL.Query().Get("type")))
		accounts, err := a.service.ListAccounts(r.Context(), accountType)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	case http.MethodPost:
		var req domain.AccountCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		account, err := a.service.CreateAccount(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, account)
	default:
		writeMethodNotAllowed(w)
	}
}

// handleAccountActions routes /api/v1/accounts/{id}[...] subpaths.
func (a *API) handleAccountActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/accounts/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		writeError(w, http.StatusNotFound, errors.New("account id required"))
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		a.handleAccountByID(w, r, id)
	case len(parts) == 2 && parts[1] == "receipts":
		a.handleAccountReceipts(w, r, id)
	case len(parts) == 2 && parts[1] == "statement":
		a.handleAccountStatement(w, r, id)
	case len(parts) == 3 && parts[1] == "statement" && parts[2] == "export":
		a.handleStatementExport(w, r, id)
	case len(parts) == 2 && parts[1] == "reminder":
		a.handleAccountReminder(w, r, id)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown resource"))
	}
}

func (a *API) handleAccountByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		account, err := a.service.GetAccount(r.Context(), id)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodPatch:
		var req domain.AccountUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		account, err := a.service.UpdateAccount(r.Context(), id, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodDelete:
		if err := a.service.DeleteAccount(r.Context(), id); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleAccountReceipts(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		receipts, err := a.service.ListReceipts(r.Context(), id)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, receipts)
	case http.MethodPost:
		var req domain.ReceiptCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		receipt, err := a.service.CreateReceipt(r.Context(), id, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, receipt)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleAccountStatement(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	statement, err := a.service.Statement(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

func (a *API) handleStatementExport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	statement, err := a.service.Statement(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	now := time.Now().UTC()
	var buf bytes.Buffer
	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "pdf":
		if err := export.WriteStatementPDF(&buf, a.stationName, statement, now); err != nil {
			a.writeServiceError(w, err)
			return
		}
		serveAttachment(w, export.Filename("Statement", "pdf", now), "application/pdf", buf.Bytes())
	case "xlsx":
		if err := export.WriteStatementXLSX(&buf, statement); err != nil {
			a.writeServiceError(w, err)
			return
		}
		serveAttachment(w, export.Filename("Statement", "xlsx", now), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be pdf or xlsx"))
	}
}

func (a *API) handleAccountReminder(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	links, err := a.service.ReminderLinks(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (a *API) handleReceiptActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/receipts/"), "/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" || len(parts) > 2 {
		writeError(w, http.StatusNotFound, errors.New("receipt id required"))
		return
	}
	id := parts[0]

	if len(parts) == 2 {
		if parts[1] != "share" {
			writeError(w, http.StatusNotFound, errors.New("unknown resource"))
			return
		}
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		links, err := a.service.ReceiptShareLinks(r.Context(), id)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, links)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.ReceiptUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		receipt, err := a.service.UpdateReceipt(r.Context(), id, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	case http.MethodDelete:
		if err := a.service.DeleteReceipt(r.Context(), id); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCashflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := a.service.ListCashflow(r.Context(), from, to)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleCashflowDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	days, err := a.service.DailyCashflow(r.Context(), from, to)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (a *API) handleCashflowExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	days, err := a.service.DailyCashflow(r.Context(), from, to)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	now := time.Now().UTC()
	var buf bytes.Buffer
	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "pdf":
		if err := export.WriteCashflowPDF(&buf, a.stationName, days, now); err != nil {
			a.writeServiceError(w, err)
			return
		}
		serveAttachment(w, export.Filename("Cashflow", "pdf", now), "application/pdf", buf.Bytes())
	case "xlsx":
		if err := export.WriteCashflowXLSX(&buf, days); err != nil {
			a.writeServiceError(w, err)
			return
		}
		serveAttachment(w, export.Filename("Cashflow", "xlsx", now), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be pdf or xlsx"))
	}
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	summary, err := a.service.GetSummary(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleSummaryAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	audit, err := a.service.AuditSummary(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (a *API) handleShifts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 500)
	shifts, err := a.service.ListShifts(r.Context(), limit)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shifts)
}

func (a *API) handleShiftOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	shift, err := a.service.OpenShift(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shift)
}

func (a *API) handleShiftClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	shift, err := a.service.CloseShift(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

func (a *API) handleShiftActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	shift, err := a.service.GetActiveShift(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, product)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/products/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, errors.New("product id required"))
		return
	}

	if r.Method != http.MethodPatch {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleTanks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tanks, err := a.service.ListTanks(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tanks)
	case http.MethodPost:
		var req domain.TankCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		tank, err := a.service.CreateTank(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tank)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleInvoiceList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind := domain.InvoiceKind(strings.TrimSpace(r.URL.Query().Get("kind")))
	invoices, err := a.service.ListInvoices(r.Context(), kind, from, to)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// invoiceKindFromPath maps URL segments onto invoice kinds. Create routes use
// the segment as a kind, everything else is treated as an invoice id.
var invoiceKindsByPath = map[string]domain.InvoiceKind{
	"purchase":        domain.InvoicePurchase,
	"purchase-return": domain.InvoicePurchaseReturn,
	"sale":            domain.InvoiceSale,
	"sale-return":     domain.InvoiceSaleReturn,
}

func (a *API) handleInvoiceActions(w http.ResponseWriter, r *http.Request) {
	segment := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/invoices/"), "/")
	if segment == "" || strings.Contains(segment, "/") {
		writeError(w, http.StatusNotFound, errors.New("unknown resource"))
		return
	}

	if kind, ok := invoiceKindsByPath[segment]; ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.InvoiceCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		invoice, err := a.service.CreateInvoice(r.Context(), kind, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, invoice)
		return
	}

	id := segment
	switch r.Method {
	case http.MethodGet:
		invoice, err := a.service.GetInvoice(r.Context(), id)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, invoice)
	case http.MethodPatch:
		var req domain.InvoiceUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		invoice, err := a.service.UpdateInvoice(r.Context(), id, req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, invoice)
	case http.MethodDelete:
		if err := a.service.DeleteInvoice(r.Context(), id); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleStockMovements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	productID := strings.TrimSpace(r.URL.Query().Get("product_id"))
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 1000)
	movements, err := a.service.ListStockMovements(r.Context(), productID, limit)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 200, 2000)
	logs, err := a.service.ListAuditLogs(r.Context(), from, to, limit)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func serveAttachment(w http.ResponseWriter, filename string, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
