package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"dropshipManagement/internal/auth"
	"dropshipManagement/internal/rates"
	"dropshipManagement/models"
	"dropshipManagement/repository"
)

// shipmentView is the wire shape for a shipment: the record plus the derived
// display label every client renders.
type shipmentView struct {
	*models.Shipment
	DisplayStatus string `json:"display_status"`
}

func toView(s *models.Shipment) shipmentView {
	return shipmentView{Shipment: s, DisplayStatus: models.DisplayStatus(s)}
}

type listResponse struct {
	Shipments     []shipmentView `json:"shipments"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// resolveCurrentUser retrieves the authenticated user from the database.
func (s *Server) resolveCurrentUser(ctx context.Context, p *auth.Principal) (*models.User, error) {
	u, err := s.Users.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user not found", auth.ErrUnauthenticated)
	}
	return u, nil
}

type createShipmentRequest struct {
	CustomerName      string                 `json:"customer_name"`
	Destination       string                 `json:"destination"`
	EstimatedDelivery string                 `json:"estimated_delivery"`
	TrackingNumber    string                 `json:"tracking_number"`
	Details           models.ShipmentDetails `json:"details"`
}

// handleCreateShipment creates a shipment in status Received for the caller.
func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequireCustomerOrAdmin(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	u, err := s.resolveCurrentUser(r.Context(), p)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req createShipmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}
	if req.CustomerName == "" {
		req.CustomerName = u.Username
	}
	created, err := s.Shipments.Create(r.Context(), &models.Shipment{
		TrackingNumber:    req.TrackingNumber,
		CustomerName:      req.CustomerName,
		Destination:       req.Destination,
		EstimatedDelivery: req.EstimatedDelivery,
		Status:            models.StatusReceived,
		SubmittedBy:       u.ID,
		Details:           req.Details,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toView(created))
}

// handleListShipments lists shipments for the admin console with optional
// filters and cursor pagination.
func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context(), s.Users); err != nil {
		s.writeDomainError(w, err)
		return
	}
	q := r.URL.Query()

	size := defaultPageSize
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		size = n
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	var afterSec int64
	var afterID string
	if t := strings.TrimSpace(q.Get("page_token")); t != "" {
		if err := decodeCursor(t, &afterSec, &afterID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid page_token: "+err.Error())
			return
		}
	}

	var statuses []models.ShipmentStatus
	for _, v := range q["status"] {
		st := models.ShipmentStatus(v)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status: "+v)
			return
		}
		statuses = append(statuses, st)
	}

	params := repository.ListShipmentsParams{
		Statuses:     statuses,
		PageSize:     size,
		AfterSeconds: afterSec,
		AfterID:      afterID,
	}
	if v := strings.TrimSpace(q.Get("customer")); v != "" {
		params.CustomerContains = &v
	}
	if v := q.Get("submitted_by"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid submitted_by")
			return
		}
		params.SubmittedBy = &id
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		params.RequestFrom = &v
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		params.RequestTo = &v
	}

	list, err := s.Shipments.ListAdmin(r.Context(), params)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.buildListResponse(list, size))
}

// handleMyShipments lists the caller's own shipments (customer dashboard).
func (s *Server) handleMyShipments(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequireCustomerOrAdmin(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	u, err := s.resolveCurrentUser(r.Context(), p)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	q := r.URL.Query()
	size := defaultPageSize
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		size = n
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	var afterSec int64
	var afterID string
	if t := strings.TrimSpace(q.Get("page_token")); t != "" {
		if err := decodeCursor(t, &afterSec, &afterID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid page_token: "+err.Error())
			return
		}
	}
	list, err := s.Shipments.ListByUser(r.Context(), u.ID, size, afterSec, afterID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.buildListResponse(list, size))
}

func (s *Server) buildListResponse(list []models.Shipment, size int) listResponse {
	resp := listResponse{Shipments: make([]shipmentView, 0, len(list))}
	for i := range list {
		resp.Shipments = append(resp.Shipments, toView(&list[i]))
	}
	if len(list) == size && len(list) > 0 {
		last := list[len(list)-1]
		if sec, err := requestToUnixSeconds(last.RequestDate); err == nil {
			resp.NextPageToken = encodeCursor(sec, last.ID)
		}
	}
	return resp
}

// handleGetShipment returns one shipment. Admins see any shipment; a
// customer only their own.
func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequireCustomerOrAdmin(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	sh, err := s.Shipments.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if sh == nil {
		writeError(w, http.StatusNotFound, "shipment not found")
		return
	}
	if p.Kind != "admin" {
		u, err := s.resolveCurrentUser(r.Context(), p)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if sh.SubmittedBy != u.ID {
			writeError(w, http.StatusForbidden, "not your shipment")
			return
		}
	}
	writeJSON(w, http.StatusOK, toView(sh))
}

// Transition handlers. All are admin-only and answer with the updated
// shipment or a mapped domain error.

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.Accept(ctx, id)
	})
}

func (s *Server) handlePriceDetails(w http.ResponseWriter, r *http.Request) {
	var form models.PriceDetailsForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.SavePriceDetails(ctx, id, form)
	})
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	var form models.InvoiceForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.ConfirmInvoice(ctx, id, form)
	})
}

func (s *Server) handleRequestPay(w http.ResponseWriter, r *http.Request) {
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.RequestPay(ctx, id)
	})
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var form models.PaymentForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.SavePayment(ctx, id, form)
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.Ready(ctx, id)
	})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	s.runTransition(w, r, func(ctx context.Context, id string) (*models.Shipment, error) {
		return s.Engine.Dispatch(ctx, id)
	})
}

func (s *Server) runTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*models.Shipment, error)) {
	if _, err := auth.RequireAdmin(r.Context(), s.Users); err != nil {
		s.writeDomainError(w, err)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "shipment id is required")
		return
	}
	sh, err := op(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(sh))
}

// handleRateQuote prices a package against all courier tariffs.
func (s *Server) handleRateQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pkg := rates.Package{}
	var parseErr error
	readFloat := func(key string) float64 {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid %s", key)
		}
		return f
	}
	pkg.WeightKG = readFloat("weight_kg")
	pkg.LengthCM = readFloat("length_cm")
	pkg.WidthCM = readFloat("width_cm")
	pkg.HeightCM = readFloat("height_cm")
	if parseErr != nil {
		writeError(w, http.StatusBadRequest, parseErr.Error())
		return
	}
	quotes, err := rates.QuoteAll(pkg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}
