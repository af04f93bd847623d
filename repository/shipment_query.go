package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dropshipManagement/models"
)

// ListShipmentsParams represents filters and pagination for ListAdmin.
type ListShipmentsParams struct {
	Statuses         []models.ShipmentStatus
	SubmittedBy      *int64
	CustomerContains *string // optional case-insensitive substring on customer_name
	RequestFrom      *string // optional inclusive lower bound on request_date
	RequestTo        *string // optional inclusive upper bound on request_date
	PageSize         int
	AfterSeconds     int64  // keyset cursor: request_date unix seconds
	AfterID          string // keyset cursor: shipment id
}

// ListAdmin returns shipments matching filters ordered by request_date desc,
// id desc with keyset pagination.
func (r *ShipmentRepository) ListAdmin(ctx context.Context, p ListShipmentsParams) ([]models.Shipment, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where []string
	var args []any

	if len(p.Statuses) > 0 {
		placeholders := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if p.SubmittedBy != nil {
		where = append(where, "submitted_by = ?")
		args = append(args, *p.SubmittedBy)
	}
	if p.CustomerContains != nil {
		where = append(where, "customer_name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+*p.CustomerContains+"%")
	}
	if p.RequestFrom != nil {
		where = append(where, "request_date >= ?")
		args = append(args, *p.RequestFrom)
	}
	if p.RequestTo != nil {
		where = append(where, "request_date <= ?")
		args = append(args, *p.RequestTo)
	}
	if p.AfterSeconds > 0 && p.AfterID != "" {
		where = append(where, "(CAST(strftime('%s', request_date) AS INTEGER) < ? OR (CAST(strftime('%s', request_date) AS INTEGER) = ? AND id < ?))")
		args = append(args, p.AfterSeconds, p.AfterSeconds, p.AfterID)
	}

	q := `SELECT ` + shipmentColumns + ` FROM shipments`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY request_date DESC, id DESC LIMIT ?"
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShipmentRows(rows)
}

// ListByUser returns a page of shipments submitted by the given user ordered
// by request_date desc, id desc. Uses keyset pagination with a numeric time
// cursor to avoid string-format pitfalls.
func (r *ShipmentRepository) ListByUser(ctx context.Context, userID int64, pageSize int, afterSeconds int64, afterID string) ([]models.Shipment, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rows *sql.Rows
	var err error
	if afterSeconds > 0 && afterID != "" {
		rows, err = r.db.QueryContext(ctx, `
SELECT `+shipmentColumns+`
FROM shipments
WHERE submitted_by = ?
  AND (
        CAST(strftime('%s', request_date) AS INTEGER) < ?
        OR (CAST(strftime('%s', request_date) AS INTEGER) = ? AND id < ?)
      )
ORDER BY request_date DESC, id DESC
LIMIT ?`, userID, afterSeconds, afterSeconds, afterID, pageSize)
	} else {
		rows, err = r.db.QueryContext(ctx, `
SELECT `+shipmentColumns+`
FROM shipments
WHERE submitted_by = ?
ORDER BY request_date DESC, id DESC
LIMIT ?`, userID, pageSize)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShipmentRows(rows)
}

func scanShipmentRows(rows *sql.Rows) ([]models.Shipment, error) {
	var out []models.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
