package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"dropshipManagement/models"
)

// MemoryShipmentRepository is a mutex-guarded in-memory implementation of
// ShipmentRepositoryI. It backs the workflow unit tests and the
// no-persistence dev mode.
type MemoryShipmentRepository struct {
	mu        sync.RWMutex
	shipments map[string]models.Shipment
}

// NewMemoryShipmentRepository creates an empty in-memory shipment store.
func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{shipments: make(map[string]models.Shipment)}
}

func (m *MemoryShipmentRepository) Create(ctx context.Context, s *models.Shipment) (*models.Shipment, error) {
	if s == nil {
		return nil, errors.New("shipment is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	if cp.ID == "" {
		cp.ID = NewShipmentID()
	}
	if cp.Status == "" {
		cp.Status = models.StatusReceived
	}
	if cp.RequestDate == "" {
		cp.RequestDate = time.Now().UTC().Format("2006-01-02 15:04:05")
	}
	if cp.Version == 0 {
		cp.Version = 1
	}
	m.shipments[cp.ID] = cp
	out := cp
	return &out, nil
}

func (m *MemoryShipmentRepository) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shipments[id]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (m *MemoryShipmentRepository) UpdateTransition(ctx context.Context, s *models.Shipment) error {
	if s == nil {
		return errors.New("shipment is nil")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.shipments[s.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if cur.Version != s.Version {
		return ErrVersionConflict
	}
	cp := *s
	cp.Version++
	m.shipments[cp.ID] = cp
	s.Version = cp.Version
	return nil
}

func (m *MemoryShipmentRepository) ListAdmin(ctx context.Context, p ListShipmentsParams) ([]models.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Shipment
	for _, s := range m.shipments {
		if !matchesFilters(&s, p) {
			continue
		}
		out = append(out, s)
	}
	sortByRequestDesc(out)
	out = applyCursor(out, p.AfterSeconds, p.AfterID)
	if len(out) > p.PageSize {
		out = out[:p.PageSize]
	}
	return out, nil
}

func (m *MemoryShipmentRepository) ListByUser(ctx context.Context, userID int64, pageSize int, afterSeconds int64, afterID string) ([]models.Shipment, error) {
	return m.ListAdmin(ctx, ListShipmentsParams{
		SubmittedBy:  &userID,
		PageSize:     pageSize,
		AfterSeconds: afterSeconds,
		AfterID:      afterID,
	})
}

func matchesFilters(s *models.Shipment, p ListShipmentsParams) bool {
	if len(p.Statuses) > 0 {
		found := false
		for _, st := range p.Statuses {
			if s.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.SubmittedBy != nil && s.SubmittedBy != *p.SubmittedBy {
		return false
	}
	if p.CustomerContains != nil && !strings.Contains(strings.ToLower(s.CustomerName), strings.ToLower(*p.CustomerContains)) {
		return false
	}
	if p.RequestFrom != nil && s.RequestDate < *p.RequestFrom {
		return false
	}
	if p.RequestTo != nil && s.RequestDate > *p.RequestTo {
		return false
	}
	return true
}

func sortByRequestDesc(list []models.Shipment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].RequestDate != list[j].RequestDate {
			return list[i].RequestDate > list[j].RequestDate
		}
		return list[i].ID > list[j].ID
	})
}

func applyCursor(list []models.Shipment, afterSeconds int64, afterID string) []models.Shipment {
	if afterSeconds <= 0 || afterID == "" {
		return list
	}
	for i, s := range list {
		sec := requestUnixSeconds(s.RequestDate)
		if sec < afterSeconds || (sec == afterSeconds && s.ID < afterID) {
			return list[i:]
		}
	}
	return nil
}

func requestUnixSeconds(requestDate string) int64 {
	t, err := time.Parse("2006-01-02 15:04:05", requestDate)
	if err != nil {
		return 0
	}
	return t.Unix()
}
