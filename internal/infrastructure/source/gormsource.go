// Package source reads service tickets out of the upstream PSA database's
// reporting view.
package source

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"skillscope/internal/domain/source"
)

// serviceTicketRow mirrors the columns of the upstream reporting view.
type serviceTicketRow struct {
	TicketNbr         int64     `gorm:"column:ticketnbr"`
	Summary           string    `gorm:"column:summary"`
	StatusDescription string    `gorm:"column:status_description"`
	CompanyName       string    `gorm:"column:company_name"`
	TechnicianName    string    `gorm:"column:technician_name"`
	DetailDescription string    `gorm:"column:detail_description"`
	Resolution        string    `gorm:"column:resolution"`
	DateClosed        time.Time `gorm:"column:date_closed"`
}

type GormTicketSource struct {
	db   *gorm.DB
	view string
}

func NewGormTicketSource(db *gorm.DB) *GormTicketSource {
	return &GormTicketSource{db: db, view: "v_rpt_service"}
}

func (s *GormTicketSource) FetchBatch(ctx context.Context, afterID int64, limit int) ([]source.Ticket, error) {
	var rows []serviceTicketRow
	err := s.db.WithContext(ctx).
		Table(s.view).
		Select("ticketnbr, summary, status_description, company_name, technician_name, detail_description, resolution, date_closed").
		Where("ticketnbr > ?", afterID).
		Where("technician_name IS NOT NULL").
		Order("ticketnbr").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticket batch after %d: %w", afterID, err)
	}
	return toTickets(rows), nil
}

func (s *GormTicketSource) FetchByNumber(ctx context.Context, ticketNumber string) (*source.Ticket, error) {
	var rows []serviceTicketRow
	err := s.db.WithContext(ctx).
		Table(s.view).
		Select("ticketnbr, summary, status_description, company_name, technician_name, detail_description, resolution, date_closed").
		Where("CAST(ticketnbr AS CHAR(50)) = ?", ticketNumber).
		Where("technician_name IS NOT NULL").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticket %s: %w", ticketNumber, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	t := toTickets(rows)[0]
	return &t, nil
}

func (s *GormTicketSource) FetchClosedSince(ctx context.Context, ts time.Time, limit int) ([]source.Ticket, error) {
	var rows []serviceTicketRow
	err := s.db.WithContext(ctx).
		Table(s.view).
		Select("ticketnbr, summary, status_description, company_name, technician_name, detail_description, resolution, date_closed").
		Where("date_closed >= ?", ts).
		Where("technician_name IS NOT NULL").
		Order("ticketnbr").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets closed since %s: %w", ts.Format(time.RFC3339), err)
	}
	return toTickets(rows), nil
}

func toTickets(rows []serviceTicketRow) []source.Ticket {
	tickets := make([]source.Ticket, 0, len(rows))
	for _, r := range rows {
		tickets = append(tickets, source.Ticket{
			TicketNumber:    r.TicketNbr,
			Summary:         r.Summary,
			Status:          r.StatusDescription,
			ClientName:      r.CompanyName,
			TechnicianName:  r.TechnicianName,
			Description:     r.DetailDescription,
			ResolutionNotes: r.Resolution,
			DateClosed:      r.DateClosed,
		})
	}
	return tickets
}
