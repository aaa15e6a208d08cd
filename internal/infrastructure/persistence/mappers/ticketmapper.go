package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"skillscope/internal/domain/queue"
	"skillscope/internal/infrastructure/persistence/models"
)

type TicketMapper struct{}

func NewTicketMapper() TicketMapper {
	return TicketMapper{}
}

func (TicketMapper) ToModel(t *queue.Ticket) (*models.TicketModel, error) {
	meta, err := json.Marshal(t.SourceMeta())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal source meta: %w", err)
	}

	return &models.TicketModel{
		ID:                 t.ID(),
		SourceTicketNumber: t.SourceTicketNumber(),
		SourceSystemID:     t.SourceSystemID(),
		TechnicianID:       t.TechnicianID(),
		DateClosed:         t.DateClosed(),
		ProcessingStatusID: int(t.Status()),
		WorkerID:           t.WorkerID(),
		LastUpdated:        t.LastUpdated(),
		SourceMeta:         datatypes.JSON(meta),
	}, nil
}

func (TicketMapper) ToEntity(m *models.TicketModel) (*queue.Ticket, error) {
	var meta queue.SourceMeta
	if len(m.SourceMeta) > 0 {
		if err := json.Unmarshal(m.SourceMeta, &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source meta: %w", err)
		}
	}

	return queue.ReconstructTicket(
		m.ID,
		m.SourceTicketNumber,
		m.SourceSystemID,
		m.TechnicianID,
		m.DateClosed,
		queue.Status(m.ProcessingStatusID),
		m.WorkerID,
		m.LastUpdated,
		meta,
	), nil
}

func (mp TicketMapper) ToEntities(ms []*models.TicketModel) ([]*queue.Ticket, error) {
	entities := make([]*queue.Ticket, 0, len(ms))
	for _, m := range ms {
		entity, err := mp.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
