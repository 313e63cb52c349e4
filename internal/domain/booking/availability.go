package booking

import "time"

// ======================================================
// AVAILABILITY TYPES
// ======================================================

type AvailabilityInput struct {
	LocationID uint
	From       time.Time
	To         time.Time

	// Filtro opcional de profissionais; vazio = todos os elegíveis
	StaffIDs []uint

	ServiceIDs []uint
}

type StepTiming struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ServiceTiming struct {
	ServiceID uint         `json:"service_id"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Steps     []StepTiming `json:"steps,omitempty"`
}

// Candidate é uma janela agendável de um profissional, anotada com os
// serviços pedidos e o sub-tempo de cada etapa a partir do início da
// janela.
type Candidate struct {
	StaffID uint      `json:"staff_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`

	Services []ServiceTiming `json:"services"`
}

// SlotIdentity identifica um slot independente do profissional; usada
// no merge de fallback (primeiro match por slot vence).
func (c Candidate) SlotIdentity() string {
	return c.Start.UTC().Format(time.RFC3339) + "/" + c.End.UTC().Format(time.RFC3339)
}
