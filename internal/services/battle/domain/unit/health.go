package unit

// Health is the shared health pool of a stack. The front creature has
// FirstHPLeft points; FullUnits creatures behind it are unharmed.
type Health struct {
	FirstHPLeft int `json:"first_hp_left"`
	FullUnits   int `json:"full_units"`
	// Resurrected counts creatures raised for this battle only.
	Resurrected int `json:"resurrected,omitempty"`
}

// NewHealth returns a pool of count unharmed creatures.
func NewHealth(count, maxHP int) Health {
	var h Health
	h.set(int64(count)*int64(maxHP), maxHP)
	return h
}

// Count returns the number of living creatures.
func (h Health) Count() int {
	if h.FirstHPLeft > 0 {
		return h.FullUnits + 1
	}
	return h.FullUnits
}

// Available returns the remaining health points.
func (h Health) Available(maxHP int) int64 {
	return int64(h.FirstHPLeft) + int64(h.FullUnits)*int64(maxHP)
}

// Damage removes up to amount points and returns the points actually removed.
func (h *Health) Damage(amount int64, maxHP int) int64 {
	if amount <= 0 {
		return 0
	}
	available := h.Available(maxHP)
	if amount > available {
		amount = available
	}
	h.set(available-amount, maxHP)
	return amount
}

// Heal adds up to amount points, never raising the pool above limit creatures.
func (h *Health) Heal(amount int64, maxHP int, limit int) int64 {
	if amount <= 0 {
		return 0
	}
	available := h.Available(maxHP)
	ceiling := int64(limit) * int64(maxHP)
	if available+amount > ceiling {
		amount = ceiling - available
	}
	if amount <= 0 {
		return 0
	}
	h.set(available+amount, maxHP)
	return amount
}

// Reset empties the pool.
func (h *Health) Reset() {
	h.FirstHPLeft = 0
	h.FullUnits = 0
}

func (h *Health) set(total int64, maxHP int) {
	if total <= 0 || maxHP <= 0 {
		h.Reset()
		return
	}
	hp := int64(maxHP)
	full := total / hp
	first := total % hp
	if first == 0 {
		full--
		first = hp
	}
	h.FullUnits = int(full)
	h.FirstHPLeft = int(first)
}
