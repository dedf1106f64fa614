package potability

// Board is an in-memory Display holding the named slots. It is not safe for
// concurrent use; the dashboard serializes access.
type Board struct {
	texts map[Slot]string
	flags map[Slot]map[string]bool
}

// NewBoard returns a Board with every slot blank.
func NewBoard() *Board {
	return &Board{
		texts: make(map[Slot]string),
		flags: make(map[Slot]map[string]bool),
	}
}

// SetText implements Display.
func (b *Board) SetText(slot Slot, text string) {
	b.texts[slot] = text
}

// SetFlag implements Display.
func (b *Board) SetFlag(slot Slot, flag string, on bool) {
	set, ok := b.flags[slot]
	if !ok {
		set = make(map[string]bool)
		b.flags[slot] = set
	}
	if on {
		set[flag] = true
	} else {
		delete(set, flag)
	}
}

// Text returns the text written to a slot.
func (b *Board) Text(slot Slot) string {
	return b.texts[slot]
}

// HasFlag reports whether flag is set on slot.
func (b *Board) HasFlag(slot Slot, flag string) bool {
	return b.flags[slot][flag]
}

// BoardView is the serializable state of a Board.
type BoardView struct {
	TDS          string `json:"tdsValue"`
	Conductivity string `json:"condValue"`
	Hardness     string `json:"hardValue"`
	StatusText   string `json:"statusText"`
	StatusIcon   string `json:"statusIcon"`
	Safe         bool   `json:"safe"`
}

// View copies the current slot contents.
func (b *Board) View() BoardView {
	return BoardView{
		TDS:          b.Text(SlotTDS),
		Conductivity: b.Text(SlotConductivity),
		Hardness:     b.Text(SlotHardness),
		StatusText:   b.Text(SlotStatusText),
		StatusIcon:   b.Text(SlotStatusIcon),
		Safe:         b.HasFlag(SlotStatusBox, FlagSafe),
	}
}
