package padfilter

// Highlighter toggles the visual highlight of a pad in the host application.
type Highlighter interface {
	SetHighlighted(pad PadIdentity, on bool) error
}

// Paint highlights every pad, returning the ones the host refused.
func Paint(h Highlighter, pads []PadIdentity) []PadError {
	return apply(h, pads, true)
}

// Clear removes the highlight from every pad.
func Clear(h Highlighter, pads []PadIdentity) []PadError {
	return apply(h, pads, false)
}

func apply(h Highlighter, pads []PadIdentity, on bool) []PadError {
	var errs []PadError
	for _, pad := range pads {
		if err := h.SetHighlighted(pad, on); err != nil {
			errs = append(errs, PadError{Pad: pad, Err: err})
		}
	}
	return errs
}
